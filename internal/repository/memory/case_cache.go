package memory

import (
	"time"

	"legal-qa-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CaseCache keeps recently cited case metadata in memory so citation text
// rendering does not hit the database on every run.
type CaseCache struct {
	cache *cache.Cache
}

func NewCaseCache() *CaseCache {
	// Case metadata is immutable, a long TTL is safe
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &CaseCache{
		cache: c,
	}
}

func (r *CaseCache) Save(caseEntity *entity.Case) {
	r.cache.Set(caseEntity.Id.String(), caseEntity, cache.DefaultExpiration)
}

func (r *CaseCache) Get(caseId uuid.UUID) (*entity.Case, bool) {
	if x, found := r.cache.Get(caseId.String()); found {
		return x.(*entity.Case), true
	}
	return nil, false
}

func (r *CaseCache) Delete(caseId uuid.UUID) {
	r.cache.Delete(caseId.String())
}
