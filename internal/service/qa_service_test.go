package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"legal-qa-be/internal/config"
	"legal-qa-be/internal/dto"
	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/repository/contract"
	"legal-qa-be/internal/repository/memory"
	"legal-qa-be/internal/repository/specification"
	"legal-qa-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ---- fakes ----

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeSessionRepo struct {
	sessions  map[uuid.UUID]*entity.QASession
	statusErr error
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.QASession) error {
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.QASession) error {
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SessionStatus) error {
	if r.statusErr != nil {
		return r.statusErr
	}
	if s, ok := r.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QASession, error) {
	var id, workspaceId uuid.UUID
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id = s.ID
		case specification.OwnedByWorkspace:
			workspaceId = s.WorkspaceId
		}
	}
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if workspaceId != uuid.Nil && session.WorkspaceId != workspaceId {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QASession, error) {
	return nil, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

type fakeAnswerRepo struct {
	answers   map[uuid.UUID]*entity.Answer // keyed by session id
	createErr error
}

func (r *fakeAnswerRepo) Create(ctx context.Context, answer *entity.Answer) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *answer
	r.answers[answer.SessionId] = &copied
	return nil
}

func (r *fakeAnswerRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	delete(r.answers, sessionId)
	return nil
}

func (r *fakeAnswerRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error) {
	for _, spec := range specs {
		if s, ok := spec.(specification.BySessionID); ok {
			if a, found := r.answers[s.SessionId]; found {
				copied := *a
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeAnswerRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.answers)), nil
}

type fakeCitationRepo struct {
	citations map[uuid.UUID][]*entity.AnswerCitation // keyed by answer id
}

func (r *fakeCitationRepo) CreateBulk(ctx context.Context, citations []*entity.AnswerCitation) error {
	for _, c := range citations {
		copied := *c
		r.citations[c.AnswerId] = append(r.citations[c.AnswerId], &copied)
	}
	return nil
}

func (r *fakeCitationRepo) DeleteByAnswerId(ctx context.Context, answerId uuid.UUID) error {
	delete(r.citations, answerId)
	return nil
}

func (r *fakeCitationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnswerCitation, error) {
	for _, spec := range specs {
		if s, ok := spec.(specification.ByAnswerID); ok {
			return r.citations[s.AnswerId], nil
		}
	}
	return nil, nil
}

func (r *fakeCitationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeCaseRepo struct {
	cases map[uuid.UUID]*entity.Case
}

func (r *fakeCaseRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error) {
	return nil, nil
}

func (r *fakeCaseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error) {
	return nil, nil
}

func (r *fakeCaseRepo) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Case, error) {
	var found []*entity.Case
	for _, id := range ids {
		if c, ok := r.cases[id]; ok {
			found = append(found, c)
		}
	}
	return found, nil
}

func (r *fakeCaseRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct {
	sessions  *fakeSessionRepo
	answers   *fakeAnswerRepo
	citations *fakeCitationRepo
	cases     *fakeCaseRepo
	commitErr error
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *fakeUnitOfWork) Commit() error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.rollbacks++
	return nil
}

func (u *fakeUnitOfWork) QASessionRepository() contract.QASessionRepository { return u.sessions }
func (u *fakeUnitOfWork) CaseRepository() contract.CaseRepository           { return u.cases }
func (u *fakeUnitOfWork) PassageRepository() contract.PassageRepository     { return nil }
func (u *fakeUnitOfWork) AnswerRepository() contract.AnswerRepository       { return u.answers }
func (u *fakeUnitOfWork) AnswerCitationRepository() contract.AnswerCitationRepository {
	return u.citations
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeRetriever struct {
	candidates []entity.RetrievalCandidate
	err        error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, workspaceId uuid.UUID, question string) ([]entity.RetrievalCandidate, error) {
	return f.candidates, f.err
}

type fakeReranker struct {
	err error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, candidates []entity.RetrievalCandidate, topN int) ([]entity.RerankedCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	reranked := make([]entity.RerankedCandidate, len(candidates))
	for i, c := range candidates {
		reranked[i] = entity.RerankedCandidate{RetrievalCandidate: c, RelevanceScore: 0.9, FusedRank: i + 1}
	}
	return reranked, nil
}

type fakePlanner struct{}

func (f *fakePlanner) Plan(question string, candidates []entity.RerankedCandidate) []entity.ClaimPlanItem {
	item := entity.ClaimPlanItem{Position: 0, Text: question, Supported: len(candidates) > 0}
	for _, c := range candidates {
		item.PassageIds = append(item.PassageIds, c.Passage.Id)
	}
	return []entity.ClaimPlanItem{item}
}

type fakeGenerator struct {
	result *entity.GenerationResult
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, question string, claims []entity.ClaimPlanItem, candidates []entity.RerankedCandidate, cases map[uuid.UUID]*entity.Case) (*entity.GenerationResult, error) {
	return f.result, f.err
}

type fakeLocker struct {
	acquired bool
	err      error
	released []string
}

func (f *fakeLocker) Acquire(ctx context.Context, key string) (bool, error) {
	return f.acquired, f.err
}

func (f *fakeLocker) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

// ---- harness ----

type harness struct {
	service   IQAService
	uow       *fakeUnitOfWork
	retriever *fakeRetriever
	reranker  *fakeReranker
	generator *fakeGenerator
	locker    *fakeLocker
}

func newHarness() *harness {
	uow := &fakeUnitOfWork{
		sessions:  &fakeSessionRepo{sessions: map[uuid.UUID]*entity.QASession{}},
		answers:   &fakeAnswerRepo{answers: map[uuid.UUID]*entity.Answer{}},
		citations: &fakeCitationRepo{citations: map[uuid.UUID][]*entity.AnswerCitation{}},
		cases:     &fakeCaseRepo{cases: map[uuid.UUID]*entity.Case{}},
	}

	h := &harness{
		uow:       uow,
		retriever: &fakeRetriever{},
		reranker:  &fakeReranker{},
		generator: &fakeGenerator{},
		locker:    &fakeLocker{acquired: true},
	}

	h.service = NewQAService(
		&fakeFactory{uow: uow},
		h.retriever,
		h.reranker,
		&fakePlanner{},
		h.generator,
		h.locker,
		nil,
		nil,
		memory.NewCaseCache(),
		nil,
		config.PipelineConfig{RerankTopN: 5, StageTimeout: time.Second},
		nopLogger{},
	)
	return h
}

func (h *harness) seedSession(status entity.SessionStatus) *entity.QASession {
	session := &entity.QASession{
		Id:          uuid.New(),
		WorkspaceId: uuid.New(),
		Question:    "Is a verbal contract enforceable?",
		Status:      status,
		CreatedAt:   time.Now(),
	}
	h.uow.sessions.sessions[session.Id] = session
	return session
}

func (h *harness) seedEvidence() uuid.UUID {
	caseId := uuid.New()
	passage := entity.Passage{
		Id:      uuid.New(),
		CaseId:  caseId,
		Section: entity.SectionHolding,
		Content: "A verbal contract is enforceable when supported by consideration.",
	}
	h.uow.cases.cases[caseId] = &entity.Case{Id: caseId, Caption: "Smith v. Jones"}
	h.retriever.candidates = []entity.RetrievalCandidate{{Passage: passage, FusedScore: 0.03}}

	h.generator.result = &entity.GenerationResult{
		AnswerText: "A verbal contract is enforceable with consideration [1].",
		Reasoning:  "Grounded 1 of 1 sub-claims in 1 cited passages",
		Confidence: 0.82,
		Citations: []entity.AnswerCitation{
			{CaseId: caseId, PassageId: &passage.Id, CitationText: "Smith v. Jones (passage 1)", RelevanceScore: 0.9},
		},
		ClaimsTotal:     1,
		ClaimsSupported: 1,
	}
	return caseId
}

// ---- tests ----

func TestProcessSessionHappyPath(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)
	h.seedEvidence()

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 1, result.CitationsCount)
	assert.Equal(t, 0.82, result.Confidence)

	stored := h.uow.sessions.sessions[session.Id]
	assert.Equal(t, entity.SessionStatusCompleted, stored.Status)

	answer := h.uow.answers.answers[session.Id]
	assert.NotNil(t, answer)
	assert.Equal(t, result.AnswerId, answer.Id)

	citations := h.uow.citations.citations[answer.Id]
	assert.Len(t, citations, 1)
	assert.Equal(t, answer.Id, citations[0].AnswerId)

	assert.Equal(t, 1, h.uow.commits)
	assert.Equal(t, []string{session.Id.String()}, h.locker.released)
}

func TestProcessSessionNoEvidenceCompletesWithCannedAnswer(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)
	// retriever returns nothing

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Zero(t, result.Confidence)
	assert.Zero(t, result.CitationsCount)
	assert.True(t, strings.Contains(result.AnswerText, "could not find any relevant legal precedent"))

	stored := h.uow.sessions.sessions[session.Id]
	assert.Equal(t, entity.SessionStatusCompleted, stored.Status)

	answer := h.uow.answers.answers[session.Id]
	assert.Equal(t, noPrecedentReasoning, answer.Reasoning)
}

func TestProcessSessionStageFailureCompletesWithErrorAnswer(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)
	h.retriever.err = errors.New("pgvector unavailable")

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.NoError(t, err)
	assert.Equal(t, "error", result.Status)
	assert.True(t, strings.Contains(result.AnswerText, "encountered an error"))

	stored := h.uow.sessions.sessions[session.Id]
	assert.Equal(t, entity.SessionStatusCompleted, stored.Status, "stage failures still complete the session")

	answer := h.uow.answers.answers[session.Id]
	assert.True(t, strings.Contains(answer.Reasoning, "pgvector unavailable"))
}

func TestProcessSessionPersistenceFailure(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)
	h.seedEvidence()
	h.uow.answers.createErr = errors.New("connection reset")

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrPersistence)

	stored := h.uow.sessions.sessions[session.Id]
	assert.Equal(t, entity.SessionStatusFailed, stored.Status)
	assert.Zero(t, h.uow.commits)
	assert.NotZero(t, h.uow.rollbacks)
}

func TestProcessSessionLockHeld(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)
	h.locker.acquired = false

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyProcessing)
	assert.Empty(t, h.locker.released, "a lock we never held must not be released")
}

func TestProcessSessionLockFailureDegradesToProceeding(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)
	h.seedEvidence()
	h.locker.err = errors.New("redis down")

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.NoError(t, err)
	assert.Equal(t, "success", result.Status)
}

func TestProcessSessionWorkspaceMismatch(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusPending)

	result, err := h.service.ProcessSession(context.Background(), session.Id, uuid.New(), "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProcessSessionUnknownSessionWithoutQuestion(t *testing.T) {
	h := newHarness()

	result, err := h.service.ProcessSession(context.Background(), uuid.New(), uuid.New(), "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProcessSessionCreatesSessionFromQuestion(t *testing.T) {
	h := newHarness()
	h.seedEvidence()
	sessionId, workspaceId := uuid.New(), uuid.New()

	result, err := h.service.ProcessSession(context.Background(), sessionId, workspaceId, "Is a verbal contract enforceable?")

	assert.NoError(t, err)
	assert.Equal(t, sessionId, result.SessionId)

	stored := h.uow.sessions.sessions[sessionId]
	assert.NotNil(t, stored)
	assert.Equal(t, workspaceId, stored.WorkspaceId)
	assert.Equal(t, entity.SessionStatusCompleted, stored.Status)
}

func TestProcessSessionRerunOverwritesAnswer(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusCompleted)
	h.seedEvidence()

	previous := &entity.Answer{Id: uuid.New(), SessionId: session.Id, AnswerText: "stale"}
	h.uow.answers.answers[session.Id] = previous
	h.uow.citations.citations[previous.Id] = []*entity.AnswerCitation{
		{Id: uuid.New(), AnswerId: previous.Id, CaseId: uuid.New()},
	}

	result, err := h.service.ProcessSession(context.Background(), session.Id, session.WorkspaceId, "")

	assert.NoError(t, err)
	assert.NotEqual(t, previous.Id, result.AnswerId)

	answer := h.uow.answers.answers[session.Id]
	assert.NotEqual(t, "stale", answer.AnswerText)
	assert.Empty(t, h.uow.citations.citations[previous.Id], "stale citations must be gone")
	assert.Len(t, h.uow.citations.citations[answer.Id], 1)
}

func TestAskRejectsBadWorkspaceId(t *testing.T) {
	h := newHarness()

	result, err := h.service.Ask(context.Background(), &dto.AskRequest{
		WorkspaceId: "not-a-uuid",
		Question:    "anything",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetSessionNotFound(t *testing.T) {
	h := newHarness()

	resp, err := h.service.GetSession(context.Background(), uuid.New(), uuid.New())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSessionHidesAnswerUntilTerminal(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusProcessing)
	h.uow.answers.answers[session.Id] = &entity.Answer{Id: uuid.New(), SessionId: session.Id}

	resp, err := h.service.GetSession(context.Background(), session.Id, session.WorkspaceId)

	assert.NoError(t, err)
	assert.Equal(t, string(entity.SessionStatusProcessing), resp.Status)
	assert.Nil(t, resp.Answer)
}

func TestGetSessionReturnsAnswerWithCitations(t *testing.T) {
	h := newHarness()
	session := h.seedSession(entity.SessionStatusCompleted)

	answer := &entity.Answer{
		Id:         uuid.New(),
		SessionId:  session.Id,
		AnswerText: "An enforceable contract needs consideration [1].",
		Confidence: 0.7,
	}
	h.uow.answers.answers[session.Id] = answer
	h.uow.citations.citations[answer.Id] = []*entity.AnswerCitation{
		{Id: uuid.New(), AnswerId: answer.Id, CaseId: uuid.New(), CitationText: "Smith v. Jones (passage 1)"},
	}

	resp, err := h.service.GetSession(context.Background(), session.Id, session.WorkspaceId)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Answer)
	assert.Equal(t, answer.Id, resp.Answer.AnswerId)
	assert.Len(t, resp.Answer.Citations, 1)
	assert.Equal(t, "Smith v. Jones (passage 1)", resp.Answer.Citations[0].CitationText)
}
