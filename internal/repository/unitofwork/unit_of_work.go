package unitofwork

import (
	"context"

	"legal-qa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	QASessionRepository() contract.QASessionRepository
	CaseRepository() contract.CaseRepository
	PassageRepository() contract.PassageRepository
	AnswerRepository() contract.AnswerRepository
	AnswerCitationRepository() contract.AnswerCitationRepository
}
