package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"legal-qa-be/internal/config"
	"legal-qa-be/internal/dto"
	"legal-qa-be/internal/entity"
	"legal-qa-be/internal/pkg/logger"
	"legal-qa-be/internal/repository/memory"
	"legal-qa-be/internal/repository/specification"
	"legal-qa-be/internal/repository/unitofwork"
	"legal-qa-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Canned terminal answers. A pipeline failure still completes the session
// with one of these; only a failed commit leaves the session failed.
const (
	noPrecedentAnswer = "I could not find any relevant legal precedent to answer your question. " +
		"This may be because:\n\n" +
		"1. The question involves a novel legal issue with limited case law\n" +
		"2. The specific jurisdiction or context is not covered in our database\n" +
		"3. The question may require consultation with current statutes or regulations\n\n" +
		"I recommend consulting with a qualified legal professional for guidance on this matter."

	noPrecedentReasoning = "No relevant precedent found in database"

	processingErrorAnswer = "I encountered an error while processing your question. " +
		"Please try rephrasing your question or contact support if the issue persists."
)

// Stage contracts. Declared here so the orchestrator can be tested with
// fakes; the concrete implementations live under pkg/rag.

type Retriever interface {
	Retrieve(ctx context.Context, workspaceId uuid.UUID, question string) ([]entity.RetrievalCandidate, error)
}

type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []entity.RetrievalCandidate, topN int) ([]entity.RerankedCandidate, error)
}

type AnswerPlanner interface {
	Plan(question string, candidates []entity.RerankedCandidate) []entity.ClaimPlanItem
}

type AnswerGenerator interface {
	Generate(ctx context.Context, question string, claims []entity.ClaimPlanItem, candidates []entity.RerankedCandidate, cases map[uuid.UUID]*entity.Case) (*entity.GenerationResult, error)
}

// RunLocker mirrors pkg/idempotency so the service does not depend on redis
// directly.
type RunLocker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ResultNotifier pushes a finished result to connected clients.
type ResultNotifier interface {
	NotifyResult(workspaceId uuid.UUID, result dto.QAResult)
}

// EventPublisher announces terminal results on the bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IQAService interface {
	// Ask runs the pipeline synchronously and returns the terminal result.
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.QAResult, error)
	// AskAsync queues the question on the internal bus and returns
	// immediately with the pending session.
	AskAsync(ctx context.Context, req *dto.AskRequest) (*dto.AskAcceptedResponse, error)
	// ProcessSession executes the full pipeline for one session.
	ProcessSession(ctx context.Context, sessionId uuid.UUID, workspaceId uuid.UUID, question string) (*dto.QAResult, error)
	// GetSession reads the session with its answer and citations.
	GetSession(ctx context.Context, sessionId, workspaceId uuid.UUID) (*dto.SessionDetailResponse, error)
}

type qaService struct {
	uowFactory unitofwork.RepositoryFactory
	retriever  Retriever
	reranker   Reranker
	planner    AnswerPlanner
	generator  AnswerGenerator
	locker     RunLocker
	publisher  EventPublisher // may be nil when NATS is not configured
	notifier   ResultNotifier // may be nil when the hub is not running
	caseCache  *memory.CaseCache
	pubSub     *gochannel.GoChannel
	cfg        config.PipelineConfig
	logger     logger.ILogger
}

func NewQAService(
	uowFactory unitofwork.RepositoryFactory,
	retriever Retriever,
	reranker Reranker,
	planner AnswerPlanner,
	generator AnswerGenerator,
	locker RunLocker,
	publisher EventPublisher,
	notifier ResultNotifier,
	caseCache *memory.CaseCache,
	pubSub *gochannel.GoChannel,
	cfg config.PipelineConfig,
	log logger.ILogger,
) IQAService {
	return &qaService{
		uowFactory: uowFactory,
		retriever:  retriever,
		reranker:   reranker,
		planner:    planner,
		generator:  generator,
		locker:     locker,
		publisher:  publisher,
		notifier:   notifier,
		caseCache:  caseCache,
		pubSub:     pubSub,
		cfg:        cfg,
		logger:     log,
	}
}

func (s *qaService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.QAResult, error) {
	sessionId, workspaceId, err := s.resolveAskRequest(req)
	if err != nil {
		return nil, err
	}
	return s.ProcessSession(ctx, sessionId, workspaceId, req.Question)
}

func (s *qaService) AskAsync(ctx context.Context, req *dto.AskRequest) (*dto.AskAcceptedResponse, error) {
	sessionId, workspaceId, err := s.resolveAskRequest(req)
	if err != nil {
		return nil, err
	}

	session, err := s.ensureSession(ctx, sessionId, workspaceId, req.Question)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.AskRequest{
		SessionId:   session.Id.String(),
		WorkspaceId: workspaceId.String(),
		Question:    session.Question,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.pubSub.Publish(s.cfg.AskTopic, msg); err != nil {
		return nil, fmt.Errorf("failed to queue question: %w", err)
	}

	return &dto.AskAcceptedResponse{
		SessionId: session.Id,
		Status:    string(session.Status),
	}, nil
}

func (s *qaService) resolveAskRequest(req *dto.AskRequest) (uuid.UUID, uuid.UUID, error) {
	workspaceId, err := uuid.Parse(req.WorkspaceId)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad workspace id", ErrValidation)
	}

	sessionId := uuid.New()
	if req.SessionId != "" {
		sessionId, err = uuid.Parse(req.SessionId)
		if err != nil {
			return uuid.Nil, uuid.Nil, fmt.Errorf("%w: bad session id", ErrValidation)
		}
	}
	return sessionId, workspaceId, nil
}

// ensureSession loads the session or creates it pending. An existing session
// must belong to the workspace.
func (s *qaService) ensureSession(ctx context.Context, sessionId, workspaceId uuid.UUID, question string) (*entity.QASession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.QASessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}

	if session != nil {
		if session.WorkspaceId != workspaceId {
			return nil, fmt.Errorf("%w: session belongs to another workspace", ErrValidation)
		}
		return session, nil
	}

	if question == "" {
		return nil, fmt.Errorf("%w: unknown session and no question to create one", ErrValidation)
	}

	session = &entity.QASession{
		Id:          sessionId,
		WorkspaceId: workspaceId,
		Question:    question,
		Status:      entity.SessionStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := uow.QASessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *qaService) ProcessSession(ctx context.Context, sessionId uuid.UUID, workspaceId uuid.UUID, question string) (*dto.QAResult, error) {
	session, err := s.ensureSession(ctx, sessionId, workspaceId, question)
	if err != nil {
		return nil, err
	}

	acquired, err := s.locker.Acquire(ctx, session.Id.String())
	if err != nil {
		s.logger.Warn("QAService", "Run lock unavailable, proceeding without it", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
	} else if !acquired {
		return nil, ErrAlreadyProcessing
	} else {
		defer func() {
			if releaseErr := s.locker.Release(context.Background(), session.Id.String()); releaseErr != nil {
				s.logger.Warn("QAService", "Failed to release run lock", map[string]interface{}{
					"session_id": session.Id, "error": releaseErr.Error(),
				})
			}
		}()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// pending -> processing. Processing means a redelivery after a crash,
	// terminal means an idempotent re-run; both proceed as-is.
	if session.Status == entity.SessionStatusPending {
		if err := uow.QASessionRepository().UpdateStatus(ctx, session.Id, entity.SessionStatusProcessing); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		session.Status = entity.SessionStatusProcessing
	}

	generation := s.runPipeline(ctx, session)

	result, err := s.commitAnswer(ctx, session, generation)
	if err != nil {
		// Best effort: mark the session failed so readers are not stuck
		// looking at "processing".
		if statusErr := uow.QASessionRepository().UpdateStatus(ctx, session.Id, entity.SessionStatusFailed); statusErr != nil {
			s.logger.Error("QAService", "Failed to mark session failed", map[string]interface{}{
				"session_id": session.Id, "error": statusErr.Error(),
			})
		}
		return nil, err
	}

	s.announce(ctx, session.WorkspaceId, result)
	return result, nil
}

// runPipeline executes retrieve, rerank, plan, generate. Any stage failure
// degrades to a canned answer instead of failing the session; only
// persistence decides success or failure.
func (s *qaService) runPipeline(ctx context.Context, session *entity.QASession) *entity.GenerationResult {
	candidates, err := s.retrieve(ctx, session)
	if err != nil {
		return s.errorResult(err)
	}
	if len(candidates) == 0 {
		return &entity.GenerationResult{
			AnswerText: noPrecedentAnswer,
			Reasoning:  noPrecedentReasoning,
			Confidence: 0,
		}
	}

	reranked, err := s.rerank(ctx, session.Question, candidates)
	if err != nil {
		return s.errorResult(err)
	}

	claims := s.planner.Plan(session.Question, reranked)

	generation, err := s.generate(ctx, session, claims, reranked)
	if err != nil {
		return s.errorResult(err)
	}
	return generation
}

func (s *qaService) retrieve(ctx context.Context, session *entity.QASession) ([]entity.RetrievalCandidate, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	candidates, err := s.retriever.Retrieve(stageCtx, session.WorkspaceId, session.Question)
	if err != nil {
		s.logger.Error("QAService", "Retrieval failed", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	return candidates, nil
}

func (s *qaService) rerank(ctx context.Context, question string, candidates []entity.RetrievalCandidate) ([]entity.RerankedCandidate, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	reranked, err := s.reranker.Rerank(stageCtx, question, candidates, s.cfg.RerankTopN)
	if err != nil {
		s.logger.Error("QAService", "Rerank failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrRerank, err)
	}
	return reranked, nil
}

func (s *qaService) generate(ctx context.Context, session *entity.QASession, claims []entity.ClaimPlanItem, reranked []entity.RerankedCandidate) (*entity.GenerationResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	cases, err := s.resolveCases(stageCtx, reranked)
	if err != nil {
		s.logger.Warn("QAService", "Case metadata lookup failed, citations will be passage-only", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		cases = map[uuid.UUID]*entity.Case{}
	}

	generation, err := s.generator.Generate(stageCtx, session.Question, claims, reranked, cases)
	if err != nil {
		s.logger.Error("QAService", "Generation failed", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return generation, nil
}

// resolveCases gathers case metadata for the candidates, hitting the cache
// first and the database for the rest.
func (s *qaService) resolveCases(ctx context.Context, candidates []entity.RerankedCandidate) (map[uuid.UUID]*entity.Case, error) {
	cases := make(map[uuid.UUID]*entity.Case)
	var missing []uuid.UUID

	for _, c := range candidates {
		caseId := c.Passage.CaseId
		if _, ok := cases[caseId]; ok {
			continue
		}
		if cached, ok := s.caseCache.Get(caseId); ok {
			cases[caseId] = cached
			continue
		}
		missing = append(missing, caseId)
	}

	if len(missing) > 0 {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		fetched, err := uow.CaseRepository().FindByIds(ctx, missing)
		if err != nil {
			return cases, err
		}
		for _, kase := range fetched {
			cases[kase.Id] = kase
			s.caseCache.Save(kase)
		}
	}
	return cases, nil
}

func (s *qaService) errorResult(err error) *entity.GenerationResult {
	return &entity.GenerationResult{
		AnswerText: processingErrorAnswer,
		Reasoning:  fmt.Sprintf("Error occurred: %v", err),
		Confidence: 0,
	}
}

// commitAnswer writes the answer, its citations and the completed status in
// one transaction. A re-run deletes the previous answer first, so the upsert
// is atomic from any reader's point of view.
func (s *qaService) commitAnswer(ctx context.Context, session *entity.QASession, generation *entity.GenerationResult) (*dto.QAResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer uow.Rollback()

	previous, err := uow.AnswerRepository().FindOne(ctx, specification.BySessionID{SessionId: session.Id})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if previous != nil {
		if err := uow.AnswerCitationRepository().DeleteByAnswerId(ctx, previous.Id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if err := uow.AnswerRepository().DeleteBySessionId(ctx, session.Id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	answer := &entity.Answer{
		Id:         uuid.New(),
		SessionId:  session.Id,
		AnswerText: generation.AnswerText,
		Reasoning:  generation.Reasoning,
		Confidence: generation.Confidence,
		Metadata: map[string]interface{}{
			"claims_total":     generation.ClaimsTotal,
			"claims_supported": generation.ClaimsSupported,
			"citations_count":  len(generation.Citations),
		},
		CreatedAt: time.Now(),
	}
	if err := uow.AnswerRepository().Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	citations := make([]*entity.AnswerCitation, len(generation.Citations))
	for i := range generation.Citations {
		c := generation.Citations[i]
		c.Id = uuid.New()
		c.AnswerId = answer.Id
		citations[i] = &c
	}
	if err := uow.AnswerCitationRepository().CreateBulk(ctx, citations); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uow.QASessionRepository().UpdateStatus(ctx, session.Id, entity.SessionStatusCompleted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	status := "success"
	if generation.Confidence == 0 && len(generation.Citations) == 0 && generation.AnswerText == processingErrorAnswer {
		status = "error"
	}

	return &dto.QAResult{
		SessionId:      session.Id,
		AnswerId:       answer.Id,
		Status:         status,
		AnswerText:     answer.AnswerText,
		CitationsCount: len(generation.Citations),
		Confidence:     answer.Confidence,
	}, nil
}

// announce publishes the completion event and notifies websocket clients.
// Both are best effort: the answer is already durable.
func (s *qaService) announce(ctx context.Context, workspaceId uuid.UUID, result *dto.QAResult) {
	if s.publisher != nil {
		event := events.NewQACompletedEvent(
			result.SessionId, result.AnswerId, result.Status,
			result.AnswerText, result.CitationsCount, result.Confidence,
		)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("QAService", "Failed to publish completion event", map[string]interface{}{
				"session_id": result.SessionId, "error": err.Error(),
			})
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyResult(workspaceId, *result)
	}
}

func (s *qaService) GetSession(ctx context.Context, sessionId, workspaceId uuid.UUID) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.QASessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedByWorkspace{WorkspaceId: workspaceId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}

	resp := &dto.SessionDetailResponse{
		SessionId:   session.Id,
		WorkspaceId: session.WorkspaceId,
		Question:    session.Question,
		Status:      string(session.Status),
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}

	if !session.Status.Terminal() {
		return resp, nil
	}

	answer, err := uow.AnswerRepository().FindOne(ctx, specification.BySessionID{SessionId: session.Id})
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return resp, nil
	}

	citations, err := uow.AnswerCitationRepository().FindAll(ctx, specification.ByAnswerID{AnswerId: answer.Id})
	if err != nil {
		return nil, err
	}

	answerResp := &dto.AnswerResponse{
		AnswerId:   answer.Id,
		AnswerText: answer.AnswerText,
		Reasoning:  answer.Reasoning,
		Confidence: answer.Confidence,
		Metadata:   answer.Metadata,
	}
	for _, c := range citations {
		answerResp.Citations = append(answerResp.Citations, dto.CitationResponse{
			CaseId:         c.CaseId,
			PassageId:      c.PassageId,
			CitationText:   c.CitationText,
			RelevanceScore: c.RelevanceScore,
		})
	}
	resp.Answer = answerResp
	return resp, nil
}
