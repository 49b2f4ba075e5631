package handler

import (
	"context"
	"errors"
	"fmt"

	"legal-qa-be/internal/pkg/logger"
	"legal-qa-be/internal/service"
	"legal-qa-be/pkg/events"
	natspkg "legal-qa-be/pkg/nats"

	"github.com/google/uuid"
)

const durableName = "rag-worker"

// QAAskHandler consumes qa.ask events from JetStream and runs the answering
// pipeline. Delivery semantics: malformed or permanently invalid events are
// terminated, only a failed answer commit earns a redelivery.
type QAAskHandler struct {
	subscriber *natspkg.Subscriber
	qaService  service.IQAService
	logger     logger.ILogger
}

func NewQAAskHandler(subscriber *natspkg.Subscriber, qaService service.IQAService, log logger.ILogger) *QAAskHandler {
	return &QAAskHandler{
		subscriber: subscriber,
		qaService:  qaService,
		logger:     log,
	}
}

func (h *QAAskHandler) Start() error {
	subject := fmt.Sprintf("%s.%s", natspkg.SubjectPrefix, events.EventTypeQAAsk)
	return h.subscriber.Subscribe(subject, durableName, h.handle)
}

func (h *QAAskHandler) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	sessionIdRaw, _ := payload["session_id"].(string)
	workspaceIdRaw, _ := payload["workspace_id"].(string)
	question, _ := payload["question"].(string)

	workspaceId, err := uuid.Parse(workspaceIdRaw)
	if err != nil {
		return fmt.Errorf("%w: bad workspace id %q", natspkg.ErrNonRetryable, workspaceIdRaw)
	}

	sessionId := uuid.New()
	if sessionIdRaw != "" {
		sessionId, err = uuid.Parse(sessionIdRaw)
		if err != nil {
			return fmt.Errorf("%w: bad session id %q", natspkg.ErrNonRetryable, sessionIdRaw)
		}
	}

	h.logger.Info("QAAskHandler", "Processing qa.ask", map[string]interface{}{"session_id": sessionId})

	_, err = h.qaService.ProcessSession(ctx, sessionId, workspaceId, question)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrAlreadyProcessing):
		// Another worker holds the run lock, treat the delivery as done
		h.logger.Info("QAAskHandler", "Session already processing, skipping", map[string]interface{}{"session_id": sessionId})
		return nil
	case errors.Is(err, service.ErrValidation):
		return fmt.Errorf("%w: %v", natspkg.ErrNonRetryable, err)
	default:
		// Includes ErrPersistence: redeliver
		return err
	}
}
