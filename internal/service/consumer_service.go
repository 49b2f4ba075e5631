package service

import (
	"context"
	"encoding/json"
	"errors"

	"legal-qa-be/internal/dto"
	"legal-qa-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the internal ask topic: questions accepted by the
// HTTP ask endpoint are processed here off the request path.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	qaService IQAService
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	qaService IQAService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		qaService: qaService,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AskRequest
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal ask message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	sessionId, err := uuid.Parse(payload.SessionId)
	if err != nil {
		cs.logger.Error("Consumer", "Ask message carries a bad session id", map[string]interface{}{"session_id": payload.SessionId})
		msg.Ack()
		return
	}
	workspaceId, err := uuid.Parse(payload.WorkspaceId)
	if err != nil {
		cs.logger.Error("Consumer", "Ask message carries a bad workspace id", map[string]interface{}{"workspace_id": payload.WorkspaceId})
		msg.Ack()
		return
	}

	cs.logger.Info("Consumer", "Processing queued question", map[string]interface{}{"session_id": sessionId})

	_, err = cs.qaService.ProcessSession(ctx, sessionId, workspaceId, payload.Question)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, ErrAlreadyProcessing):
		// Another worker owns the run, it will produce the answer
		msg.Ack()
	case errors.Is(err, ErrValidation):
		cs.logger.Error("Consumer", "Dropping invalid ask", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
		msg.Ack()
	case errors.Is(err, ErrPersistence):
		cs.logger.Error("Consumer", "Answer commit failed, message will retry", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
		msg.Nack()
	default:
		cs.logger.Error("Consumer", "Unexpected processing failure, message will retry", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
		msg.Nack()
	}
}
