package service

import (
	"context"
	"encoding/json"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber       message.Subscriber
	topicName        string
	knowledgeService IKnowledgeService
	logger           logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	knowledgeService IKnowledgeService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:       subscriber,
		topicName:        topicName,
		knowledgeService: knowledgeService,
		logger:           log,
	}
}

// Consume subscribes to the knowledge topic and processes messages until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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
	var payload dto.ProcessKnowledgeDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		// malformed payloads would be redelivered forever
		msg.Ack()
		return
	}

	if err := cs.knowledgeService.Process(ctx, payload.DocumentId); err != nil {
		cs.logger.Error("CONSUMER", "failed to process knowledge document", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("CONSUMER", "knowledge document processed", map[string]interface{}{"document_id": payload.DocumentId.String()})
	msg.Ack()
}
