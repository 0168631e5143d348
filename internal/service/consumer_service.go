package service

import (
	"context"
	"encoding/json"
	"time"

	"aided-be/internal/pkg/logger"
	"aided-be/pkg/events"
	pktNats "aided-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn events off the in-process bus, logs them,
// and forwards them to NATS when a publisher is configured.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pktNats.Publisher
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		log:       log,
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
	var envelope busEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.log.Error("consumer", "Failed to unmarshal bus message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("consumer", "Turn event received", map[string]interface{}{
		"type": envelope.Type,
		"data": envelope.Data,
	})

	if cs.natsPub != nil {
		evt := events.BaseEvent{
			Type:       envelope.Type,
			Data:       envelope.Data,
			OccurredAt: envelope.OccurredAt,
		}
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cs.natsPub.Publish(pubCtx, evt); err != nil {
			cs.log.Warn("consumer", "Failed to forward event to NATS", map[string]interface{}{
				"type":  envelope.Type,
				"error": err.Error(),
			})
		}
		cancel()
	}

	msg.Ack()
}
