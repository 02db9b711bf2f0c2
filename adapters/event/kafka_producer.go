package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/config"
	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/pkg/logger"
)

const TopicNetworkEvents = "network.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
	log    logger.Logger
}

func NewKafkaProducer(cfg config.Config, log logger.Logger) (*KafkaProducer, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicNetworkEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialized Kafka producer", zap.Strings("brokers", brokers), zap.String("topic", TopicNetworkEvents))
	return &KafkaProducer{writer: writer, log: log}, nil
}

// Publish writes evt keyed by user id, so one user's events stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, evt event.Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s to %s: %w", evt.ID, TopicNetworkEvents, err)
	}
	return nil
}

func (p *KafkaProducer) Close() {
	if err := p.writer.Close(); err != nil {
		p.log.Error("Failed to close Kafka producer", err)
		return
	}
	p.log.Info("Closed Kafka producer")
}

// DecodeMessage is the inverse of Publish.
func DecodeMessage(msg kafka.Message) (event.Event, error) {
	var evt event.Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return event.Event{}, fmt.Errorf("unmarshal event at offset %d: %w", msg.Offset, err)
	}
	if evt.Type == "" {
		return event.Event{}, fmt.Errorf("event at offset %d has no type", msg.Offset)
	}
	return evt, nil
}
