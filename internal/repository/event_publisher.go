package repository

import (
	"context"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/internal/domain/repository"
	pkgkafka "StockDash/pkg/kafka"
)

// lifecycleMessage is the wire form of a lifecycle event.
type lifecycleMessage struct {
	SessionID  string `json:"session_id"`
	Instrument string `json:"instrument"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Phase      string `json:"phase"`
	Error      string `json:"error,omitempty"`
	Points     int    `json:"points"`
	At         string `json:"at"`
}

func toMessage(evt models.LifecycleEvent) lifecycleMessage {
	return lifecycleMessage{
		SessionID:  evt.SessionID,
		Instrument: evt.Instrument,
		Start:      evt.Start,
		End:        evt.End,
		Phase:      string(evt.Phase),
		Error:      evt.Error,
		Points:     evt.Points,
		At:         evt.At.UTC().Format(time.RFC3339Nano),
	}
}

// messagePublisher is the subset of pkg/kafka.Producer used here.
type messagePublisher interface {
	Publish(ctx context.Context, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher for Kafka. Messages are keyed
// by session so one session's events stay ordered within a partition.
type KafkaEventPublisher struct {
	producer messagePublisher
}

// NewKafkaEventPublisher creates Kafka publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, evt models.LifecycleEvent) error {
	return p.producer.Publish(ctx, []byte(evt.SessionID), toMessage(evt))
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEventPublisher discards events. Used when no brokers are configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, models.LifecycleEvent) error { return nil }

func (NoopEventPublisher) Close() error { return nil }
