package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventBookingConfirmed     = "confirmed"
	EventBookingPendingManual = "pending_manual_confirmation"
	EventPaymentFailed        = "payment_failed"
)

// BookingEvent is published when a booking reaches a terminal state.
type BookingEvent struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Topic      string            `json:"topic"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func NewBookingEvent(action, txRef string, metadata map[string]string, data interface{}) BookingEvent {
	return BookingEvent{
		Entity:     "booking",
		Action:     action,
		ResourceID: txRef,
		Topic:      "booking." + action,
		Metadata:   metadata,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// KafkaPublisher writes events to one topic, keyed by transaction reference.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.OccurredAt,
	}); err != nil {
		return fmt.Errorf("kafka write %s: %w", event.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events. Used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event BookingEvent) error {
	log.Printf("➡️  event %s for %s", event.Topic, event.ResourceID)
	return nil
}

func (LogPublisher) Close() error { return nil }

func NewEventPublisher(brokers []string, topic string) EventPublisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	log.Printf("✅ publishing booking events to kafka topic %q via %v", topic, brokers)
	return NewKafkaPublisher(brokers, topic)
}
