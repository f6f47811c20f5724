// Package events delivers activity lifecycle notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"example.com/agenda/internal/domain"
	"example.com/agenda/internal/observability"
)

// Publisher writes lifecycle events to a single topic, keyed by owner so
// per-owner ordering is preserved across partitions.
type Publisher struct {
	topic   string
	brokers []string
	log     zerolog.Logger

	mu     sync.Mutex
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{brokers: brokers, topic: topic, log: log}
}

type eventPayload struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OwnerID    string    `json:"ownerId"`
	ActivityID string    `json:"activityId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishTimeout bounds one broker write attempt after the request that
// produced the event has already been answered.
const publishTimeout = 5 * time.Second

// Publish hands one event to the broker and returns immediately; the
// write happens on a detached context so broker availability never
// stalls request handling. Delivery is best effort: failures are logged
// and swallowed so the store write they describe is not rolled back or
// retried.
func (p *Publisher) Publish(_ context.Context, evt domain.Event) {
	evt = enrich(evt)

	payload, err := json.Marshal(eventPayload(evt))
	if err != nil {
		p.log.Error().Err(err).Str("type", evt.Type).Msg("marshal event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(evt.OwnerID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "event_id", Value: []byte(evt.ID)},
		},
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.writerHandle().WriteMessages(writeCtx, msg); err != nil {
			p.log.Error().Err(err).Str("type", evt.Type).Str("owner_id", evt.OwnerID).Msg("publish event")
			return
		}
		observability.RecordEventPublished(evt.Type)
	}()
}

// enrich assigns the event id and timestamp when the producer left them
// unset.
func enrich(evt domain.Event) domain.Event {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}

func (p *Publisher) writerHandle() *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        p.topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		}
	}
	return p.writer
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}

// Nop discards events. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Event) {}
