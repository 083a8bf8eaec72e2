// Package events publishes signature lifecycle events to Kafka. Publishing is
// best-effort and sits in the same failure category as counter updates: logged,
// never propagated into the signature write.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"petities/internal/signature/models"
)

const (
	TypeSignatureSigned    = "signature.signed"
	TypeSignatureConfirmed = "signature.confirmed"
)

// Event is the wire format for signature lifecycle events.
type Event struct {
	Type        string    `json:"type"`
	PetitionID  int64     `json:"petition_id"`
	SignatureID int64     `json:"signature_id"`
	City        string    `json:"city,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits signature lifecycle events.
type Publisher interface {
	SignatureSigned(ctx context.Context, sig *models.Signature)
	SignatureConfirmed(ctx context.Context, sig *models.Signature)
}

// KafkaPublisher produces events asynchronously via franz-go. Produce errors
// surface in the callback and are logged, nothing more.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects a Kafka producer for signature events.
func NewKafka(seedBrokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seedBrokers...),
		kgo.ProducerBatchCompression(kgo.Lz4Compression()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) SignatureSigned(ctx context.Context, sig *models.Signature) {
	p.publish(ctx, TypeSignatureSigned, sig)
}

func (p *KafkaPublisher) SignatureConfirmed(ctx context.Context, sig *models.Signature) {
	p.publish(ctx, TypeSignatureConfirmed, sig)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, sig *models.Signature) {
	payload, err := json.Marshal(Event{
		Type:        eventType,
		PetitionID:  sig.PetitionID,
		SignatureID: sig.ID,
		City:        sig.City,
		OccurredAt:  sig.EffectiveTimestamp(),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal signature event", "type", eventType, "error", err)
		return
	}

	record := &kgo.Record{Topic: p.topic, Value: payload}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.ErrorContext(ctx, "publish signature event",
				"type", eventType,
				"petition_id", sig.PetitionID,
				"error", err,
			)
		}
	})
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() {
	_ = p.client.Flush(context.Background())
	p.client.Close()
}

// NoopPublisher drops all events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) SignatureSigned(context.Context, *models.Signature)    {}
func (NoopPublisher) SignatureConfirmed(context.Context, *models.Signature) {}
