// Package events publishes order tracking events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Shopify/sarama"

	"storefront/internal/domain"
)

// TrackingEvent is the payload written to the tracking topic, keyed by
// order number.
type TrackingEvent struct {
	OrderID     string             `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	CustomerID  string             `json:"customerId"`
	Status      domain.OrderStatus `json:"status"`
	StatusLabel string             `json:"statusLabel"`
	Message     string             `json:"message"`
	Location    string             `json:"location,omitempty"`
	UpdatedBy   string             `json:"updatedBy"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// Publisher sends tracking events through a sarama SyncProducer. Failures
// are logged and never returned to the caller.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Logger
}

// NewKafka dials the brokers.
func NewKafka(brokers []string, topic string, logger *log.Logger) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Retry.Backoff = 250 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewWithProducer(producer, topic, logger), nil
}

func NewWithProducer(producer sarama.SyncProducer, topic string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) PublishTracking(_ context.Context, o domain.Order, e domain.TrackingEvent) {
	payload, err := json.Marshal(TrackingEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Status:      e.Status,
		StatusLabel: e.Status.Label(),
		Message:     e.Message,
		Location:    e.Location,
		UpdatedBy:   e.UpdatedBy,
		OccurredAt:  e.CreatedAt,
	})
	if err != nil {
		p.logger.Printf("events: encode tracking order=%s err=%v", o.OrderNumber, err)
		return
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(o.OrderNumber),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		p.logger.Printf("events: publish tracking order=%s status=%s err=%v", o.OrderNumber, e.Status, err)
		return
	}
	p.logger.Printf("events: published tracking order=%s status=%s partition=%d offset=%d", o.OrderNumber, e.Status, partition, offset)
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// Noop drops every event. It is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishTracking(context.Context, domain.Order, domain.TrackingEvent) {}

func (Noop) Close() error { return nil }
