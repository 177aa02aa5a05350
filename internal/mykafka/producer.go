package mykafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicUsers      = "users"
	TopicProducts   = "products"
	TopicOrders     = "orders"
	TopicOrderItems = "order_items"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   uint      `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func NewEvent(typ string, entityID uint, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic string, event Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	prefix string
}

// NewProducer returns a Nop publisher when no brokers are configured.
func NewProducer(brokers []string, topicPrefix string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &Producer{writer: w, prefix: topicPrefix}
}

func (p *Producer) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// PublishEvent keys messages by entity id so events of one entity stay ordered.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic(topic),
		Key:   []byte(strconv.FormatUint(uint64(event.EntityID), 10)),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, Event) error { return nil }

func (Nop) Close() error { return nil }
