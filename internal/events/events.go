package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types published on the order topic.
const (
	TypeOrderCreated     = "order.created"
	TypeOrderStatus      = "order.status_changed"
	TypeDisputeOpened    = "dispute.opened"
	TypeDisputeResolved  = "dispute.resolved"
	TypeReviewCreated    = "review.created"
	TypePayoutProcessed  = "payout.processed"
	TypeServiceModerated = "service.moderated"
)

// Event is the envelope written to the broker and pushed to admin websocket clients.
type Event struct {
	Type       string      `json:"type"`
	OrderID    int64       `json:"order_id,omitempty"`
	EntityID   int64       `json:"entity_id,omitempty"`
	FromStatus string      `json:"from_status,omitempty"`
	ToStatus   string      `json:"to_status,omitempty"`
	ActorID    int64       `json:"actor_id,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Key groups events of one aggregate on one partition.
func (e Event) Key() string {
	if e.OrderID != 0 {
		return "order:" + strconv.FormatInt(e.OrderID, 10)
	}
	return e.Type + ":" + strconv.FormatInt(e.EntityID, 10)
}

// Publisher ships domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// KafkaPublisher writes events to one topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := Message(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Message encodes ev as a kafka message.
func Message(ev Event) (kafka.Message, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.Key()),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}, nil
}

// Noop discards events; used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
