package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
)

// Subjects for storefront events. Consumers are external; publishing is
// best-effort and never blocks an order flow.
const (
	SubjectOrderCreated       = "order.created"
	SubjectOrderStatusUpdated = "order.status.updated"
)

type EventPublisher interface {
	Publish(subject string, event interface{}) error
}

type natsPublisher struct {
	conn *nats.Conn
	log  logger.Logger
}

func NewPublisher(conn *nats.Conn, log logger.Logger) EventPublisher {
	return &natsPublisher{conn: conn, log: log}
}

func (p *natsPublisher) Publish(subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for subject %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	p.log.Debugf("Published event to %s", subject)
	return nil
}

// NoOpPublisher is used when the broker is not configured.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(subject string, event interface{}) error { return nil }
