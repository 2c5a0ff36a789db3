// Package rabbitmq publishes story lifecycle events for downstream
// consumers (showroom frontends, CRM sync).
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"

	"vehicle-story-pipeline/metrics"
)

const (
	routingKeyStoryCompleted = "story.completed"
	routingKeyStoryFailed    = "story.failed"
)

// StoryEvent is the wire shape of a terminal-status announcement. Error is
// empty for completed runs.
type StoryEvent struct {
	RunID      string    `json:"run_id"`
	StoryID    string    `json:"story_id"`
	VehicleID  string    `json:"vehicle_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes story events to a direct exchange. It reconnects
// lazily on publish failure.
type Publisher struct {
	amqpURL  string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher creates a publisher. The connection is established on first
// publish so a broker outage does not block service startup.
func NewPublisher(amqpURL, exchange string) *Publisher {
	return &Publisher{amqpURL: amqpURL, exchange: exchange}
}

// StoryCompleted announces one finished story.
func (p *Publisher) StoryCompleted(ctx context.Context, runID, storyID, vehicleID string) error {
	return p.publish(StoryEvent{
		RunID:      runID,
		StoryID:    storyID,
		VehicleID:  vehicleID,
		Status:     "complete",
		OccurredAt: time.Now().UTC(),
	}, routingKeyStoryCompleted)
}

// StoryFailed announces one failed run so consumers can surface or retry it.
func (p *Publisher) StoryFailed(ctx context.Context, runID, storyID, vehicleID, reason string) error {
	return p.publish(StoryEvent{
		RunID:      runID,
		StoryID:    storyID,
		VehicleID:  vehicleID,
		Status:     "failed",
		Error:      reason,
		OccurredAt: time.Now().UTC(),
	}, routingKeyStoryFailed)
}

func (p *Publisher) publish(event StoryEvent, routingKey string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.publishLocked(routingKey, body); err != nil {
		// One reconnect attempt; channels die silently on broker restart.
		log.WithError(err).Warn("publish failed, reconnecting")
		if recErr := p.reconnectLocked(); recErr != nil {
			metrics.PublishErrorTotal.Inc()
			return recErr
		}
		if err := p.publishLocked(routingKey, body); err != nil {
			metrics.PublishErrorTotal.Inc()
			return err
		}
	}
	return nil
}

func (p *Publisher) publishLocked(routingKey string, body []byte) error {
	if p.channel == nil {
		if err := p.reconnectLocked(); err != nil {
			return err
		}
	}
	return p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// reconnectLocked tears down any existing channel/connection and recreates
// them. Caller must hold p.mu.
func (p *Publisher) reconnectLocked() error {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}

	conn, err := amqp.Dial(p.amqpURL)
	if err != nil {
		metrics.RabbitMQConnected.Set(0)
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		metrics.RabbitMQConnected.Set(0)
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		metrics.RabbitMQConnected.Set(0)
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	metrics.RabbitMQConnected.Set(1)
	return nil
}

// Close shuts the publisher down.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	metrics.RabbitMQConnected.Set(0)
}
