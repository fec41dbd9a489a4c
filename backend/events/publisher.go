package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"academy/backend/tracker"

	"github.com/rabbitmq/amqp091-go"
)

const CourseCompletedType = "course.completed"

type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// channel is the part of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher announces course completions on a topic exchange.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	logger   *log.Logger
}

func NewPublisher(url, exchange string, logger *log.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	p.logger.Printf("Event publisher initialized with exchange: %s", exchange)
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{channel: ch, exchange: exchange, logger: logger}
}

// CourseCompleted implements tracker.Notifier.
func (p *Publisher) CourseCompleted(ctx context.Context, e tracker.CompletionEvent) error {
	body, err := json.Marshal(Event{
		Type:       CourseCompletedType,
		OccurredAt: e.CompletedAt,
		Payload:    e,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,          // exchange
		CourseCompletedType, // routing key
		false,               // mandatory
		false,               // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			Headers: amqp091.Table{
				"event_type": CourseCompletedType,
				"user_id":    e.LearnerID,
				"course_id":  e.CourseID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Printf("Published event: %s for learner %s course %s", CourseCompletedType, e.LearnerID, e.CourseID)
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
