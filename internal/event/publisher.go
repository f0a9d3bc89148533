package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/teachpoint/quizgen/internal/logger"
	"github.com/teachpoint/quizgen/internal/quizgen"
)

const (
	exchangeName = "quizgen.events"

	// RoutingKeyQuestionSetGenerated announces a completed generation.
	RoutingKeyQuestionSetGenerated = "question_set.generated"
)

// QuestionSetGeneratedEvent is broadcast after every successful
// generation so downstream consumers (assessment assembly, analytics)
// can react without polling.
type QuestionSetGeneratedEvent struct {
	RequestID         string    `json:"request_id"`
	TeachingPoint     string    `json:"teaching_point"`
	QuestionType      string    `json:"question_type"`
	Language          string    `json:"language"`
	QuestionCount     int       `json:"question_count"`
	AverageConfidence float64   `json:"average_confidence"`
	StrategyUsed      string    `json:"strategy_used"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Publisher broadcasts generation events to a RabbitMQ topic exchange.
// An empty broker URI disables publishing entirely.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger
	enabled bool
}

// NewPublisher connects to the broker and declares the exchange. With
// an empty URI it returns a disabled publisher that drops everything.
func NewPublisher(brokerURI string, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if brokerURI == "" {
		log.Warn("broker URI is empty, event publishing disabled")
		return &Publisher{log: log, enabled: false}, nil
	}

	conn, err := amqp.Dial(brokerURI)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, log: log, enabled: true}, nil
}

// PublishQuestionSetGenerated announces a completed generation result.
func (p *Publisher) PublishQuestionSetGenerated(requestID string, result *quizgen.Result) error {
	event := QuestionSetGeneratedEvent{
		RequestID:         requestID,
		TeachingPoint:     result.TeachingPoint,
		QuestionType:      string(result.QuestionType),
		Language:          string(result.Language),
		QuestionCount:     len(result.Questions),
		AverageConfidence: result.Metadata.AverageConfidence,
		StrategyUsed:      result.Metadata.StrategyUsed,
		GeneratedAt:       time.Now().UTC(),
	}
	return p.publish(RoutingKeyQuestionSetGenerated, event)
}

func (p *Publisher) publish(routingKey string, event any) error {
	if !p.enabled {
		p.log.Debug("event publishing disabled, dropping event", "routing_key", routingKey)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.Publish(
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.log.Debug("published event", "routing_key", routingKey)
	return nil
}

// Close tears down the channel and connection.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn("close channel", "error", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}
