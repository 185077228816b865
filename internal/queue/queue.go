// Package queue connects the API to the CV parsing worker over RabbitMQ.
// Jobs are published to a durable queue with persistent delivery so parse
// requests survive broker restarts.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ParseJob is the message published for each CV awaiting parsing.
type ParseJob struct {
	CVID   uuid.UUID `json:"cv_id"`
	UserID uuid.UUID `json:"user_id"`
}

// Queue wraps an AMQP connection with the parse queue declared on it.
type Queue struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// Connect dials the broker and declares the durable parse queue.
func Connect(url, queueName string, logger *zap.Logger) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &Queue{
		conn:      conn,
		channel:   ch,
		queueName: queueName,
		logger:    logger,
	}, nil
}

// Close shuts down the channel and connection.
func (q *Queue) Close() error {
	if err := q.channel.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}

// Publish enqueues a parse job with persistent delivery.
func (q *Queue) Publish(job ParseJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal parse job: %w", err)
	}

	err = q.channel.Publish(
		"",          // default exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish parse job: %w", err)
	}
	return nil
}

// Handler processes one parse job. The handler owns retry bookkeeping and
// failure persistence; a returned error only controls logging here.
type Handler func(ctx context.Context, job ParseJob) error

// Consume reads parse jobs until the context is cancelled. Messages are acked
// after the handler returns regardless of outcome: the handler records
// failures in the database, and redelivering a poisoned message would only
// loop it. Malformed bodies are rejected without requeue.
func (q *Queue) Consume(ctx context.Context, handler Handler) error {
	// One unacked message per consumer keeps slow parses from starving
	// other workers.
	if err := q.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := q.channel.Consume(
		q.queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel closed")
			}

			var job ParseJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				q.logger.Error("rejecting malformed parse job", zap.Error(err))
				_ = msg.Reject(false)
				continue
			}

			if err := handler(ctx, job); err != nil {
				q.logger.Error("parse job failed",
					zap.String("cv_id", job.CVID.String()),
					zap.Error(err))
			}
			_ = msg.Ack(false)
		}
	}
}

// Backoff returns the delay before retry number attempt (1-based):
// 1s, 2s, 4s, ... capped at 30s.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Second << (attempt - 1)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}
