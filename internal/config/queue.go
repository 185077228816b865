package config

import (
	"fmt"
	"os"
	"strconv"
)

// QueueConfig holds configuration for the RabbitMQ queue that drives CV parsing.
type QueueConfig struct {
	URL         string
	QueueName   string
	MaxAttempts int
}

// NewQueueConfig creates queue configuration from environment variables.
// It reads AMQP_URL, CV_PARSE_QUEUE (default: cv_parse) and
// CV_PARSE_MAX_ATTEMPTS (default: 3). An empty AMQP_URL disables the queue;
// CV uploads are then parsed synchronously in the request path.
func NewQueueConfig() (*QueueConfig, error) {
	queueName := os.Getenv("CV_PARSE_QUEUE")
	if queueName == "" {
		queueName = "cv_parse" // default
	}

	attemptsStr := os.Getenv("CV_PARSE_MAX_ATTEMPTS")
	if attemptsStr == "" {
		attemptsStr = "3"
	}
	attempts, err := strconv.Atoi(attemptsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CV_PARSE_MAX_ATTEMPTS: %v", err)
	}

	config := &QueueConfig{
		URL:         os.Getenv("AMQP_URL"),
		QueueName:   queueName,
		MaxAttempts: attempts,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *QueueConfig) normalize() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("CV_PARSE_MAX_ATTEMPTS must be at least 1, got: %d", c.MaxAttempts)
	}
	return nil
}

// Enabled reports whether queue-driven parsing is configured.
func (c *QueueConfig) Enabled() bool {
	return c.URL != ""
}
