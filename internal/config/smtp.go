package config

import (
	"fmt"
	"os"
	"strconv"
)

// SMTPConfig holds configuration for outbound email (verification codes, password resets).
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPConfig creates SMTP configuration from environment variables.
// It reads SMTP_HOST, SMTP_PORT (default: 587), SMTP_USERNAME, SMTP_PASSWORD
// and SMTP_FROM. When SMTP_HOST is unset the mailer falls back to logging
// outbound mail instead of sending it, so none of the fields are required here.
func NewSMTPConfig() (*SMTPConfig, error) {
	portStr := os.Getenv("SMTP_PORT")
	if portStr == "" {
		portStr = "587" // default submission port
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	config := &SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *SMTPConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", c.Port)
	}
	if c.Host != "" && c.From == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// Enabled reports whether real SMTP delivery is configured.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns the host:port dial address.
func (c *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
