// Package mail delivers signup confirmation codes.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// OutboxKey is the redis list the API pushes to and the mailer drains.
const OutboxKey = "yamdb:mail:outbox"

// Envelope is one queued confirmation mail.
type Envelope struct {
	To       string    `json:"to"`
	Code     string    `json:"code"`
	QueuedAt time.Time `json:"queued_at"`
}

// Subject and Body render the message text.
func (e Envelope) Subject() string {
	return "YaMDb confirmation code"
}

func (e Envelope) Body() string {
	return fmt.Sprintf("Your confirmation code: %s\r\n\r\nExchange it at POST /api/v1/auth/token together with your username.\r\n", e.Code)
}

// LogMailer writes codes to the log instead of sending them. Development only.
type LogMailer struct {
	logger *logrus.Logger
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, code, address string) error {
	m.logger.WithFields(logrus.Fields{"to": address, "code": code}).Info("confirmation code")
	return nil
}
