package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sender hands one envelope to a mail transport.
type Sender interface {
	Deliver(ctx context.Context, env Envelope) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

func (s *SMTPSender) Deliver(_ context.Context, env Envelope) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", env.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", env.Subject())
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(env.Body())

	return smtp.SendMail(s.addr, nil, s.from, []string{env.To}, []byte(msg.String()))
}

// Worker drains the redis outbox into a Sender. Failed deliveries are logged
// and dropped, matching the best-effort contract of signup.
type Worker struct {
	client  *redis.Client
	key     string
	sender  Sender
	logger  *logrus.Logger
	timeout time.Duration
}

func NewWorker(client *redis.Client, sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{client: client, key: OutboxKey, sender: sender, logger: logger, timeout: 5 * time.Second}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.WithField("key", w.key).Info("mail worker started")
	for {
		res, err := w.client.BRPop(ctx, w.timeout, w.key).Result()
		switch {
		case ctx.Err() != nil:
			w.logger.Info("mail worker stopped")
			return nil
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			w.logger.WithError(err).Error("outbox read failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		// res is [key, value]
		w.handle(ctx, res[1])
	}
}

// Drain delivers everything currently queued and returns how many were handled.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		raw, err := w.client.RPop(ctx, w.key).Result()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("outbox read: %w", err)
		}
		w.handle(ctx, raw)
		n++
	}
}

func (w *Worker) handle(ctx context.Context, raw string) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		w.logger.WithError(err).Warn("dropping malformed envelope")
		return
	}
	if err := w.sender.Deliver(ctx, env); err != nil {
		w.logger.WithError(err).WithField("to", env.To).Error("mail delivery failed")
		return
	}
	w.logger.WithField("to", env.To).Debug("mail delivered")
}
