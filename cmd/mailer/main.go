package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
)

// mailer drains the redis outbox filled by the api server and hands
// every confirmation code to the SMTP relay.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	client, err := mail.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("redis unavailable")
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := mail.NewWorker(client, mail.NewSMTPSender(cfg.SMTPAddr, cfg.MailFrom), logger)
	logger.WithField("smtp", cfg.SMTPAddr).Info("delivering through SMTP relay")
	if err := worker.Run(ctx); err != nil {
		logger.WithError(err).Fatal("mail worker stopped")
	}
}
