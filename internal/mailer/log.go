package mailer

import (
	"context"

	"github.com/techmoncton/hive/internal/pkg/logger"
)

// LogSender is the development fallback used when no provider credential is
// configured. It performs no network call and reports success unconditionally,
// logging the recipient and subject so the verification/unsubscribe links can
// be copied out of the server log.
type LogSender struct{}

// NewLogSender creates the logging sender.
func NewLogSender() *LogSender { return &LogSender{} }

// Send logs the message instead of delivering it. Never fails.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	logger.Info("dev mode: email not sent",
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
