package services

import (
	"context"

	"github.com/dmitrijs2005/devfeed/internal/logging"
)

// Mailer delivers account e-mails.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

// LogMailer writes the verification link to the log instead of sending mail.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mailer")}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, link string) error {
	m.logger.Info(ctx, "verification e-mail", "to", email, "link", link)
	return nil
}
