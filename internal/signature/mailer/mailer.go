// Package mailer defines the outbound notification interface for the signature
// lifecycle. Delivery transport is a thin collaborator outside this core; the
// default implementation only logs.
package mailer

import (
	"context"
	"log/slog"

	"petities/internal/signature/models"
)

// Mailer dispatches signer-facing notifications. Calls are fire-and-forget
// from the lifecycle's perspective: errors are reported by the caller but
// never fail the enclosing signature write.
type Mailer interface {
	// SendConfirmation sends the initial confirmation-link mail.
	SendConfirmation(ctx context.Context, sig *models.Signature) error
	// SendReminderConfirmation re-sends the confirmation link as a reminder.
	SendReminderConfirmation(ctx context.Context, sig *models.Signature) error
}

// LogMailer writes notifications to the log instead of delivering them. Used in
// development and as the default when no transport is wired.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, sig *models.Signature) error {
	m.logger.InfoContext(ctx, "confirmation mail",
		"email", sig.Email,
		"petition_id", sig.PetitionID,
		"unique_key", sig.UniqueKey,
	)
	return nil
}

func (m *LogMailer) SendReminderConfirmation(ctx context.Context, sig *models.Signature) error {
	m.logger.InfoContext(ctx, "reminder confirmation mail",
		"email", sig.Email,
		"petition_id", sig.PetitionID,
		"unique_key", sig.UniqueKey,
		"reminders_sent", sig.RemindersSent,
	)
	return nil
}
