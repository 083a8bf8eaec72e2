package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"petities/internal/platform/config"
	"petities/internal/signature/models"
	dErrors "petities/pkg/domain-errors"
	"petities/pkg/platform/sentinel"
)

// SendReminder processes one unconfirmed signature that is due for a reminder.
// The candidate is deleted instead of reminded when another signature already
// holds the same (email, petition) pair: that duplicate is the surviving
// record, the candidate is a stale leftover of a race. A failed save also
// discards the candidate rather than leaving a half-updated reminder state.
func (s *Service) SendReminder(ctx context.Context, sig *models.Signature) error {
	now := s.now()
	sig.LastReminderSentAt = &now
	if sig.RemindersSent == 0 {
		sig.RemindersSent = 1
	} else {
		sig.RemindersSent++
	}

	other, err := s.signatures.FindByEmailAndPetition(ctx, sig.Email, sig.PetitionID, sig.ID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for duplicate signature")
	}
	if other != nil {
		s.discard(ctx, sig, "duplicate signature discarded before reminder")
		if s.metrics != nil {
			s.metrics.DuplicatesDiscarded.Inc()
		}
		return nil
	}

	if err := s.signatures.Update(ctx, sig); err != nil {
		s.logger.ErrorContext(ctx, "reminder save failed, discarding signature",
			"signature_id", sig.ID,
			"petition_id", sig.PetitionID,
			"error", err,
		)
		s.discard(ctx, sig, "unsaveable reminder candidate discarded")
		return nil
	}

	if err := s.mailer.SendReminderConfirmation(ctx, sig); err != nil {
		s.reportMailFailure(ctx, "reminder mail failed", sig, err)
		return nil
	}
	if s.metrics != nil {
		s.metrics.RemindersSent.Inc()
	}
	return nil
}

// SweepReminders finds unconfirmed signatures due for a reminder and processes
// them concurrently. Per-signature failures are logged and do not stop the
// sweep. Returns the number of candidates processed.
func (s *Service) SweepReminders(ctx context.Context, cfg config.ReminderConfig) (int, error) {
	now := s.now()
	candidates, err := s.signatures.ListRemindable(ctx,
		now.Add(-cfg.SignedBefore),
		now.Add(-cfg.RemindedBefore),
		cfg.BatchSize,
	)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reminder candidates")
	}

	g, gctx := errgroup.WithContext(ctx)
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for _, sig := range candidates {
		g.Go(func() error {
			if err := s.SendReminder(gctx, sig); err != nil {
				s.logger.ErrorContext(gctx, "reminder failed",
					"signature_id", sig.ID,
					"petition_id", sig.PetitionID,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(candidates), nil
}

func (s *Service) discard(ctx context.Context, sig *models.Signature, reason string) {
	if err := s.signatures.Delete(ctx, sig.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to discard signature",
			"signature_id", sig.ID,
			"error", err,
		)
		return
	}
	s.logger.InfoContext(ctx, reason,
		"signature_id", sig.ID,
		"petition_id", sig.PetitionID,
		"email", sig.Email,
	)
}
