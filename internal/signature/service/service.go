// Package service orchestrates the signature lifecycle: policy-gated
// validation, the unconfirmed-to-confirmed transition, counter aggregation and
// the reminder sweep. Persisting the record is the only operation that may fail
// a request; counters, mail and events are best-effort side effects dispatched
// after the write commits.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"petities/internal/events"
	petition "petities/internal/petition/models"
	"petities/internal/petition/policy"
	petitionstore "petities/internal/petition/store"
	"petities/internal/signature/counters"
	"petities/internal/signature/mailer"
	sigmetrics "petities/internal/signature/metrics"
	"petities/internal/signature/models"
	"petities/internal/signature/store"
	"petities/internal/signature/validate"
	dErrors "petities/pkg/domain-errors"
	"petities/pkg/platform/sentinel"
)

// RequestMeta carries the audit facts of the HTTP request behind a lifecycle
// operation.
type RequestMeta struct {
	RemoteAddr string
	UserAgent  string
}

// Browser renders the user agent as a compact browser name and version.
func (m RequestMeta) Browser() string {
	if m.UserAgent == "" {
		return ""
	}
	ua := useragent.New(m.UserAgent)
	name, version := ua.Browser()
	if name == "" {
		return m.UserAgent
	}
	if version == "" {
		return name
	}
	return name + " " + version
}

// Service implements the signature lifecycle against injected collaborators.
type Service struct {
	signatures store.Store
	petitions  petitionstore.Store
	aggregator *counters.Aggregator
	mailer     mailer.Mailer
	events     events.Publisher
	metrics    *sigmetrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithEvents wires the signature event publisher.
func WithEvents(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics wires Prometheus metrics.
func WithMetrics(m *sigmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(signatures store.Store, petitions petitionstore.Store, aggregator *counters.Aggregator, m mailer.Mailer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		signatures: signatures,
		petitions:  petitions,
		aggregator: aggregator,
		mailer:     m,
		events:     events.NoopPublisher{},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate runs the phase-appropriate checks against sig, including the email
// uniqueness check within its petition. It does not persist anything.
func (s *Service) Validate(ctx context.Context, sig *models.Signature, phase validate.Phase) (models.Violations, error) {
	pet, err := s.loadPetition(ctx, sig.PetitionID)
	if err != nil {
		return nil, err
	}
	v := validate.Run(sig, policy.For(pet), phase, s.now())
	if err := s.checkEmailUnique(ctx, sig, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Create validates and persists a new signature. On success the signature has
// a fresh unique key, SignedAt stamped, and the confirmation mail and signed
// event dispatched. A non-nil Violations return means nothing was persisted.
func (s *Service) Create(ctx context.Context, sig *models.Signature, meta RequestMeta) (models.Violations, error) {
	if sig.PetitionID == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "petition is required")
	}
	pet, err := s.petitions.FindByID(ctx, sig.PetitionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "petition not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load petition")
	}

	v := validate.Run(sig, policy.For(pet), validate.PhaseCreate, s.now())
	if err := s.checkEmailUnique(ctx, sig, v); err != nil {
		return nil, err
	}
	if v.Any() {
		return v, nil
	}

	sig.UniqueKey = newUniqueKey()
	if sig.SignedAt.IsZero() {
		sig.SignedAt = s.now()
	}
	sig.Confirmed = false
	sig.ConfirmedAt = nil
	sig.SignatureRemoteAddr = meta.RemoteAddr
	sig.SignatureRemoteBrowser = meta.Browser()

	if err := s.signatures.Create(ctx, sig); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race against a concurrent signer with the same email.
			v.Add("email", "has already signed this petition")
			return v, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create signature")
	}

	if s.metrics != nil {
		s.metrics.SignaturesCreated.Inc()
	}
	s.sendConfirmationMail(ctx, sig)
	s.events.SignatureSigned(ctx, sig)
	return nil, nil
}

// Update loads the signature, applies the caller's changes and re-validates
// with the update phase, so policy-gated profile requirements now apply.
// A signature belonging to a different petition is reported as not found
// before any change is applied. Lifecycle fields are immutable here: the
// unique key, SignedAt and the confirmation state can only change through
// Create and Confirm.
func (s *Service) Update(ctx context.Context, petitionID, id int64, apply func(*models.Signature)) (*models.Signature, models.Violations, error) {
	sig, err := s.signatures.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "signature not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load signature")
	}
	if sig.PetitionID != petitionID {
		// Ownership is hidden: a foreign petition sees the same not-found
		// answer as a missing record.
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "signature not found")
	}

	frozen := *sig
	apply(sig)
	sig.ID = frozen.ID
	sig.PetitionID = frozen.PetitionID
	sig.UniqueKey = frozen.UniqueKey
	sig.SignedAt = frozen.SignedAt
	sig.Confirmed = frozen.Confirmed
	sig.ConfirmedAt = frozen.ConfirmedAt
	sig.CreatedAt = frozen.CreatedAt

	pet, err := s.loadPetition(ctx, sig.PetitionID)
	if err != nil {
		return nil, nil, err
	}
	v := validate.Run(sig, policy.For(pet), validate.PhaseUpdate, s.now())
	if err := s.checkEmailUnique(ctx, sig, v); err != nil {
		return nil, nil, err
	}
	if v.Any() {
		return nil, v, nil
	}

	if err := s.signatures.Update(ctx, sig); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			v.Add("email", "has already signed this petition")
			return nil, v, nil
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update signature")
	}
	return sig, nil, nil
}

// Confirm transitions the signature matching the confirmation-link token into
// its terminal confirmed state. Idempotent: a second confirmation returns the
// signature unchanged and triggers no counter or event work.
func (s *Service) Confirm(ctx context.Context, key string, meta RequestMeta) (*models.Signature, error) {
	start := s.now()

	sig, err := s.signatures.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown signature key")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load signature")
	}

	if !sig.Confirm(s.now()) {
		return sig, nil
	}

	sig.ConfirmationRemoteAddr = meta.RemoteAddr
	sig.ConfirmationRemoteBrowser = meta.Browser()

	if err := s.signatures.Update(ctx, sig); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to confirm signature")
	}

	// The record write committed; everything below is best-effort.
	if s.metrics != nil {
		s.metrics.SignaturesConfirmed.Inc()
		s.metrics.ConfirmDuration.Observe(s.now().Sub(start).Seconds())
	}
	s.aggregator.Apply(ctx, sig, false)
	s.events.SignatureConfirmed(ctx, sig)
	return sig, nil
}

// ListVisible returns the confirmed signatures of a petition whose signers
// opted into public listing, in display order.
func (s *Service) ListVisible(ctx context.Context, petitionID int64) ([]*models.Signature, error) {
	sigs, err := s.signatures.ListVisible(ctx, petitionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list signatures")
	}
	return sigs, nil
}

// RecountDailyBuckets replays the daily-bucket aggregation for every confirmed
// signature of a petition. Batch mode: the city tally, size rank, size counter
// and activity trigger are left alone so reprocessing never double-counts them.
func (s *Service) RecountDailyBuckets(ctx context.Context, petitionID int64) (int, error) {
	sigs, err := s.signatures.ListConfirmed(ctx, petitionID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list confirmed signatures")
	}
	for _, sig := range sigs {
		s.aggregator.Apply(ctx, sig, true)
	}
	return len(sigs), nil
}

func (s *Service) loadPetition(ctx context.Context, petitionID int64) (*petition.Petition, error) {
	if petitionID == 0 {
		return nil, nil
	}
	pet, err := s.petitions.FindByID(ctx, petitionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Policy treats an absent petition as "no requirements active".
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load petition")
	}
	return pet, nil
}

func (s *Service) checkEmailUnique(ctx context.Context, sig *models.Signature, v models.Violations) error {
	if sig.Email == "" || sig.PetitionID == 0 {
		return nil
	}
	_, err := s.signatures.FindByEmailAndPetition(ctx, sig.Email, sig.PetitionID, sig.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email uniqueness")
	}
	v.Add("email", "has already signed this petition")
	return nil
}

func (s *Service) sendConfirmationMail(ctx context.Context, sig *models.Signature) {
	// Reminder and first-confirmation notices are mutually exclusive channels:
	// once a reminder went out, the plain confirmation mail never does.
	if sig.LastReminderSentAt != nil {
		return
	}
	if err := s.mailer.SendConfirmation(ctx, sig); err != nil {
		s.reportMailFailure(ctx, "confirmation mail failed", sig, err)
	}
}

func (s *Service) reportMailFailure(ctx context.Context, msg string, sig *models.Signature, err error) {
	if s.metrics != nil {
		s.metrics.MailFailures.Inc()
	}
	s.logger.ErrorContext(ctx, msg,
		"signature_id", sig.ID,
		"petition_id", sig.PetitionID,
		"error", err,
	)
}

// newUniqueKey generates the opaque confirmation token: a uuid without dashes,
// so it pastes cleanly into a mail link.
func newUniqueKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
