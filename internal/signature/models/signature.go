package models

import (
	"strings"
	"time"

	"petities/pkg/email"
)

// Signature is one attempted or completed petition signature. A signature is
// exclusively owned by its petition; PetitionID 0 means "unassigned" and such a
// record never counts toward statistics.
type Signature struct {
	ID         int64
	PetitionID int64
	// UniqueKey is the opaque confirmation-link token. Generated exactly once at
	// creation, immutable, unique across all signatures.
	UniqueKey string

	Name               string
	Email              string
	Street             string
	StreetNumber       string
	StreetNumberSuffix string
	PostalCode         string
	City               string
	Function           string
	CountryCode        string
	BirthDate          *time.Time
	BirthCity          string
	DutchCitizen       bool
	SubscribeToUpdates bool

	// SignedAt is set once at creation and never overwritten. ConfirmedAt is set
	// the first time Confirmed flips to true and never cleared.
	SignedAt    time.Time
	ConfirmedAt *time.Time
	Confirmed   bool
	Visible     bool
	Special     bool

	SignatureRemoteAddr       string
	SignatureRemoteBrowser    string
	ConfirmationRemoteAddr    string
	ConfirmationRemoteBrowser string
	SortOrder                 int
	RemindersSent             int
	LastReminderSentAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims name, street number and email and lower-cases the email.
// Runs before validation on both create and update; after it the email is
// never "null", at worst empty.
func (s *Signature) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.StreetNumber = strings.TrimSpace(s.StreetNumber)
	s.Email = email.Normalize(s.Email)
}

// Confirm transitions the signature to its terminal confirmed state. Reports
// whether a transition actually occurred; confirming an already-confirmed
// signature changes nothing. ConfirmedAt is stamped only if still unset.
func (s *Signature) Confirm(now time.Time) bool {
	if s.Confirmed {
		return false
	}
	s.Confirmed = true
	if s.ConfirmedAt == nil {
		at := now
		s.ConfirmedAt = &at
	}
	return true
}

// EffectiveTimestamp is the moment this signature counts for statistics:
// SignedAt, or UpdatedAt when SignedAt was never stamped. Zero means the
// signature carries no usable timestamp and aggregation skips it.
func (s *Signature) EffectiveTimestamp() time.Time {
	if !s.SignedAt.IsZero() {
		return s.SignedAt
	}
	return s.UpdatedAt
}
