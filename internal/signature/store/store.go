package store

import (
	"context"
	"time"

	"petities/internal/signature/models"
)

// Counts are the per-petition signature tallies derived straight from the
// record store. The counter store keeps the fast approximations; these are the
// authoritative numbers.
type Counts struct {
	Confirmed  int64 `json:"confirmed"`
	Visible    int64 `json:"visible"`
	Special    int64 `json:"special"`
	Subscribed int64 `json:"subscribed"`
}

// Store is the durable signature record store. Implementations return
// sentinel.ErrNotFound and sentinel.ErrConflict (unique key or email+petition
// constraint) so services can translate them.
type Store interface {
	Create(ctx context.Context, sig *models.Signature) error
	Update(ctx context.Context, sig *models.Signature) error
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*models.Signature, error)
	// FindByKey looks a signature up by its confirmation-link token.
	FindByKey(ctx context.Context, key string) (*models.Signature, error)
	// FindByEmailAndPetition returns a signature with the given normalized email
	// under the petition, skipping excludeID (0 to skip nothing).
	FindByEmailAndPetition(ctx context.Context, email string, petitionID, excludeID int64) (*models.Signature, error)

	// ListConfirmed returns all confirmed signatures for a petition, ordered by
	// id. Used by batch recount jobs.
	ListConfirmed(ctx context.Context, petitionID int64) ([]*models.Signature, error)
	// ListVisible returns the signatures shown publicly for a petition
	// (visible and confirmed), ordered by sort order then id.
	ListVisible(ctx context.Context, petitionID int64) ([]*models.Signature, error)
	// ListRemindable returns unconfirmed signatures due for a reminder: signed
	// before signedBefore and never reminded, or last reminded before
	// remindedBefore.
	ListRemindable(ctx context.Context, signedBefore, remindedBefore time.Time, limit int) ([]*models.Signature, error)
	Counts(ctx context.Context, petitionID int64) (Counts, error)
}
