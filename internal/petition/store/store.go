package store

import (
	"context"

	"petities/internal/petition/models"
)

// Store is the durable petition record store. Implementations return
// sentinel.ErrNotFound / sentinel.ErrConflict so services can translate.
type Store interface {
	Create(ctx context.Context, p *models.Petition) error
	FindByID(ctx context.Context, id int64) (*models.Petition, error)
	FindBySlug(ctx context.Context, slug string) (*models.Petition, error)
}
