package store

import (
	"time"

	"petities/internal/signature/models"
)

// Seed installs a signature directly into the in-memory store, bypassing the
// create-time constraints. Tests use it to reproduce states that only arise
// from races in production, such as two signatures sharing (email, petition).
func (s *InMemory) Seed(sig *models.Signature) *models.Signature {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sig.ID == 0 {
		s.nextID++
		sig.ID = s.nextID
	} else if sig.ID > s.nextID {
		s.nextID = sig.ID
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now()
	}
	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = sig.CreatedAt
	}
	cp := *sig
	s.byID[sig.ID] = &cp
	return sig
}
