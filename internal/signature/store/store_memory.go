package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"petities/internal/signature/models"
	"petities/pkg/platform/sentinel"
)

// InMemory keeps signatures in process memory. Used by unit tests and local
// development without Postgres. Constraint behavior mirrors the Postgres
// store: unique key and unique (email, petition) enforced on create.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[int64]*models.Signature
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[int64]*models.Signature)}
}

func (s *InMemory) Create(_ context.Context, sig *models.Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.UniqueKey == sig.UniqueKey {
			return sentinel.ErrConflict
		}
		if existing.PetitionID == sig.PetitionID && existing.Email == sig.Email {
			return sentinel.ErrConflict
		}
	}
	s.nextID++
	sig.ID = s.nextID
	now := time.Now()
	sig.CreatedAt = now
	sig.UpdatedAt = now
	cp := *sig
	s.byID[sig.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, sig *models.Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[sig.ID]; !ok {
		return sentinel.ErrNotFound
	}
	sig.UpdatedAt = time.Now()
	cp := *sig
	s.byID[sig.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sig
	return &cp, nil
}

func (s *InMemory) FindByKey(_ context.Context, key string) (*models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sig := range s.byID {
		if sig.UniqueKey == key {
			cp := *sig
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmailAndPetition(_ context.Context, email string, petitionID, excludeID int64) (*models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Signature
	for _, sig := range s.byID {
		if sig.ID == excludeID || sig.PetitionID != petitionID || sig.Email != email {
			continue
		}
		if found == nil || sig.ID < found.ID {
			found = sig
		}
	}
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *InMemory) ListConfirmed(_ context.Context, petitionID int64) ([]*models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Signature
	for _, sig := range s.byID {
		if sig.PetitionID == petitionID && sig.Confirmed {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) ListVisible(_ context.Context, petitionID int64) ([]*models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Signature
	for _, sig := range s.byID {
		if sig.PetitionID == petitionID && sig.Visible && sig.Confirmed {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemory) ListRemindable(_ context.Context, signedBefore, remindedBefore time.Time, limit int) ([]*models.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Signature
	for _, sig := range s.byID {
		// A zero signed_at matches NULL in Postgres: never remindable.
		if sig.Confirmed || sig.SignedAt.IsZero() || sig.SignedAt.After(signedBefore) {
			continue
		}
		if sig.LastReminderSentAt != nil && sig.LastReminderSentAt.After(remindedBefore) {
			continue
		}
		cp := *sig
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) Counts(_ context.Context, petitionID int64) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c Counts
	for _, sig := range s.byID {
		if sig.PetitionID != petitionID || !sig.Confirmed {
			continue
		}
		c.Confirmed++
		if sig.Visible {
			c.Visible++
		}
		if sig.Special {
			c.Special++
		}
		if sig.SubscribeToUpdates {
			c.Subscribed++
		}
	}
	return c, nil
}
