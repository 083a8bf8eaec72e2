package store

import (
	"context"
	"sync"

	"petities/internal/petition/models"
	"petities/pkg/platform/sentinel"
)

// InMemory keeps petitions in process memory. Used by unit tests and local
// development without Postgres.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[int64]*models.Petition
	bySlug map[string]int64
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[int64]*models.Petition),
		bySlug: make(map[string]int64),
	}
}

func (s *InMemory) Create(_ context.Context, p *models.Petition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Slug != "" {
		if _, exists := s.bySlug[p.Slug]; exists {
			return sentinel.ErrConflict
		}
	}
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	} else if p.ID > s.nextID {
		s.nextID = p.ID
	}
	cp := *p
	s.byID[p.ID] = &cp
	if p.Slug != "" {
		s.bySlug[p.Slug] = p.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Petition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Petition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySlug[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}
