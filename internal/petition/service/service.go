package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"petities/internal/petition/models"
	"petities/internal/petition/store"
	"petities/internal/signature/counters"
	sigstore "petities/internal/signature/store"
	dErrors "petities/pkg/domain-errors"
	"petities/pkg/platform/sentinel"
)

// activityWindowDays is how far back the activity-rate recomputation looks.
const activityWindowDays = 7

// Service exposes petition lookups and the derived statistics around them. It
// owns the activity-rate recomputation the counter aggregator triggers.
type Service struct {
	petitions  store.Store
	signatures sigstore.Store
	counters   counters.Store
	logger     *slog.Logger
	now        func() time.Time
}

func New(petitions store.Store, signatures sigstore.Store, cs counters.Store, logger *slog.Logger) *Service {
	return &Service{
		petitions:  petitions,
		signatures: signatures,
		counters:   cs,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get returns a petition by ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Petition, error) {
	p, err := s.petitions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "petition not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load petition")
	}
	return p, nil
}

// GetBySlug returns a petition by its URL slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Petition, error) {
	p, err := s.petitions.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "petition not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load petition")
	}
	return p, nil
}

// UpdateActivityRate recomputes the petition's trend score from its recent
// daily buckets and stores it back. Recent days weigh heavier so the score
// tracks momentum, not lifetime size.
func (s *Service) UpdateActivityRate(ctx context.Context, petitionID int64) error {
	day := s.now()
	var score int64
	for i := 0; i < activityWindowDays; i++ {
		count, ok, err := s.counters.Get(ctx, counters.DailyCountKey(petitionID, day))
		if err != nil {
			return fmt.Errorf("read daily bucket: %w", err)
		}
		if ok {
			score += count * int64(activityWindowDays-i)
		}
		day = day.AddDate(0, 0, -1)
	}
	if err := s.counters.Set(ctx, counters.ActivityRateKey(petitionID), score); err != nil {
		return fmt.Errorf("store activity rate: %w", err)
	}
	return nil
}

// DayCount is one daily confirmation bucket.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Stats bundles the near-real-time numbers for one petition: the fast counter
// approximations plus the authoritative record-store counts.
type Stats struct {
	PetitionID     int64           `json:"petition_id"`
	SizeCount      int64           `json:"size_count"`
	ActivityRate   int64           `json:"activity_rate"`
	LastActivityAt *time.Time      `json:"last_activity_at,omitempty"`
	Daily          []DayCount      `json:"daily"`
	Counts         sigstore.Counts `json:"counts"`
}

// Stats assembles the statistics view for a petition. Counter-store reads are
// best-effort: a missing key reads as zero.
func (s *Service) Stats(ctx context.Context, petitionID int64) (*Stats, error) {
	if _, err := s.Get(ctx, petitionID); err != nil {
		return nil, err
	}

	stats := &Stats{PetitionID: petitionID}

	if size, ok, err := s.counters.Get(ctx, counters.SizeCountKey(petitionID)); err == nil && ok {
		stats.SizeCount = size
	} else if err != nil {
		s.logger.WarnContext(ctx, "size count read failed", "petition_id", petitionID, "error", err)
	}

	if rate, ok, err := s.counters.Get(ctx, counters.ActivityRateKey(petitionID)); err == nil && ok {
		stats.ActivityRate = rate
	} else if err != nil {
		s.logger.WarnContext(ctx, "activity rate read failed", "petition_id", petitionID, "error", err)
	}

	if last, ok, err := s.counters.Get(ctx, counters.LastActivityKey(petitionID)); err == nil && ok {
		at := time.Unix(last, 0).UTC()
		stats.LastActivityAt = &at
	} else if err != nil {
		s.logger.WarnContext(ctx, "last activity read failed", "petition_id", petitionID, "error", err)
	}

	day := s.now()
	for i := 0; i < activityWindowDays; i++ {
		count, _, err := s.counters.Get(ctx, counters.DailyCountKey(petitionID, day))
		if err != nil {
			s.logger.WarnContext(ctx, "daily bucket read failed", "petition_id", petitionID, "error", err)
		}
		stats.Daily = append(stats.Daily, DayCount{Date: day.Format("2006-01-02"), Count: count})
		day = day.AddDate(0, 0, -1)
	}

	recordCounts, err := s.signatures.Counts(ctx, petitionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count signatures")
	}
	stats.Counts = recordCounts

	return stats, nil
}
