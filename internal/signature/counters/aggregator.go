package counters

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	sigmetrics "petities/internal/signature/metrics"
	"petities/internal/signature/models"
)

// defaultLastActivity is the epoch offset assumed when a petition has no stored
// last-activity timestamp yet. Any real signature timestamp is newer.
const defaultLastActivity int64 = 3600

// ActivityRateUpdater recomputes a petition's derived trend score. Opaque to
// the aggregator; it only triggers the recomputation.
type ActivityRateUpdater interface {
	UpdateActivityRate(ctx context.Context, petitionID int64) error
}

// Aggregator applies the counter-update protocol after a confirmation-state
// change. Every operation is best-effort: failures are logged and counted,
// never propagated, so a counter outage can never fail or roll back the
// signature write that triggered it.
type Aggregator struct {
	store    Store
	activity ActivityRateUpdater
	logger   *slog.Logger
	metrics  *sigmetrics.Metrics
}

// NewAggregator builds an Aggregator. activity and metrics may be nil.
func NewAggregator(store Store, activity ActivityRateUpdater, logger *slog.Logger, m *sigmetrics.Metrics) *Aggregator {
	return &Aggregator{store: store, activity: activity, logger: logger, metrics: m}
}

// Apply updates the derived statistics for sig's petition. Callers invoke it
// only when the confirmed field actually changed value during a save.
//
// batch marks background reprocessing (reminder jobs, rebuilds): the daily
// bucket still counts, but the city tally, size rank, size counter and
// activity-rate trigger are skipped to avoid double-counting. The asymmetry is
// deliberate.
func (a *Aggregator) Apply(ctx context.Context, sig *models.Signature, batch bool) {
	if sig.PetitionID == 0 {
		// Unassigned signatures never count toward statistics.
		return
	}
	t := sig.EffectiveTimestamp()
	if t.IsZero() {
		return
	}

	a.bumpLastActivity(ctx, sig.PetitionID, t)

	// Daily bucket always counts, even for batch work.
	if _, err := a.store.Incr(ctx, DailyCountKey(sig.PetitionID, t)); err != nil {
		a.report(ctx, "daily count increment failed", sig.PetitionID, err)
	}

	if batch {
		return
	}

	if city := strings.ToLower(strings.TrimSpace(sig.City)); city != "" {
		if err := a.store.ZIncrBy(ctx, CityTallyKey(sig.PetitionID), city, 1); err != nil {
			a.report(ctx, "city tally increment failed", sig.PetitionID, err)
		}
	}
	member := strconv.FormatInt(sig.PetitionID, 10)
	if err := a.store.ZIncrBy(ctx, GlobalSizeRankKey, member, 1); err != nil {
		a.report(ctx, "size rank increment failed", sig.PetitionID, err)
	}
	if _, err := a.store.Incr(ctx, SizeCountKey(sig.PetitionID)); err != nil {
		a.report(ctx, "size count increment failed", sig.PetitionID, err)
	}
	if a.activity != nil {
		if err := a.activity.UpdateActivityRate(ctx, sig.PetitionID); err != nil {
			a.report(ctx, "activity rate recomputation failed", sig.PetitionID, err)
		}
	}
}

// bumpLastActivity advances the stored last-activity timestamp, skipping the
// write when the stored value is already newer. Read-compare-write without a
// lock: being overtaken is fine, the larger timestamp wins either way.
func (a *Aggregator) bumpLastActivity(ctx context.Context, petitionID int64, t time.Time) {
	key := LastActivityKey(petitionID)
	stored, ok, err := a.store.Get(ctx, key)
	if err != nil {
		a.report(ctx, "last activity read failed", petitionID, err)
		return
	}
	if !ok {
		stored = defaultLastActivity
	}
	if t.Unix() <= stored {
		return
	}
	if err := a.store.Set(ctx, key, t.Unix()); err != nil {
		a.report(ctx, "last activity write failed", petitionID, err)
	}
}

func (a *Aggregator) report(ctx context.Context, msg string, petitionID int64, err error) {
	if a.metrics != nil {
		a.metrics.CounterUpdateFailures.Inc()
	}
	if a.logger != nil {
		a.logger.ErrorContext(ctx, msg, "petition_id", petitionID, "error", err)
	}
}
