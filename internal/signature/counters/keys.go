package counters

import (
	"fmt"
	"time"
)

// Key layout in the counter store. All petition-scoped keys embed the numeric
// petition ID; the cross-petition ranking set is global.
const (
	// GlobalSizeRankKey is the scored set ranking petitions by confirmed count.
	GlobalSizeRankKey = "global-size-rank"
)

// LastActivityKey holds the unix timestamp of a petition's most recent
// signature activity. Updated monotonically.
func LastActivityKey(petitionID int64) string {
	return fmt.Sprintf("last-activity:%d", petitionID)
}

// DailyCountKey is the per-day confirmation bucket for a petition.
func DailyCountKey(petitionID int64, t time.Time) string {
	return fmt.Sprintf("daily-count:%d:%d:%d:%d", petitionID, t.Year(), int(t.Month()), t.Day())
}

// CityTallyKey is the per-petition scored set tallying signer cities.
func CityTallyKey(petitionID int64) string {
	return fmt.Sprintf("city-tally:%d", petitionID)
}

// SizeCountKey is the per-petition confirmed-signature counter.
func SizeCountKey(petitionID int64) string {
	return fmt.Sprintf("size-count:%d", petitionID)
}

// ActivityRateKey holds the derived trend score for a petition, recomputed from
// recent daily buckets.
func ActivityRateKey(petitionID int64) string {
	return fmt.Sprintf("activity-rate:%d", petitionID)
}
