// Package aggregate derives the displayed point state from the authoritative
// ledger data and the reservation overlay. Pure functions only; the result
// is recomputed on every read and never stored.
package aggregate

import (
	"time"

	"github.com/suiboard/suiboard-backend/internal/board/config"
	"github.com/suiboard/suiboard-backend/internal/board/types"
)

// Effective combines the achievement record, the account's leaderboard entry
// (if any) and the reservation overlay into the single state views consume.
//
// The leaderboard entry takes precedence for points and level: the ledger
// updates it in the same transaction that changes points, and the snapshot
// is often refetched sooner than the per-account object. AvailablePoints is
// clamped at zero: the overlay may overstate reservations relative to a
// total it has not seen change, and that is an accepted display loss, not
// an error.
func Effective(rec *types.AchievementRecord, lb *types.LeaderboardEntry, ov types.ReservationOverlay) types.EffectiveState {
	var total, level uint64
	switch {
	case lb != nil:
		total = lb.Points
		level = lb.Level
	case rec != nil:
		total = rec.Points
		level = rec.Level
	}

	reserved := ov.Total()
	available := uint64(0)
	if total > reserved {
		available = total - reserved
	}

	return types.EffectiveState{
		TotalPoints:     total,
		ReservedTotal:   reserved,
		AvailablePoints: available,
		Level:           level,
	}
}

// CurrentDay is the day index since epoch: unix milliseconds divided by the
// fixed day length. Matches the contract's own computation.
func CurrentDay(now time.Time) uint64 {
	return uint64(now.UnixMilli() / config.DayLengthMs)
}

// CanClaimToday reports whether the daily reward is claimable.
// lastClaimDay == 0 means never claimed and always permits claiming.
func CanClaimToday(lastClaimDay uint64, now time.Time) bool {
	if lastClaimDay == 0 {
		return true
	}
	return lastClaimDay < CurrentDay(now)
}

// DailyBonus is the display-only estimate of today's claim value. The ledger
// computes the real amount.
func DailyBonus(currentStreak uint64) uint64 {
	return config.DailyBonusBase + config.DailyBonusPerStreakDay*currentStreak
}

// FindEntry returns the leaderboard entry for the account, or nil.
// The comparison is case-insensitive like all address comparisons.
func FindEntry(entries []types.LeaderboardEntry, account types.Account) *types.LeaderboardEntry {
	for i := range entries {
		if entries[i].Account.Equal(account) {
			return &entries[i]
		}
	}
	return nil
}

// Rank returns the 1-based leaderboard position of the account, or 0 when absent.
func Rank(entries []types.LeaderboardEntry, account types.Account) int {
	for i := range entries {
		if entries[i].Account.Equal(account) {
			return i + 1
		}
	}
	return 0
}
