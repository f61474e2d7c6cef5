// Package normalize converts loosely-typed node responses into the stable
// internal model. Nothing outside this package walks raw field trees.
// Missing optional fields take documented defaults: integers 0, booleans
// false, nested objects empty.
package normalize

import (
	"sort"

	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/types"
)

// Achievement selects the authoritative record from the candidate set.
// Contract upgrades can leave several records for one logical user; the one
// with the highest version wins, ties resolved by first-after-sort (the sort
// is stable, so the outcome is deterministic). An empty candidate set yields
// types.ErrNoAchievement, never a panic.
func Achievement(raws []ledger.RawObject) (*types.AchievementRecord, error) {
	if len(raws) == 0 {
		return nil, types.ErrNoAchievement
	}

	candidates := make([]ledger.RawObject, len(raws))
	copy(candidates, raws)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Version > candidates[j].Version
	})

	obj := candidates[0]
	f := moveFields(obj.Content)

	streak := fieldsOf(f["daily_streak"])
	record := &types.AchievementRecord{
		ID:             obj.ObjectID,
		Version:        obj.Version,
		Points:         asUint(f["points"]),
		Level:          asUint(f["level"]),
		TasksCompleted: asBoolSlice(f["tasks_completed"]),
		DailyStreak: types.DailyStreak{
			Current:      asUint(streak["current_streak"]),
			Longest:      asUint(streak["longest_streak"]),
			LastClaimDay: asUint(streak["last_claim_day"]),
		},
	}
	return record, nil
}

// Leaderboard decodes the shared leaderboard object into a ranking sorted
// descending by points. A malformed or empty object yields an empty slice.
func Leaderboard(raw *ledger.RawObject) []types.LeaderboardEntry {
	entries := []types.LeaderboardEntry{}
	if raw == nil {
		return entries
	}
	f := moveFields(raw.Content)
	contents := vecMapContents(f, "top_players")
	for _, item := range contents {
		entryFields := fieldsOf(item)
		if len(entryFields) == 0 {
			continue
		}
		valueFields := fieldsOf(entryFields["value"])
		points := asUint(valueFields["points"])
		if points == 0 {
			// Older contract versions stored the value as a bare number
			points = asUint(entryFields["value"])
		}
		entries = append(entries, types.LeaderboardEntry{
			Account:        types.Account(asString(entryFields["key"])),
			Points:         points,
			Level:          asUint(valueFields["level"]),
			TasksCompleted: asUint(valueFields["tasks_completed"]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	return entries
}

// Proposals decodes the governance hub's proposal table. Empty or malformed
// input yields an empty typed slice.
func Proposals(raw *ledger.RawObject) []types.ProposalRecord {
	proposals := []types.ProposalRecord{}
	if raw == nil {
		return proposals
	}
	f := moveFields(raw.Content)
	contents := vecMapContents(f, "proposals")
	for _, item := range contents {
		p := entryValueFields(item)
		if len(p) == 0 {
			continue
		}
		difficulty := types.DifficultyCategory(asUint(p["difficulty"]))
		if difficulty == 0 {
			difficulty = types.CategoryBuilder
		}
		proposals = append(proposals, types.ProposalRecord{
			ID:           asUint(p["id"]),
			Title:        asString(p["title"]),
			Description:  asString(p["description"]),
			VotesFor:     asUint(p["votes_for"]),
			VotesAgainst: asUint(p["votes_against"]),
			RewardPoints: asUint(p["reward_points"]),
			Difficulty:   difficulty,
			Proposer:     types.Account(asString(p["proposer"])),
			Executed:     asBool(p["executed"]),
			CreatedAt:    asUint(p["created_at"]),
			EndsAt:       asUint(p["ends_at"]),
		})
	}
	return proposals
}

// Listings decodes the marketplace listing table. Empty or malformed input
// yields an empty typed slice.
func Listings(raw *ledger.RawObject) []types.MarketplaceListing {
	listings := []types.MarketplaceListing{}
	if raw == nil {
		return listings
	}
	f := moveFields(raw.Content)
	contents := vecMapContents(f, "listings")
	for _, item := range contents {
		l := entryValueFields(item)
		if len(l) == 0 {
			continue
		}
		listings = append(listings, types.MarketplaceListing{
			ID:           asUint(l["id"]),
			Seller:       types.Account(asString(l["seller"])),
			PointsAmount: asUint(l["points_amount"]),
			Price:        asUint(l["sui_price"]),
			Active:       asBool(l["active"]),
		})
	}
	return listings
}

// StakingStats decodes the staking pool summary.
func StakingStats(raw *ledger.RawObject) types.StakingStats {
	if raw == nil {
		return types.StakingStats{}
	}
	f := moveFields(raw.Content)
	return types.StakingStats{
		TotalStaked: asUint(f["total_staked"]),
		Stakers:     asUint(f["stakers"]),
	}
}

// Events merges the two event categories into one feed sorted descending by
// timestamp. Events without a timestamp order as 0 and therefore sort last;
// they are kept, not dropped.
func Events(taskEvents, dailyEvents []ledger.RawEvent) []types.ActivityEvent {
	merged := make([]types.ActivityEvent, 0, len(taskEvents)+len(dailyEvents))

	for _, ev := range taskEvents {
		merged = append(merged, types.ActivityEvent{
			ID:          ev.TxDigest + ":" + ev.EventSeq,
			Kind:        types.ActivityTaskCompleted,
			TaskIndex:   asUint(ev.Parsed["task_index"]),
			NewPoints:   asUint(ev.Parsed["new_points"]),
			NewLevel:    asUint(ev.Parsed["new_level"]),
			TimestampMs: ev.TimestampMs,
		})
	}
	for _, ev := range dailyEvents {
		bonus := asUint(ev.Parsed["bonus_points"])
		merged = append(merged, types.ActivityEvent{
			ID:          ev.TxDigest + ":" + ev.EventSeq,
			Kind:        types.ActivityDailyReward,
			Streak:      asUint(ev.Parsed["streak"]),
			BonusPoints: bonus,
			NewPoints:   bonus,
			TimestampMs: ev.TimestampMs,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TimestampMs > merged[j].TimestampMs
	})
	return merged
}
