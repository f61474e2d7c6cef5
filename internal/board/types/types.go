package types

import (
	"errors"
	"strings"
)

// Account is an on-chain address. Addresses compare case-insensitively.
type Account string

func (a Account) String() string { return string(a) }

func (a Account) Equal(other Account) bool {
	return strings.EqualFold(string(a), string(other))
}

// ErrNoAchievement marks an account that has not minted an achievement yet.
// Distinct from a query failure.
var ErrNoAchievement = errors.New("no achievement minted for account")

// DailyStreak is the nested streak state of an achievement.
type DailyStreak struct {
	Current      uint64 `json:"current"`
	Longest      uint64 `json:"longest"`
	LastClaimDay uint64 `json:"last_claim_day"` // day index since epoch, 0 = never claimed
}

// AchievementRecord is the per-account progress snapshot held by the ledger.
type AchievementRecord struct {
	ID             string      `json:"id"`
	Version        uint64      `json:"version"`
	Points         uint64      `json:"points"`
	Level          uint64      `json:"level"`
	TasksCompleted []bool      `json:"tasks_completed"`
	DailyStreak    DailyStreak `json:"daily_streak"`
}

func (r *AchievementRecord) CompletedCount() int {
	n := 0
	for _, done := range r.TasksCompleted {
		if done {
			n++
		}
	}
	return n
}

// LeaderboardEntry is one row of the global ranking, sorted descending by points.
type LeaderboardEntry struct {
	Account        Account `json:"account"`
	Points         uint64  `json:"points"`
	Level          uint64  `json:"level"`
	TasksCompleted uint64  `json:"tasks_completed"`
}

// ReservationOverlay tracks points committed to in-flight or completed
// side-effects (stake, listing, vote). It is a display hint only: the ledger
// does not deduct these amounts, and this layer never decrements them.
type ReservationOverlay struct {
	Staked uint64 `json:"staked"`
	Listed uint64 `json:"listed"`
	Voted  uint64 `json:"voted"`
}

func (o ReservationOverlay) Total() uint64 {
	return o.Staked + o.Listed + o.Voted
}

// EffectiveState is the derived view of an account's points. Never stored.
type EffectiveState struct {
	TotalPoints     uint64 `json:"total_points"`
	ReservedTotal   uint64 `json:"reserved_total"`
	AvailablePoints uint64 `json:"available_points"`
	Level           uint64 `json:"level"`
}

// DifficultyCategory is the fixed proposal category set used by governance.
type DifficultyCategory uint8

const (
	CategoryBuilder  DifficultyCategory = 1
	CategorySocial   DifficultyCategory = 2
	CategoryExplorer DifficultyCategory = 3
	CategoryCreator  DifficultyCategory = 4
)

func (c DifficultyCategory) String() string {
	switch c {
	case CategoryBuilder:
		return "builder"
	case CategorySocial:
		return "social"
	case CategoryExplorer:
		return "explorer"
	case CategoryCreator:
		return "creator"
	default:
		return "unknown"
	}
}

// ProposalRecord is a governance proposal. Sourced entirely from the ledger.
type ProposalRecord struct {
	ID           uint64             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	VotesFor     uint64             `json:"votes_for"`
	VotesAgainst uint64             `json:"votes_against"`
	RewardPoints uint64             `json:"reward_points"`
	Difficulty   DifficultyCategory `json:"difficulty"`
	Proposer     Account            `json:"proposer"`
	Executed     bool               `json:"executed"`
	CreatedAt    uint64             `json:"created_at"`
	EndsAt       uint64             `json:"ends_at"`
}

// MarketplaceListing is a points-for-sale listing. Sourced entirely from the ledger.
type MarketplaceListing struct {
	ID           uint64  `json:"id"`
	Seller       Account `json:"seller"`
	PointsAmount uint64  `json:"points_amount"`
	Price        uint64  `json:"price"` // base units of the chain currency
	Active       bool    `json:"active"`
}

// StakingStats is the global staking pool summary, used only for display.
type StakingStats struct {
	TotalStaked uint64 `json:"total_staked"`
	Stakers     uint64 `json:"stakers"`
}

// ActivityKind discriminates entries in the merged activity feed.
type ActivityKind string

const (
	ActivityTaskCompleted ActivityKind = "task_completed"
	ActivityDailyReward   ActivityKind = "daily_reward"
)

// ActivityEvent is one normalized entry of the activity feed.
// TimestampMs is 0 when the node omitted the timestamp; such entries sort
// last and render as "unknown time".
type ActivityEvent struct {
	ID          string       `json:"id"` // "<txDigest>:<eventSeq>"
	Kind        ActivityKind `json:"kind"`
	TaskIndex   uint64       `json:"task_index,omitempty"`
	Streak      uint64       `json:"streak,omitempty"`
	BonusPoints uint64       `json:"bonus_points,omitempty"`
	NewPoints   uint64       `json:"new_points"`
	NewLevel    uint64       `json:"new_level,omitempty"`
	TimestampMs int64        `json:"timestamp_ms"`
}

// IntentKind names a mutating ledger operation.
type IntentKind string

const (
	IntentInitAchievement IntentKind = "init_achievement"
	IntentCompleteTask    IntentKind = "complete_task"
	IntentClaimDaily      IntentKind = "claim_daily_reward"
	IntentResetProgress   IntentKind = "reset_progress"
	IntentStake           IntentKind = "stake_points"
	IntentCreateListing   IntentKind = "create_listing"
	IntentVote            IntentKind = "cast_vote"
	IntentCreateProposal  IntentKind = "create_proposal"
)

// QueryKind names a remote read that views depend on.
type QueryKind string

const (
	QueryAchievement  QueryKind = "achievement"
	QueryLeaderboard  QueryKind = "leaderboard"
	QueryActivity     QueryKind = "activity"
	QueryProposals    QueryKind = "proposals"
	QueryListings     QueryKind = "listings"
	QueryStakingStats QueryKind = "staking_stats"
)
