package orchestrator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/suiboard/suiboard-backend/internal/board/aggregate"
	"github.com/suiboard/suiboard-backend/internal/board/config"
	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/types"
)

// Session is the client-side view an intent is validated against. All
// precondition checks run on this snapshot before any remote call.
type Session struct {
	Connected   types.Account            // signer account, empty when no wallet
	Viewed      types.Account            // account whose board is open
	Achievement *types.AchievementRecord // nil when not minted
	Effective   types.EffectiveState
	Now         time.Time
}

// ReserveEffect is the overlay update applied when the intent finalizes.
type ReserveEffect struct {
	Field  overlay.Field
	Amount uint64
}

// Intent is one fully-validated mutating operation, ready for the signer.
type Intent struct {
	Kind    types.IntentKind
	Account types.Account
	Call    *ledger.CallSpec
	Reserve *ReserveEffect
}

// Builder materializes intents against the deployed contract suite.
type Builder struct {
	PackageID string
	Objects   config.SharedObjects
	ChainID   string
}

func NewBuilder(packageID string, objects config.SharedObjects, chainID string) *Builder {
	return &Builder{PackageID: packageID, Objects: objects, ChainID: chainID}
}

func (b *Builder) target(module, function string) string {
	return fmt.Sprintf("%s::%s::%s", b.PackageID, module, function)
}

func (b *Builder) call(module, function string, args ...ledger.Arg) *ledger.CallSpec {
	return &ledger.CallSpec{
		Target:  b.target(module, function),
		Args:    args,
		ChainID: b.ChainID,
	}
}

// checkOwner enforces the view/write separation: any board can be viewed by
// address, but only the connected account matching it may mutate.
func checkOwner(sess *Session) error {
	if sess.Connected == "" {
		return precondition("connect a wallet first")
	}
	if sess.Viewed != "" && !sess.Connected.Equal(sess.Viewed) {
		return precondition("this board belongs to another account; you are in read-only mode")
	}
	return nil
}

func requireRecord(sess *Session) error {
	if sess.Achievement == nil {
		return precondition("mint your achievement first")
	}
	return nil
}

// ParseAmount validates free-form numeric user input.
func ParseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, precondition("amount must be a whole number")
	}
	return v, nil
}

// InitAchievement mints the caller's achievement record.
func (b *Builder) InitAchievement(sess *Session) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	return &Intent{
		Kind:    types.IntentInitAchievement,
		Account: sess.Connected,
		Call:    b.call("achievement", "init_user_achievement", ledger.ObjectArg(b.Objects.Leaderboard)),
	}, nil
}

// CompleteTask marks task index done. taskCount is the size of the fixed
// task definition list.
func (b *Builder) CompleteTask(sess *Session, index uint64, taskCount int) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	if index >= uint64(taskCount) {
		return nil, precondition("unknown task %d, there are %d tasks", index, taskCount)
	}
	if int(index) < len(sess.Achievement.TasksCompleted) && sess.Achievement.TasksCompleted[index] {
		return nil, precondition("task %d is already completed", index)
	}
	return &Intent{
		Kind:    types.IntentCompleteTask,
		Account: sess.Connected,
		Call: b.call("achievement", "complete_task",
			ledger.ObjectArg(sess.Achievement.ID),
			ledger.ObjectArg(b.Objects.Leaderboard),
			ledger.U64Arg(index),
			ledger.ObjectArg(b.Objects.Clock),
		),
	}, nil
}

// ClaimDaily claims the daily streak reward. Eligibility is checked
// client-side from lastClaimDay against the current day index.
func (b *Builder) ClaimDaily(sess *Session) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	if !aggregate.CanClaimToday(sess.Achievement.DailyStreak.LastClaimDay, sess.Now) {
		return nil, precondition("daily reward already claimed today, come back tomorrow")
	}
	return &Intent{
		Kind:    types.IntentClaimDaily,
		Account: sess.Connected,
		Call: b.call("achievement", "claim_daily_reward",
			ledger.ObjectArg(sess.Achievement.ID),
			ledger.ObjectArg(b.Objects.Leaderboard),
			ledger.ObjectArg(b.Objects.Clock),
		),
	}, nil
}

// ResetProgress wipes the caller's progress.
func (b *Builder) ResetProgress(sess *Session) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	return &Intent{
		Kind:    types.IntentResetProgress,
		Account: sess.Connected,
		Call:    b.call("achievement", "reset_progress", ledger.ObjectArg(sess.Achievement.ID)),
	}, nil
}

// Stake locks amount points in the staking pool. On finality the amount is
// reserved in the overlay.
func (b *Builder) Stake(sess *Session, amount uint64) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	if amount < config.MinActionAmount {
		return nil, precondition("minimum stake is %d points", config.MinActionAmount)
	}
	if amount > sess.Effective.AvailablePoints {
		return nil, precondition("insufficient available points: have %d, need %d",
			sess.Effective.AvailablePoints, amount)
	}
	return &Intent{
		Kind:    types.IntentStake,
		Account: sess.Connected,
		Call: b.call("staking", "stake_points",
			ledger.ObjectArg(b.Objects.StakingPool),
			ledger.U64Arg(amount),
			ledger.ObjectArg(b.Objects.Clock),
		),
		Reserve: &ReserveEffect{Field: overlay.FieldStaked, Amount: amount},
	}, nil
}

// CreateListing offers amount points for sale at price base units.
func (b *Builder) CreateListing(sess *Session, amount, price uint64) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	if amount < config.MinActionAmount {
		return nil, precondition("minimum listing is %d points", config.MinActionAmount)
	}
	if amount > sess.Effective.AvailablePoints {
		return nil, precondition("insufficient available points: have %d, need %d",
			sess.Effective.AvailablePoints, amount)
	}
	if price == 0 {
		return nil, precondition("price must be positive")
	}
	return &Intent{
		Kind:    types.IntentCreateListing,
		Account: sess.Connected,
		Call: b.call("marketplace", "create_listing",
			ledger.ObjectArg(b.Objects.Marketplace),
			ledger.U64Arg(amount),
			ledger.U64Arg(price),
			ledger.ObjectArg(b.Objects.Clock),
		),
		Reserve: &ReserveEffect{Field: overlay.FieldListed, Amount: amount},
	}, nil
}

// Vote casts a vote on a proposal. Voting power is capped and the used
// power is reserved in the overlay on finality.
func (b *Builder) Vote(sess *Session, proposalID uint64, inFavor bool) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	if sess.Effective.AvailablePoints < config.MinActionAmount {
		return nil, precondition("voting needs at least %d available points, have %d",
			config.MinActionAmount, sess.Effective.AvailablePoints)
	}
	power := sess.Effective.AvailablePoints
	if power > config.MaxVotingPower {
		power = config.MaxVotingPower
	}
	return &Intent{
		Kind:    types.IntentVote,
		Account: sess.Connected,
		Call: b.call("governance", "vote_on_proposal",
			ledger.ObjectArg(b.Objects.GovernanceHub),
			ledger.U64Arg(proposalID),
			ledger.BoolArg(inFavor),
			ledger.U64Arg(power),
			ledger.ObjectArg(b.Objects.Clock),
		),
		Reserve: &ReserveEffect{Field: overlay.FieldVoted, Amount: power},
	}, nil
}

// CreateProposal submits a new governance proposal.
func (b *Builder) CreateProposal(sess *Session, title, description string, category types.DifficultyCategory, rewardPoints uint64) (*Intent, error) {
	if err := checkOwner(sess); err != nil {
		return nil, err
	}
	if err := requireRecord(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return nil, precondition("title and description are required")
	}
	if category < types.CategoryBuilder || category > types.CategoryCreator {
		return nil, precondition("unknown proposal category %d", category)
	}
	if rewardPoints < config.MinActionAmount {
		return nil, precondition("minimum reward is %d points", config.MinActionAmount)
	}
	if sess.Effective.AvailablePoints < config.MinActionAmount {
		return nil, precondition("creating a proposal needs at least %d available points, have %d",
			config.MinActionAmount, sess.Effective.AvailablePoints)
	}
	return &Intent{
		Kind:    types.IntentCreateProposal,
		Account: sess.Connected,
		Call: b.call("governance", "create_proposal",
			ledger.ObjectArg(b.Objects.GovernanceHub),
			ledger.StringArg(title),
			ledger.StringArg(description),
			ledger.U8Arg(uint8(category)),
			ledger.U64Arg(rewardPoints),
			ledger.ObjectArg(b.Objects.Clock),
		),
	}, nil
}
