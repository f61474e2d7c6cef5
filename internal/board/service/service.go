// Package service composes the ledger client, normalizer, overlay store and
// aggregator into the board views, and owns the cached snapshots the refresh
// coordinator updates.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/suiboard/suiboard-backend/internal/board/aggregate"
	"github.com/suiboard/suiboard-backend/internal/board/config"
	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/normalize"
	"github.com/suiboard/suiboard-backend/internal/board/orchestrator"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/refresh"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// ErrUnavailable marks a read-only view that could not be loaded. Mutating
// operations elsewhere are unaffected.
var ErrUnavailable = errors.New("view temporarily unavailable")

// snapshot is a cached query result. gen orders applications so a response
// from a superseded fetch is discarded, never applied over fresher data.
type snapshot[T any] struct {
	value T
	gen   uint64
	ok    bool
}

func apply[T any](mu *sync.Mutex, snap *snapshot[T], gen uint64, value T) {
	mu.Lock()
	defer mu.Unlock()
	if gen <= snap.gen && snap.ok {
		return // stale result, a newer fetch already landed
	}
	snap.value = value
	snap.gen = gen
	snap.ok = true
}

type Service struct {
	queries ledger.QueryClient
	overlay overlay.Store
	cfg     *config.Config
	logger  logging.Logger
	coord   *refresh.Coordinator

	mu      sync.Mutex
	nextGen uint64

	primaryAccount types.Account

	leaderboard snapshot[[]types.LeaderboardEntry]
	activity    snapshot[[]types.ActivityEvent]
	proposals   snapshot[[]types.ProposalRecord]
	listings    snapshot[[]types.MarketplaceListing]
	staking     snapshot[types.StakingStats]
	achievement snapshot[*types.AchievementRecord]
}

func New(queries ledger.QueryClient, overlayStore overlay.Store, cfg *config.Config, coord *refresh.Coordinator, logger logging.Logger) *Service {
	s := &Service{
		queries: queries,
		overlay: overlayStore,
		cfg:     cfg,
		logger:  logger,
		coord:   coord,
	}
	coord.Register(types.QueryLeaderboard, s.fetchLeaderboard)
	coord.Register(types.QueryActivity, s.fetchActivity)
	coord.Register(types.QueryProposals, s.fetchProposals)
	coord.Register(types.QueryListings, s.fetchListings)
	coord.Register(types.QueryStakingStats, s.fetchStakingStats)
	coord.Register(types.QueryAchievement, s.fetchAchievement)
	return s
}

func (s *Service) issueGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	return s.nextGen
}

// SetPrimaryAccount sets the account whose record the achievement fetcher
// refreshes after mutations.
func (s *Service) SetPrimaryAccount(account types.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primaryAccount = account
}

func (s *Service) eventType(name string) string {
	return fmt.Sprintf("%s::achievement::%s", s.cfg.PackageID, name)
}

func (s *Service) fetchLeaderboard(ctx context.Context) error {
	gen := s.issueGen()
	raw, err := s.queries.GetObject(ctx, s.cfg.Objects.Leaderboard)
	if err != nil {
		return err
	}
	apply(&s.mu, &s.leaderboard, gen, normalize.Leaderboard(raw))
	return nil
}

func (s *Service) fetchActivity(ctx context.Context) error {
	gen := s.issueGen()
	taskEvents, err := s.queries.QueryEvents(ctx, s.eventType("TaskCompletedEvent"), 25)
	if err != nil {
		return err
	}
	dailyEvents, err := s.queries.QueryEvents(ctx, s.eventType("DailyRewardClaimedEvent"), 25)
	if err != nil {
		return err
	}
	apply(&s.mu, &s.activity, gen, normalize.Events(taskEvents, dailyEvents))
	return nil
}

func (s *Service) fetchProposals(ctx context.Context) error {
	gen := s.issueGen()
	raw, err := s.queries.GetObject(ctx, s.cfg.Objects.GovernanceHub)
	if err != nil {
		return err
	}
	apply(&s.mu, &s.proposals, gen, normalize.Proposals(raw))
	return nil
}

func (s *Service) fetchListings(ctx context.Context) error {
	gen := s.issueGen()
	raw, err := s.queries.GetObject(ctx, s.cfg.Objects.Marketplace)
	if err != nil {
		return err
	}
	apply(&s.mu, &s.listings, gen, normalize.Listings(raw))
	return nil
}

func (s *Service) fetchStakingStats(ctx context.Context) error {
	gen := s.issueGen()
	raw, err := s.queries.GetObject(ctx, s.cfg.Objects.StakingPool)
	if err != nil {
		return err
	}
	apply(&s.mu, &s.staking, gen, normalize.StakingStats(raw))
	return nil
}

func (s *Service) fetchAchievement(ctx context.Context) error {
	s.mu.Lock()
	account := s.primaryAccount
	s.mu.Unlock()
	if account == "" {
		return nil // nothing to refresh without a connected account
	}
	gen := s.issueGen()
	rec, err := s.loadAchievement(ctx, account)
	if err != nil {
		return err
	}
	apply(&s.mu, &s.achievement, gen, rec)
	return nil
}

// loadAchievement fetches and normalizes the account's record. A missing
// record is not an error here; it returns (nil, nil).
func (s *Service) loadAchievement(ctx context.Context, account types.Account) (*types.AchievementRecord, error) {
	raws, err := s.queries.GetOwnedObjects(ctx, account.String(), s.cfg.AchievementType)
	if err != nil {
		return nil, err
	}
	rec, err := normalize.Achievement(raws)
	if errors.Is(err, types.ErrNoAchievement) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Leaderboard returns the cached ranking, fetching it on first use.
func (s *Service) Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error) {
	s.mu.Lock()
	ok := s.leaderboard.ok
	s.mu.Unlock()
	if !ok {
		s.coord.Refresh(ctx, types.QueryLeaderboard)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.leaderboard.ok {
		return nil, fmt.Errorf("%w: leaderboard", ErrUnavailable)
	}
	return s.leaderboard.value, nil
}

// Activity returns the cached merged event feed, fetching it on first use.
func (s *Service) Activity(ctx context.Context) ([]types.ActivityEvent, error) {
	s.mu.Lock()
	ok := s.activity.ok
	s.mu.Unlock()
	if !ok {
		s.coord.Refresh(ctx, types.QueryActivity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activity.ok {
		return nil, fmt.Errorf("%w: activity", ErrUnavailable)
	}
	return s.activity.value, nil
}

// Proposals returns the cached governance proposals, fetching on first use.
func (s *Service) Proposals(ctx context.Context) ([]types.ProposalRecord, error) {
	s.mu.Lock()
	ok := s.proposals.ok
	s.mu.Unlock()
	if !ok {
		s.coord.Refresh(ctx, types.QueryProposals)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.proposals.ok {
		return nil, fmt.Errorf("%w: proposals", ErrUnavailable)
	}
	return s.proposals.value, nil
}

// Listings returns the cached marketplace listings, fetching on first use.
func (s *Service) Listings(ctx context.Context) ([]types.MarketplaceListing, error) {
	s.mu.Lock()
	ok := s.listings.ok
	s.mu.Unlock()
	if !ok {
		s.coord.Refresh(ctx, types.QueryListings)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listings.ok {
		return nil, fmt.Errorf("%w: listings", ErrUnavailable)
	}
	return s.listings.value, nil
}

// StakingStats returns the cached pool summary, fetching on first use.
func (s *Service) StakingStats(ctx context.Context) (types.StakingStats, error) {
	s.mu.Lock()
	ok := s.staking.ok
	s.mu.Unlock()
	if !ok {
		s.coord.Refresh(ctx, types.QueryStakingStats)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.staking.ok {
		return types.StakingStats{}, fmt.Errorf("%w: staking stats", ErrUnavailable)
	}
	return s.staking.value, nil
}

// TaskStatus pairs a task definition with its completion state.
type TaskStatus struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// BoardView is the full read-only view of one account's board.
type BoardView struct {
	Account       types.Account            `json:"account"`
	Achievement   *types.AchievementRecord `json:"achievement"` // nil = not minted
	Effective     types.EffectiveState     `json:"effective"`
	Rank          int                      `json:"rank"` // 0 = unranked
	CanClaimToday bool                     `json:"can_claim_today"`
	DailyBonus    uint64                   `json:"daily_bonus"`
	Tasks         []TaskStatus             `json:"tasks"`
}

// BoardView assembles the board for any address. The address is purely a
// view selector; no signer is involved.
func (s *Service) BoardView(ctx context.Context, account types.Account) (*BoardView, error) {
	rec, err := s.loadAchievement(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: achievement: %v", ErrUnavailable, err)
	}

	// Best effort: a missing leaderboard degrades the rank display, it
	// does not block the board.
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		s.logger.Warnf("Leaderboard unavailable for board view: %v", err)
		entries = nil
	}

	ov := s.overlay.Get(ctx, account)
	lbEntry := aggregate.FindEntry(entries, account)

	view := &BoardView{
		Account:     account,
		Achievement: rec,
		Effective:   aggregate.Effective(rec, lbEntry, ov),
		Rank:        aggregate.Rank(entries, account),
	}
	if rec != nil {
		view.CanClaimToday = aggregate.CanClaimToday(rec.DailyStreak.LastClaimDay, time.Now())
		view.DailyBonus = aggregate.DailyBonus(rec.DailyStreak.Current)
	}
	for i, def := range s.cfg.Tasks {
		done := false
		if rec != nil && i < len(rec.TasksCompleted) {
			done = rec.TasksCompleted[i]
		}
		view.Tasks = append(view.Tasks, TaskStatus{
			Index:       i,
			Title:       def.Title,
			Description: def.Description,
			Done:        done,
		})
	}
	return view, nil
}

// Session builds the orchestration snapshot for the connected account
// viewing the given board.
func (s *Service) Session(ctx context.Context, connected, viewed types.Account) (*orchestrator.Session, error) {
	if viewed == "" {
		viewed = connected
	}
	rec, err := s.loadAchievement(ctx, viewed)
	if err != nil {
		return nil, fmt.Errorf("%w: achievement: %v", ErrUnavailable, err)
	}

	entries, err := s.Leaderboard(ctx)
	if err != nil {
		s.logger.Warnf("Leaderboard unavailable for session: %v", err)
		entries = nil
	}

	ov := s.overlay.Get(ctx, connected)
	return &orchestrator.Session{
		Connected:   connected,
		Viewed:      viewed,
		Achievement: rec,
		Effective:   aggregate.Effective(rec, aggregate.FindEntry(entries, viewed), ov),
		Now:         time.Now(),
	}, nil
}
