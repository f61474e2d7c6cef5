package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suiboard/suiboard-backend/internal/board/config"
	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/refresh"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

type fakeQueries struct {
	objects map[string]*ledger.RawObject
	owned   map[string][]ledger.RawObject
	events  map[string][]ledger.RawEvent
	err     error
}

func (f *fakeQueries) GetObject(ctx context.Context, id string) (*ledger.RawObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.objects[id], nil
}

func (f *fakeQueries) GetOwnedObjects(ctx context.Context, owner, structType string) ([]ledger.RawObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.owned[owner], nil
}

func (f *fakeQueries) QueryEvents(ctx context.Context, eventType string, limit int) ([]ledger.RawEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[eventType], nil
}

func testConfig() *config.Config {
	return &config.Config{
		PackageID:       "0xpkg",
		AchievementType: "0xpkg::achievement::AchievementNFT",
		Objects: config.SharedObjects{
			Leaderboard:   "0xlb",
			GovernanceHub: "0xgov",
			StakingPool:   "0xpool",
			Marketplace:   "0xmkt",
			Clock:         "0x6",
		},
		Tasks: []config.TaskDefinition{
			{Title: "First"},
			{Title: "Second"},
			{Title: "Third"},
		},
	}
}

func achievementRaw(points string, tasks []interface{}) ledger.RawObject {
	return ledger.RawObject{
		ObjectID: "0xach",
		Version:  5,
		Content: map[string]interface{}{
			"fields": map[string]interface{}{
				"points":          points,
				"level":           "2",
				"tasks_completed": tasks,
			},
		},
	}
}

func leaderboardRaw(account, points string) *ledger.RawObject {
	return &ledger.RawObject{
		ObjectID: "0xlb",
		Content: map[string]interface{}{
			"fields": map[string]interface{}{
				"top_players": map[string]interface{}{
					"fields": map[string]interface{}{
						"contents": []interface{}{
							map[string]interface{}{
								"fields": map[string]interface{}{
									"key": account,
									"value": map[string]interface{}{
										"fields": map[string]interface{}{"points": points, "level": "3"},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func newTestService(t *testing.T, queries *fakeQueries) *Service {
	t.Helper()
	logger := logging.NewNoopLogger()
	store := overlay.NewFileStore(filepath.Join(t.TempDir(), "reserved.json"), logger)
	coord := refresh.NewCoordinator(logger)
	return New(queries, store, testConfig(), coord, logger)
}

func TestBoardViewAssemblesEffectiveState(t *testing.T) {
	queries := &fakeQueries{
		objects: map[string]*ledger.RawObject{"0xlb": leaderboardRaw("0xme", "60")},
		owned:   map[string][]ledger.RawObject{"0xme": {achievementRaw("50", []interface{}{true, false, false})}},
	}
	svc := newTestService(t, queries)
	ctx := context.Background()

	svc.overlay.Add(ctx, "0xme", overlay.FieldStaked, 20)

	view, err := svc.BoardView(ctx, "0xme")
	require.NoError(t, err)
	require.NotNil(t, view.Achievement)

	// leaderboard points win over the older achievement snapshot
	assert.Equal(t, uint64(60), view.Effective.TotalPoints)
	assert.Equal(t, uint64(20), view.Effective.ReservedTotal)
	assert.Equal(t, uint64(40), view.Effective.AvailablePoints)
	assert.Equal(t, uint64(3), view.Effective.Level)
	assert.Equal(t, 1, view.Rank)
	assert.True(t, view.CanClaimToday)

	require.Len(t, view.Tasks, 3)
	assert.True(t, view.Tasks[0].Done)
	assert.False(t, view.Tasks[1].Done)
	assert.Equal(t, "Second", view.Tasks[1].Title)
}

func TestBoardViewNoAchievement(t *testing.T) {
	queries := &fakeQueries{
		objects: map[string]*ledger.RawObject{"0xlb": leaderboardRaw("0xother", "10")},
	}
	svc := newTestService(t, queries)

	view, err := svc.BoardView(context.Background(), "0xme")
	require.NoError(t, err)
	assert.Nil(t, view.Achievement)
	assert.Equal(t, uint64(0), view.Effective.TotalPoints)
	assert.Equal(t, 0, view.Rank)
	assert.False(t, view.CanClaimToday)
}

func TestBoardViewDegradesWithoutLeaderboard(t *testing.T) {
	queries := &fakeQueries{
		owned: map[string][]ledger.RawObject{"0xme": {achievementRaw("50", []interface{}{})}},
	}
	svc := newTestService(t, queries)

	// first the leaderboard fetcher fails, so the rank is missing but the
	// board still renders from the achievement record
	queries.err = errors.New("node down")
	view, err := svc.BoardView(context.Background(), "0xme")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, view)

	queries.err = nil
	view, err = svc.BoardView(context.Background(), "0xme")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), view.Effective.TotalPoints)
	assert.Equal(t, 0, view.Rank)
}

func TestLeaderboardUnavailable(t *testing.T) {
	queries := &fakeQueries{err: errors.New("node down")}
	svc := newTestService(t, queries)

	_, err := svc.Leaderboard(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLeaderboardCachedAfterFirstFetch(t *testing.T) {
	queries := &fakeQueries{
		objects: map[string]*ledger.RawObject{"0xlb": leaderboardRaw("0xme", "60")},
	}
	svc := newTestService(t, queries)
	ctx := context.Background()

	entries, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// a later node failure serves the cached snapshot
	queries.err = errors.New("node down")
	entries, err = svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStaleFetchResultDiscarded(t *testing.T) {
	var mu sync.Mutex
	snap := snapshot[int]{}

	apply(&mu, &snap, 2, 20)
	apply(&mu, &snap, 1, 10) // superseded fetch lands late

	assert.Equal(t, 20, snap.value)
	assert.Equal(t, uint64(2), snap.gen)
}

func TestSessionUsesConnectedOverlay(t *testing.T) {
	queries := &fakeQueries{
		objects: map[string]*ledger.RawObject{"0xlb": leaderboardRaw("0xme", "60")},
		owned:   map[string][]ledger.RawObject{"0xme": {achievementRaw("50", []interface{}{})}},
	}
	svc := newTestService(t, queries)
	ctx := context.Background()

	svc.overlay.Add(ctx, "0xme", overlay.FieldVoted, 10)

	sess, err := svc.Session(ctx, "0xme", "")
	require.NoError(t, err)
	assert.Equal(t, types.Account("0xme"), sess.Connected)
	assert.Equal(t, types.Account("0xme"), sess.Viewed)
	require.NotNil(t, sess.Achievement)
	assert.Equal(t, uint64(60), sess.Effective.TotalPoints)
	assert.Equal(t, uint64(50), sess.Effective.AvailablePoints)
}
