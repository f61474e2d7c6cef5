package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/types"
)

func achievementContent(points, level string, tasks []interface{}, streak map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"points":          points,
		"level":           level,
		"tasks_completed": tasks,
	}
	if streak != nil {
		fields["daily_streak"] = map[string]interface{}{"fields": streak}
	}
	return map[string]interface{}{"fields": fields}
}

func TestAchievementSelectsHighestVersion(t *testing.T) {
	raws := []ledger.RawObject{
		{
			ObjectID: "0xold",
			Version:  3,
			Content:  achievementContent("10", "1", []interface{}{true}, nil),
		},
		{
			ObjectID: "0xnew",
			Version:  7,
			Content:  achievementContent("50", "2", []interface{}{true, false, true}, nil),
		},
	}

	rec, err := Achievement(raws)
	require.NoError(t, err)
	assert.Equal(t, "0xnew", rec.ID)
	assert.Equal(t, uint64(7), rec.Version)
	assert.Equal(t, uint64(50), rec.Points)
	assert.Equal(t, uint64(2), rec.Level)
	assert.Equal(t, []bool{true, false, true}, rec.TasksCompleted)
}

func TestAchievementEmptyCandidates(t *testing.T) {
	rec, err := Achievement(nil)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, types.ErrNoAchievement)

	rec, err = Achievement([]ledger.RawObject{})
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, types.ErrNoAchievement)
}

func TestAchievementMissingFieldsDefaultToZero(t *testing.T) {
	raws := []ledger.RawObject{
		{ObjectID: "0xbare", Version: 1, Content: map[string]interface{}{"fields": map[string]interface{}{}}},
	}

	rec, err := Achievement(raws)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rec.Points)
	assert.Equal(t, uint64(0), rec.Level)
	assert.Empty(t, rec.TasksCompleted)
	assert.Equal(t, types.DailyStreak{}, rec.DailyStreak)
}

func TestAchievementDecodesStreak(t *testing.T) {
	raws := []ledger.RawObject{
		{
			ObjectID: "0xa",
			Version:  2,
			Content: achievementContent("30", "1", []interface{}{}, map[string]interface{}{
				"current_streak": "4",
				"longest_streak": "9",
				"last_claim_day": "20300",
			}),
		},
	}

	rec, err := Achievement(raws)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), rec.DailyStreak.Current)
	assert.Equal(t, uint64(9), rec.DailyStreak.Longest)
	assert.Equal(t, uint64(20300), rec.DailyStreak.LastClaimDay)
}

func leaderboardContent(entries ...map[string]interface{}) map[string]interface{} {
	items := make([]interface{}, len(entries))
	for i, e := range entries {
		items[i] = map[string]interface{}{"fields": e}
	}
	return map[string]interface{}{
		"fields": map[string]interface{}{
			"top_players": map[string]interface{}{
				"fields": map[string]interface{}{"contents": items},
			},
		},
	}
}

func TestLeaderboardSortedDescending(t *testing.T) {
	raw := &ledger.RawObject{
		ObjectID: "0xlb",
		Content: leaderboardContent(
			map[string]interface{}{
				"key":   "0xlow",
				"value": map[string]interface{}{"fields": map[string]interface{}{"points": "10", "level": "1"}},
			},
			map[string]interface{}{
				"key":   "0xhigh",
				"value": map[string]interface{}{"fields": map[string]interface{}{"points": "90", "level": "3", "tasks_completed": "5"}},
			},
		),
	}

	entries := Leaderboard(raw)
	require.Len(t, entries, 2)
	assert.Equal(t, types.Account("0xhigh"), entries[0].Account)
	assert.Equal(t, uint64(90), entries[0].Points)
	assert.Equal(t, uint64(3), entries[0].Level)
	assert.Equal(t, uint64(5), entries[0].TasksCompleted)
	assert.Equal(t, types.Account("0xlow"), entries[1].Account)
}

func TestLeaderboardBareNumberValue(t *testing.T) {
	raw := &ledger.RawObject{
		ObjectID: "0xlb",
		Content: leaderboardContent(
			map[string]interface{}{"key": "0xa", "value": "42"},
		),
	}

	entries := Leaderboard(raw)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(42), entries[0].Points)
}

func TestLeaderboardMalformed(t *testing.T) {
	assert.Empty(t, Leaderboard(nil))
	assert.Empty(t, Leaderboard(&ledger.RawObject{Content: map[string]interface{}{"fields": "junk"}}))
}

func TestProposalsEmptyAndMalformed(t *testing.T) {
	assert.Empty(t, Proposals(nil))
	assert.Empty(t, Proposals(&ledger.RawObject{Content: map[string]interface{}{}}))
}

func TestProposalsDecoded(t *testing.T) {
	raw := &ledger.RawObject{
		Content: map[string]interface{}{
			"fields": map[string]interface{}{
				"proposals": map[string]interface{}{
					"fields": map[string]interface{}{
						"contents": []interface{}{
							map[string]interface{}{
								"fields": map[string]interface{}{
									"value": map[string]interface{}{
										"fields": map[string]interface{}{
											"id":            "1",
											"title":         "More tasks",
											"description":   "Add a fourth task",
											"votes_for":     "12",
											"votes_against": "3",
											"reward_points": "10",
											"difficulty":    "2",
											"proposer":      "0xp",
											"executed":      false,
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	proposals := Proposals(raw)
	require.Len(t, proposals, 1)
	assert.Equal(t, uint64(1), proposals[0].ID)
	assert.Equal(t, "More tasks", proposals[0].Title)
	assert.Equal(t, uint64(12), proposals[0].VotesFor)
	assert.Equal(t, types.CategorySocial, proposals[0].Difficulty)
	assert.False(t, proposals[0].Executed)
}

func TestListingsDecoded(t *testing.T) {
	raw := &ledger.RawObject{
		Content: map[string]interface{}{
			"fields": map[string]interface{}{
				"listings": map[string]interface{}{
					"fields": map[string]interface{}{
						"contents": []interface{}{
							map[string]interface{}{
								"fields": map[string]interface{}{
									"value": map[string]interface{}{
										"fields": map[string]interface{}{
											"id":            "7",
											"seller":        "0xs",
											"points_amount": "25",
											"sui_price":     "1000000000",
											"active":        true,
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	listings := Listings(raw)
	require.Len(t, listings, 1)
	assert.Equal(t, uint64(7), listings[0].ID)
	assert.Equal(t, types.Account("0xs"), listings[0].Seller)
	assert.Equal(t, uint64(25), listings[0].PointsAmount)
	assert.Equal(t, uint64(1000000000), listings[0].Price)
	assert.True(t, listings[0].Active)
}

func TestStakingStatsDecoded(t *testing.T) {
	raw := &ledger.RawObject{
		Content: map[string]interface{}{
			"fields": map[string]interface{}{
				"total_staked": "500",
				"stakers":      "12",
			},
		},
	}

	stats := StakingStats(raw)
	assert.Equal(t, uint64(500), stats.TotalStaked)
	assert.Equal(t, uint64(12), stats.Stakers)

	assert.Equal(t, types.StakingStats{}, StakingStats(nil))
}

func TestEventsMergedAndSorted(t *testing.T) {
	taskEvents := []ledger.RawEvent{
		{
			TxDigest:    "0xt1",
			EventSeq:    "0",
			TimestampMs: 200,
			Parsed:      map[string]interface{}{"task_index": "1", "new_points": "20", "new_level": "1"},
		},
		{
			TxDigest: "0xt2",
			EventSeq: "0",
			// node omitted the timestamp; keeps the event, sorts last
			Parsed: map[string]interface{}{"task_index": "2", "new_points": "30"},
		},
	}
	dailyEvents := []ledger.RawEvent{
		{
			TxDigest:    "0xd1",
			EventSeq:    "1",
			TimestampMs: 300,
			Parsed:      map[string]interface{}{"streak": "3", "bonus_points": "11"},
		},
	}

	events := Events(taskEvents, dailyEvents)
	require.Len(t, events, 3)

	assert.Equal(t, "0xd1:1", events[0].ID)
	assert.Equal(t, types.ActivityDailyReward, events[0].Kind)
	assert.Equal(t, uint64(3), events[0].Streak)
	assert.Equal(t, uint64(11), events[0].BonusPoints)
	assert.Equal(t, uint64(11), events[0].NewPoints)

	assert.Equal(t, "0xt1:0", events[1].ID)
	assert.Equal(t, types.ActivityTaskCompleted, events[1].Kind)
	assert.Equal(t, uint64(1), events[1].TaskIndex)

	assert.Equal(t, "0xt2:0", events[2].ID)
	assert.Equal(t, int64(0), events[2].TimestampMs)
}

func TestEventsEmpty(t *testing.T) {
	assert.Empty(t, Events(nil, nil))
}
