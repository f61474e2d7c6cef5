// Package refresh re-runs the remote queries a finalized mutation
// invalidated. Requests for a query already in flight are coalesced onto
// the in-flight fetch instead of issuing a duplicate call.
package refresh

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/suiboard/suiboard-backend/internal/board/metrics"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// Fetcher re-runs one query and applies the result to whatever view caches it.
type Fetcher func(ctx context.Context) error

// dependentQueries is the static invalidation table: which queries each
// finalized intent makes stale.
var dependentQueries = map[types.IntentKind][]types.QueryKind{
	types.IntentInitAchievement: {types.QueryAchievement, types.QueryActivity, types.QueryLeaderboard},
	types.IntentCompleteTask:    {types.QueryAchievement, types.QueryActivity, types.QueryLeaderboard},
	types.IntentClaimDaily:      {types.QueryAchievement, types.QueryActivity, types.QueryLeaderboard},
	types.IntentResetProgress:   {types.QueryAchievement, types.QueryActivity, types.QueryLeaderboard},
	types.IntentStake:           {types.QueryAchievement, types.QueryStakingStats},
	types.IntentCreateListing:   {types.QueryAchievement, types.QueryListings},
	types.IntentVote:            {types.QueryAchievement, types.QueryProposals},
	types.IntentCreateProposal:  {types.QueryAchievement, types.QueryProposals},
}

// DependentQueries returns the queries invalidated by the given intent kind.
func DependentQueries(kind types.IntentKind) []types.QueryKind {
	return dependentQueries[kind]
}

type Coordinator struct {
	mu       sync.RWMutex
	fetchers map[types.QueryKind]Fetcher
	group    singleflight.Group
	logger   logging.Logger
}

func NewCoordinator(logger logging.Logger) *Coordinator {
	return &Coordinator{
		fetchers: make(map[types.QueryKind]Fetcher),
		logger:   logger,
	}
}

// Register installs the fetcher for a query kind. Later registrations replace
// earlier ones.
func (c *Coordinator) Register(kind types.QueryKind, fetcher Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[kind] = fetcher
}

// Refresh re-runs the given queries concurrently. A query already in flight
// is not fetched again; the caller shares its result. Failures are logged
// and do not abort the other queries; the mutation that triggered the
// refresh already happened on the ledger.
func (c *Coordinator) Refresh(ctx context.Context, kinds ...types.QueryKind) {
	var wg sync.WaitGroup
	for _, kind := range kinds {
		c.mu.RLock()
		fetcher, ok := c.fetchers[kind]
		c.mu.RUnlock()
		if !ok {
			c.logger.Warnf("No fetcher registered for query %s", kind)
			continue
		}

		wg.Add(1)
		go func(kind types.QueryKind, fetcher Fetcher) {
			defer wg.Done()
			_, err, shared := c.group.Do(string(kind), func() (interface{}, error) {
				return nil, fetcher(ctx)
			})
			switch {
			case err != nil:
				metrics.RefreshesTotal.WithLabelValues(string(kind), "error").Inc()
				c.logger.Warnf("Refresh of %s failed: %v", kind, err)
			case shared:
				metrics.RefreshesTotal.WithLabelValues(string(kind), "coalesced").Inc()
			default:
				metrics.RefreshesTotal.WithLabelValues(string(kind), "success").Inc()
			}
		}(kind, fetcher)
	}
	wg.Wait()
}

// OnMutationFinalized refreshes every query the finalized intent invalidated.
func (c *Coordinator) OnMutationFinalized(ctx context.Context, kind types.IntentKind) {
	deps, ok := dependentQueries[kind]
	if !ok {
		c.logger.Warnf("No dependent queries declared for intent %s", kind)
		return
	}
	c.Refresh(ctx, deps...)
}
