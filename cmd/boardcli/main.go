package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/suiboard/suiboard-backend/internal/board/config"
	"github.com/suiboard/suiboard-backend/internal/board/ledger"
	"github.com/suiboard/suiboard-backend/internal/board/orchestrator"
	"github.com/suiboard/suiboard-backend/internal/board/overlay"
	"github.com/suiboard/suiboard-backend/internal/board/refresh"
	"github.com/suiboard/suiboard-backend/internal/board/service"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// app bundles everything a command needs once the environment is loaded.
type app struct {
	cfg     *config.Config
	svc     *service.Service
	builder *orchestrator.Builder
	orch    *orchestrator.Orchestrator
	account types.Account
	logger  logging.Logger
}

func main() {
	cliApp := &cli.App{
		Name:  "boardcli",
		Usage: "interact with the achievement board from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "account",
				Usage:   "account address to act as",
				EnvVars: []string{"BOARD_ACCOUNT"},
			},
			&cli.StringFlag{
				Name:  "view",
				Usage: "view another account's board (read-only)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "show the board for the account",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, a *app) error {
						return a.status(ctx, c.String("view"))
					})
				},
			},
			{
				Name:  "init",
				Usage: "mint the achievement record",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					return a.builder.InitAchievement(sess)
				}),
			},
			{
				Name:      "task",
				Usage:     "complete a task by index",
				ArgsUsage: "<index>",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					index, err := orchestrator.ParseAmount(c.Args().First())
					if err != nil {
						return nil, err
					}
					return a.builder.CompleteTask(sess, index, len(a.cfg.Tasks))
				}),
			},
			{
				Name:  "claim",
				Usage: "claim the daily streak reward",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					return a.builder.ClaimDaily(sess)
				}),
			},
			{
				Name:  "reset",
				Usage: "reset all progress",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					return a.builder.ResetProgress(sess)
				}),
			},
			{
				Name:      "stake",
				Usage:     "stake points in the pool",
				ArgsUsage: "<amount>",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					amount, err := orchestrator.ParseAmount(c.Args().First())
					if err != nil {
						return nil, err
					}
					return a.builder.Stake(sess, amount)
				}),
			},
			{
				Name:      "sell",
				Usage:     "list points for sale",
				ArgsUsage: "<amount> <price>",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					amount, err := orchestrator.ParseAmount(c.Args().Get(0))
					if err != nil {
						return nil, err
					}
					price, err := orchestrator.ParseAmount(c.Args().Get(1))
					if err != nil {
						return nil, err
					}
					return a.builder.CreateListing(sess, amount, price)
				}),
			},
			{
				Name:      "vote",
				Usage:     "vote on a proposal",
				ArgsUsage: "<proposal-id> <for|against>",
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					id, err := orchestrator.ParseAmount(c.Args().Get(0))
					if err != nil {
						return nil, err
					}
					var inFavor bool
					switch strings.ToLower(c.Args().Get(1)) {
					case "for", "yes":
						inFavor = true
					case "against", "no":
						inFavor = false
					default:
						return nil, fmt.Errorf("vote must be 'for' or 'against'")
					}
					return a.builder.Vote(sess, id, inFavor)
				}),
			},
			{
				Name:      "propose",
				Usage:     "create a governance proposal",
				ArgsUsage: "<title> <description>",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "category", Value: 1, Usage: "1=Builder 2=Social 3=Explorer 4=Creator"},
					&cli.Uint64Flag{Name: "reward", Value: 10, Usage: "reward points for the winner"},
				},
				Action: mutate(func(ctx context.Context, a *app, c *cli.Context, sess *orchestrator.Session) (*orchestrator.Intent, error) {
					return a.builder.CreateProposal(sess,
						c.Args().Get(0),
						c.Args().Get(1),
						types.DifficultyCategory(c.Uint("category")),
						c.Uint64("reward"),
					)
				}),
			},
			{
				Name:  "leaderboard",
				Usage: "show the top players",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, a *app) error {
						return a.leaderboard(ctx)
					})
				},
			},
			{
				Name:  "activity",
				Usage: "show recent board activity",
				Action: func(c *cli.Context) error {
					return withApp(c, func(ctx context.Context, a *app) error {
						return a.activity(ctx)
					})
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func withApp(c *cli.Context, fn func(context.Context, *app) error) error {
	cfg, err := config.Init()
	if err != nil {
		return err
	}

	logLevel := logging.Production
	if cfg.DevMode {
		logLevel = logging.Development
	}
	if err := logging.InitServiceLogger(logging.LoggerConfig{
		ProcessName: logging.CLIProcess,
		Environment: logLevel,
	}); err != nil {
		return err
	}
	defer logging.Shutdown()
	logger := logging.GetServiceLogger()

	queries, err := ledger.NewClient(cfg.RPCURL, cfg.FinalityWait, logger)
	if err != nil {
		return err
	}

	var overlayStore overlay.Store
	if cfg.RedisURL != "" {
		if store, rerr := overlay.NewRedisStore(cfg.RedisURL, logger); rerr == nil {
			overlayStore = store
		} else {
			logger.Warnf("Redis unavailable, using file overlay store: %v", rerr)
		}
	}
	if overlayStore == nil {
		overlayStore = overlay.NewFileStore(cfg.OverlayFile, logger)
	}

	coord := refresh.NewCoordinator(logger)
	svc := service.New(queries, overlayStore, cfg, coord, logger)

	account := types.Account(c.String("account"))
	if account != "" {
		svc.SetPrimaryAccount(account)
	}

	signer := ledger.NewWalletBridgeSigner(cfg.WalletBridgeURL, logger)
	a := &app{
		cfg:     cfg,
		svc:     svc,
		builder: orchestrator.NewBuilder(cfg.PackageID, cfg.Objects, cfg.ChainID),
		orch:    orchestrator.New(signer, queries, overlayStore, coord, logger),
		account: account,
		logger:  logger,
	}
	return fn(c.Context, a)
}

// mutate wraps the session-build / intent-build / execute sequence shared by
// every mutating command.
func mutate(build func(context.Context, *app, *cli.Context, *orchestrator.Session) (*orchestrator.Intent, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		return withApp(c, func(ctx context.Context, a *app) error {
			sess, err := a.svc.Session(ctx, a.account, types.Account(c.String("view")))
			if err != nil {
				return err
			}
			intent, err := build(ctx, a, c, sess)
			if err != nil {
				return err
			}
			result, err := a.orch.Execute(ctx, intent)
			return printOutcome(result, err)
		})
	}
}

func printOutcome(result *orchestrator.Result, err error) error {
	if err == nil {
		fmt.Printf("Finalized: %s\n", result.Digest)
		return nil
	}
	if errors.Is(err, orchestrator.ErrFinalityUncertain) {
		fmt.Printf("Submitted as %s, but confirmation timed out. Check the explorer before retrying.\n", result.Digest)
		return nil
	}
	return err
}

func (a *app) status(ctx context.Context, viewArg string) error {
	viewed := types.Account(viewArg)
	if viewed == "" {
		viewed = a.account
	}
	if viewed == "" {
		return fmt.Errorf("set --account or --view to pick a board")
	}

	view, err := a.svc.BoardView(ctx, viewed)
	if err != nil {
		return err
	}

	fmt.Printf("Board for %s\n", view.Account)
	if view.Achievement == nil {
		fmt.Println("  No achievement minted yet. Run 'boardcli init' to get started.")
		return nil
	}
	fmt.Printf("  Level %d, %d points (%d available)\n",
		view.Effective.Level, view.Effective.TotalPoints, view.Effective.AvailablePoints)
	if view.Rank > 0 {
		fmt.Printf("  Leaderboard rank: #%d\n", view.Rank)
	}
	fmt.Printf("  Streak: %d days (longest %d)\n",
		view.Achievement.DailyStreak.Current, view.Achievement.DailyStreak.Longest)
	if view.CanClaimToday {
		fmt.Printf("  Daily reward available: +%d points\n", view.DailyBonus)
	} else {
		fmt.Println("  Daily reward already claimed today")
	}
	fmt.Println("  Tasks:")
	for _, task := range view.Tasks {
		mark := " "
		if task.Done {
			mark = "x"
		}
		fmt.Printf("    [%s] %d. %s\n", mark, task.Index, task.Title)
	}
	return nil
}

func (a *app) leaderboard(ctx context.Context) error {
	entries, err := a.svc.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return nil
	}
	for i, entry := range entries {
		fmt.Printf("%3d. %s  %d points\n", i+1, entry.Account, entry.Points)
	}
	return nil
}

func (a *app) activity(ctx context.Context) error {
	events, err := a.svc.Activity(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No recent activity")
		return nil
	}
	for _, ev := range events {
		switch ev.Kind {
		case types.ActivityTaskCompleted:
			fmt.Printf("task %d completed, now %d points  (%s)\n", ev.TaskIndex, ev.NewPoints, ev.ID)
		case types.ActivityDailyReward:
			fmt.Printf("daily reward +%d, streak %d  (%s)\n", ev.BonusPoints, ev.Streak, ev.ID)
		default:
			fmt.Printf("%s  +%d points  (%s)\n", ev.Kind, ev.NewPoints, ev.ID)
		}
	}
	return nil
}
