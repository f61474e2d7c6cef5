package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suiboard/suiboard-backend/pkg/env"
)

// Display constants mirrored from the contract suite. The ledger computes
// the real values; these exist only for precondition checks and display.
const (
	DayLengthMs = 86_400_000 // fixed 24h day used for streak computation

	MinActionAmount = 10 // minimum for stake, listing, proposal creation, voting

	PlatformFeeBps = 250 // 2.5%
	DailyYieldBps  = 500 // 5% per day on staked points

	VotingPeriodDays = 7
	PassThresholdPct = 70
	MaxVotingPower   = 10

	TaskRewardPoints       = 10
	DailyBonusBase         = 5
	DailyBonusPerStreakDay = 2
)

// SharedObjects holds the ids of the shared contract objects every call references.
type SharedObjects struct {
	Leaderboard   string
	GovernanceHub string
	StakingPool   string
	Marketplace   string
	TaskSystem    string
	Clock         string
}

// TaskDefinition is one entry of the fixed, index-addressed task list.
type TaskDefinition struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Config struct {
	DevMode bool

	RPCURL          string
	WalletBridgeURL string
	ChainID         string
	PackageID       string
	AchievementType string

	Objects SharedObjects

	RedisURL     string
	OverlayFile  string
	APIPort      string
	RefreshEvery time.Duration
	FinalityWait time.Duration
	Tasks        []TaskDefinition
}

// Init loads .env, environment variables and the task definition file.
func Init() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional outside local development
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		DevMode:         env.GetEnvBool("DEV_MODE", true),
		RPCURL:          env.GetEnvString("SUI_RPC_URL", "https://fullnode.testnet.sui.io:443"),
		WalletBridgeURL: env.GetEnvString("WALLET_BRIDGE_URL", "http://localhost:9193"),
		ChainID:         env.GetEnvString("SUI_CHAIN_ID", "sui:testnet"),
		PackageID:       env.GetEnvString("BOARD_PACKAGE_ID", ""),
		Objects: SharedObjects{
			Leaderboard:   env.GetEnvString("LEADERBOARD_ID", ""),
			GovernanceHub: env.GetEnvString("GOVERNANCE_HUB_ID", ""),
			StakingPool:   env.GetEnvString("STAKING_POOL_ID", ""),
			Marketplace:   env.GetEnvString("MARKETPLACE_ID", ""),
			TaskSystem:    env.GetEnvString("TASK_SYSTEM_ID", ""),
			Clock:         env.GetEnvString("CLOCK_OBJECT_ID", "0x6"),
		},
		RedisURL:     env.GetEnvString("REDIS_URL", ""),
		OverlayFile:  env.GetEnvString("OVERLAY_FILE", "data/reserved.json"),
		APIPort:      env.GetEnvString("BOARD_API_PORT", "9190"),
		RefreshEvery: env.GetEnvDuration("BOARD_REFRESH_INTERVAL", 2*time.Minute),
		FinalityWait: env.GetEnvDuration("FINALITY_WAIT_TIMEOUT", 60*time.Second),
	}

	if cfg.PackageID == "" {
		return nil, fmt.Errorf("BOARD_PACKAGE_ID is not set")
	}
	if cfg.Objects.Leaderboard == "" {
		return nil, fmt.Errorf("LEADERBOARD_ID is not set")
	}
	cfg.AchievementType = fmt.Sprintf("%s::achievement::AchievementNFT", cfg.PackageID)

	tasksFile := env.GetEnvString("TASKS_FILE", "config/tasks.yaml")
	tasks, err := LoadTasks(tasksFile)
	if err != nil {
		return nil, err
	}
	cfg.Tasks = tasks

	return cfg, nil
}

// LoadTasks reads the fixed task definition list.
func LoadTasks(path string) ([]TaskDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task definitions: %w", err)
	}
	var doc struct {
		Tasks []TaskDefinition `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse task definitions: %w", err)
	}
	if len(doc.Tasks) == 0 {
		return nil, fmt.Errorf("task definition file %s has no tasks", path)
	}
	return doc.Tasks, nil
}
