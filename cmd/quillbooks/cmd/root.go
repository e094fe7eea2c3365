// Package cmd provides CLI commands for quillbooks.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quillbooks/backend/internal/common/config"
	"github.com/quillbooks/backend/internal/domain/lifecycle"
	"github.com/quillbooks/backend/internal/domain/sync"
	"github.com/quillbooks/backend/internal/platform/dynamodb/client"
	"github.com/quillbooks/backend/internal/platform/dynamodb/repository"
	"github.com/quillbooks/backend/internal/platform/identity"
	"github.com/quillbooks/backend/internal/platform/netmon"
	"github.com/quillbooks/backend/internal/state"
)

var (
	envFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quillbooks",
	Short: "Operate quillbooks company data from the terminal",
	Long: `quillbooks is a CLI over the quillbooks accounting core.

It can list and create companies, select a company and stream its live
data document, and manage categorization rules.

Example:
  quillbooks companies list
  quillbooks companies add "Acme Co"
  quillbooks select acme-co-1a2b3c4d --watch
  quillbooks rules add "coffee" 60400 --company acme-co-1a2b3c4d`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(rulesCmd)
}

// app bundles the wired core for command implementations.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *state.Store
	monitor *netmon.Monitor
	engine  *sync.Engine
	manager *lifecycle.Manager
	userID  string
}

func newApp(ctx context.Context) (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		// Best effort; a missing .env is fine.
		_ = godotenv.Load()
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	docClient, err := client.NewDynamoDBClient(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init dynamodb client: %w", err)
	}

	var ids identity.Provider
	if cfg.AccessToken != "" {
		token := cfg.AccessToken
		ids, err = identity.NewCognitoProvider(ctx, cfg.AWSRegion, func() string { return token }, logger)
		if err != nil {
			return nil, fmt.Errorf("init identity provider: %w", err)
		}
	} else {
		ids = identity.Static{UserID: cfg.UserID}
	}

	store := state.NewStore()
	monitor := netmon.NewMonitor(!cfg.Offline, docClient, store, logger)
	repo := repository.NewCompanyRepository(docClient, cfg.DynamoDBTableName, cfg.PollInterval, logger)
	engine := sync.NewEngine(repo, store, monitor, logger)
	manager := lifecycle.NewManager(repo, engine, store, ids, monitor, logger)

	userID := cfg.UserID
	if userID == "" {
		if uid, err := ids.CurrentUserID(ctx); err == nil {
			userID = uid
		}
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		monitor: monitor,
		engine:  engine,
		manager: manager,
		userID:  userID,
	}, nil
}
