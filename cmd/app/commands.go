package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fitbook/cmd/fx/config_fx"
	"fitbook/cmd/fx/db_fx"
	"fitbook/internal/infra"
	"fitbook/internal/models/request_models"
	"fitbook/internal/repositories"
	"fitbook/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "fitbook",
	Short: "FitBook marketplace API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(serveOptions())
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), fx.Invoke(func(db *gorm.DB, log *zap.Logger) error {
			if err := infra.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("schema up to date", zap.Int("tables", len(infra.Entities())))
			return nil
		}))
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install session types and optional manually-added businesses",
	RunE: func(cmd *cobra.Command, args []string) error {
		businesses, err := readSeedFile(seedFile)
		if err != nil {
			return err
		}
		return runOnce(cmd.Context(), fx.Invoke(func(store repositories.Store, log *zap.Logger) error {
			_, err := services.NewSeeder(store, log).Run(context.Background(), businesses)
			return err
		}))
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "businesses", "b", "", "JSON file with an array of businesses to add")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// runOnce boots config and database, runs invoke and shuts down.
func runOnce(ctx context.Context, invoke fx.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		invoke,
	)
	if err := app.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	return app.Stop(startCtx)
}

func readSeedFile(path string) ([]request_models.BusinessRequest, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var out []request_models.BusinessRequest
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return out, nil
}
