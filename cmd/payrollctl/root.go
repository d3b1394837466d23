package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/app"
	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/spf13/cobra"
)

// env carries what every subcommand needs once the root command has loaded configuration.
type env struct {
	cfg *config.Config
	out io.Writer
}

func newRootCmd() *cobra.Command {
	e := &env{out: os.Stdout}

	root := &cobra.Command{
		Use:          "payrollctl",
		Short:        "Operate the payroll engine: migrations, payroll runs and attendance evaluation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.out = cmd.OutOrStdout()
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel()})))
			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(e),
		newRunCmd(e),
		newRecalculateCmd(e),
		newEvaluateCmd(e),
		newTokenCmd(e),
	)
	return root
}

// withServices connects to the database, builds the services and closes the pool afterwards.
func (e *env) withServices(ctx context.Context, fn func(s *app.Services) error) error {
	db, err := database.NewPostgreSQLDB(ctx, e.cfg.DatabaseURL(), database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	services, err := app.NewServices(db, e.cfg)
	if err != nil {
		return err
	}
	return fn(services)
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
