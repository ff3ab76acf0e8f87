package main

import (
	"fmt"
	"log/slog"

	bootstrap "replenishment/cmd"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	verbose bool

	// app is built before every subcommand runs.
	app *bootstrap.CompositionRoot
)

var rootCmd = &cobra.Command{
	Use:   "replctl",
	Short: "Operate the replenishment service",
	Long: `replctl runs replenishment use cases against the service database.

Configuration is read from the environment and an optional .env file, the
same way the service reads it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log use case activity to stderr")

	rootCmd.AddCommand(sitesCmd, sensorsCmd, ordersCmd, routesCmd, stopsCmd, kpiCmd)
}

func setupApp(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	configs, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}

	app, err = bootstrap.NewCompositionRoot(configs, db, log)
	return err
}
