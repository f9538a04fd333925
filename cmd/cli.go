package cmd

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/softTechSolutions2001/eduplatform-sub000/db"
	"github.com/spf13/cobra"
)

// commandCancel releases the per-invocation context installed by the
// --timeout flag. Execute calls it after the command tree finishes.
var commandCancel context.CancelFunc

func Execute() {
	rootCmd := createRootCmd()
	configureDatabasePath()
	initializeDatabase()
	defer closeDatabase()
	defer releaseCommandContext()

	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution failed.")
		os.Exit(1)
	}
}

func createRootCmd() *cobra.Command {
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:   "educli",
		Short: "A command-line client for the EduPlatform learning API",
	}

	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "T", 0,
		"Abort the command when it runs longer than this, e.g. 30s or 2m (0 means no limit)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if timeout > 0 {
			ctx, commandCancel = context.WithTimeout(ctx, timeout)
		}
		cmd.SetContext(ctx)
	}

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		meCmd(),
		enrollCmd(),
		enrollmentsCmd(),
		coursesCmd(),
		lessonsCmd(),
		instructorCmd(),
		versionCmd(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

func releaseCommandContext() {
	if commandCancel != nil {
		commandCancel()
		commandCancel = nil
	}
}

// configureDatabasePath resolves db.Path from the environment. Tests set
// db.Path directly and call initializeDatabase, skipping this step.
func configureDatabasePath() {
	if err := db.ConfigurePathErr(); err != nil {
		log.Error().Err(err).Msg("Failed to resolve database path")
		os.Exit(1)
	}
}

func initializeDatabase() {
	if err := db.InitDB(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		os.Exit(1)
	}
}

func closeDatabase() {
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
		os.Exit(1)
	}
}
