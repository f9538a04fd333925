package main

import (
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/softTechSolutions2001/eduplatform-sub000/cmd"
)

// main sets up logging based on the DEBUG_EDUCLI environment variable,
// starts a goroutine listening for interrupt signals, and executes the
// root command.
func main() {
	configureLogLevelFromEnv()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan,
		func(msg string) { log.Error().Msg(msg) },
		os.Exit,
	)

	cmd.Execute()
}

// configureLogLevelFromEnv enables debug logging when DEBUG_EDUCLI is set
// to anything but "", "false", or "0"; otherwise logging is disabled.
func configureLogLevelFromEnv() {
	switch os.Getenv("DEBUG_EDUCLI") {
	case "", "false", "0":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// setupInterruptListener registers for interrupt signals and returns the
// channel they arrive on.
func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt)
	return stopChan
}

// handleInterrupt blocks until an interrupt arrives, then logs and exits.
// The log and exit functions are injected so tests can observe both.
func handleInterrupt(stopChan chan os.Signal, fatalLog func(string), exit func(int)) {
	<-stopChan
	fatalLog("Interrupt signal received. Exiting...")
	exit(1)
}
