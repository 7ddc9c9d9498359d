package cmd

import (
	"errors"
	"fmt"
	"os"

	"media-cleaner/core/logger"
	"media-cleaner/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit statuses besides 0 (success or declined) and 1 (error).
const (
	exitPartialFailure = 2
	exitInterrupted    = 130
)

var (
	// errPartialFailure is returned when some tagged files could not be removed.
	errPartialFailure = errors.New("some files could not be removed")
	// errInterrupted is returned when a run was stopped by a signal.
	errInterrupted = errors.New("interrupted")
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "media-cleaner",
	Short: "Catalog media reconciliation tool",
	Long: `Media Cleaner finds product images on disk that the catalog no longer
references and removes them safely. Every run is a dry run unless told otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	os.Exit(exitCode(RootCmd.Execute()))
}

// exitCode maps a command error to the process exit status and reports it.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, reconcile.ErrAborted):
		return 0
	case errors.Is(err, errInterrupted):
		return exitInterrupted
	case errors.Is(err, errPartialFailure):
		return exitPartialFailure
	}

	// Console format with debug config gives ISO8601 timestamps.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Println(err)
		return 1
	}
	l.Error("command failed", zap.Error(err))
	_ = l.Sync()
	return 1
}
