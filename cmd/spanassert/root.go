package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spanassert",
	Short: "spanassert verifies span lifecycle expectations against event logs",
	Long: `spanassert replays recorded span lifecycle events (created, entered,
exited, closed) against a declarative assertion suite, and can serve live
counter introspection while events stream in.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log verbosity (debug, info, warn, error)")
}
