package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/internal/adapters/replay"
	"github.com/aretw0/spanassert/internal/config"
	"github.com/aretw0/spanassert/internal/logging"
	"github.com/aretw0/spanassert/internal/presentation/tui"
)

var replayCmd = &cobra.Command{
	Use:   "replay [events.jsonl]",
	Short: "Replay an event log against an assertion suite",
	Long: `Reads span lifecycle events (JSON lines) from the given file or stdin,
counts them against the suite's matchers, and reports which assertions held.
Exits non-zero if any assertion failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suitePath, _ := cmd.Flags().GetString("suite")
		markdown, _ := cmd.Flags().GetBool("markdown")
		levelFlag, _ := cmd.Flags().GetString("log-level")

		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		logger := logging.New(level)

		registry := spanassert.New()
		assertions, err := config.Load(suitePath, registry)
		if err != nil {
			return fmt.Errorf("load suite %s: %w", suitePath, err)
		}
		defer config.Close(assertions)

		var input io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open event log: %w", err)
			}
			defer f.Close()
			input = f
		}

		replayer := replay.New(registry, replay.WithLogger(logger))
		if err := replayer.Run(cmd.Context(), input); err != nil {
			return err
		}
		if open := replayer.Live(); open > 0 {
			logger.Warn("event log ended with open spans", "count", open)
		}

		results := evaluate(assertions)
		if markdown {
			out, err := tui.MarkdownReport(results)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
		} else {
			fmt.Fprint(cmd.OutOrStdout(), tui.Report(results))
		}

		if _, failed := tui.Summary(results); failed > 0 {
			return fmt.Errorf("%d assertion(s) failed", failed)
		}
		return nil
	},
}

func evaluate(assertions []config.NamedAssertion) []tui.Result {
	results := make([]tui.Result, 0, len(assertions))
	for _, na := range assertions {
		name := na.Name
		if name == "" {
			name = na.Assertion.Matcher()
		}
		results = append(results, tui.Result{
			Name:    name,
			Matcher: na.Assertion.Matcher(),
			Err:     na.Assertion.Evaluate(),
		})
	}
	return results
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("suite", "s", "spanassert.yaml", "Assertion suite file")
	replayCmd.Flags().Bool("markdown", false, "Render the report as markdown")
}
