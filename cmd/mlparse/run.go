package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/enrich"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch listings and write the feature table",
	Long: `Fetch every configured listing, render each entry's metadata page
and append one row per entry to the output file.

Examples:
  mlparse run
  mlparse run --limit 20 --output sample.tsv`,
	Args: cobra.NoArgs,
	RunE: runRunCmd,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("limit", 0, "Process at most this many entries (overrides config)")
	runCmd.Flags().StringP("output", "o", "", "Output TSV path (overrides config)")
	runCmd.Flags().Bool("no-cache", false, "Disable the rendered page cache")
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		cfg.Enrich.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Output.Path = out
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	logger := newLogger(os.Stderr, cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := runner.New(cfg, logger).Run(ctx)
	if jsonOutput {
		printJSON(res.Summary)
	} else if res.Entries > 0 {
		s := res.Summary
		fmt.Printf("Entries:  %d (%d listing errors)\n", res.Entries, len(res.SourceErrors))
		fmt.Printf("Enriched: %d\n", s.Enriched)
		fmt.Printf("Skipped:  %d\n", s.Skipped)
		fmt.Printf("Dropped:  %d\n", s.Dropped)
		fmt.Printf("Output:   %s\n", cfg.Output.Path)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted")
		return err
	case errors.Is(err, enrich.ErrRunAborted):
		var abort *enrich.AbortError
		if errors.As(err, &abort) {
			return fmt.Errorf("aborted after %d consecutive render failures: %w", abort.Failures, abort.Err)
		}
		return err
	default:
		return fmt.Errorf("run failed: %w", err)
	}
}
