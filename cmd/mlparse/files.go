package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/filestats"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/runner"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

var filesCmd = &cobra.Command{
	Use:   "files <entry-id>",
	Short: "Show an entry's subtitle files and their statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesCmd,
}

func init() {
	rootCmd.AddCommand(filesCmd)
}

type filesOutput struct {
	EntryID int             `json:"entry_id"`
	Files   []jimaku.File   `json:"files"`
	Stats   filestats.Stats `json:"stats"`
}

func runFilesCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid entry id: %s", args[0])
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Log)

	files, err := runner.NewJimakuClient(cfg.Listing, logger).Files(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("fetch files: %w", err)
	}
	stats, err := filestats.Aggregate(files)
	if err != nil && !errors.Is(err, filestats.ErrNoFiles) {
		return err
	}

	if jsonOutput {
		printJSON(filesOutput{EntryID: id, Files: files, Stats: stats})
		return nil
	}
	if len(files) == 0 {
		fmt.Println("No files")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tMODIFIED\tNAME")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatSize(f.Size), formatEpoch(filestats.ParseTimestamp(f.LastModified)), f.Name)
	}
	_ = w.Flush()

	fmt.Printf("\n%d files\n", len(files))
	fmt.Printf("  Modified: %s .. %s (median %s)\n", formatEpoch(stats.ModifiedFirst), formatEpoch(stats.ModifiedLast), formatEpoch(stats.ModifiedMedian))
	fmt.Printf("  Size:     %s .. %s (median %s)\n", formatSize(stats.SizeMin), formatSize(stats.SizeMax), formatSize(stats.SizeMedian))
	return nil
}
