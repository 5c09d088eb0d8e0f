package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/catalog"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/runner"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

var entriesCmd = &cobra.Command{
	Use:   "entries [listing-url...]",
	Short: "List catalog entries",
	Long: `List catalog entries from the configured listing pages, or from the
pages given as arguments.

Examples:
  mlparse entries
  mlparse entries https://jimaku.cc/dramas --json`,
	RunE: runEntriesCmd,
}

func init() {
	rootCmd.AddCommand(entriesCmd)
	entriesCmd.Flags().Bool("anime", false, "Only entries flagged as anime")
	entriesCmd.Flags().Bool("linked", false, "Only entries with an AniList id")
}

func runEntriesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Log)
	urls := cfg.Listing.URLs
	if len(args) > 0 {
		urls = args
	}

	client := runner.NewJimakuClient(cfg.Listing, logger)
	entries, errs := catalog.NewFetcher(client, logger).FetchAll(cmd.Context(), urls)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if len(entries) == 0 && len(errs) > 0 {
		return fmt.Errorf("all %d listings failed", len(errs))
	}

	anime, _ := cmd.Flags().GetBool("anime")
	linked, _ := cmd.Flags().GetBool("linked")
	entries = filterEntries(entries, anime, linked)

	if jsonOutput {
		printJSON(entries)
		return nil
	}
	if len(entries) == 0 {
		fmt.Println("No entries found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tANILIST\tFLAGS\tMODIFIED\tNAME")
	for _, e := range entries {
		anilistID := "-"
		if e.AnilistID != nil {
			anilistID = fmt.Sprint(*e.AnilistID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, anilistID, flagString(e.Flags), ago(e.LastModified), e.Name)
	}
	_ = w.Flush()
	fmt.Printf("\n%d entries\n", len(entries))
	return nil
}

func filterEntries(entries []jimaku.Entry, anime, linked bool) []jimaku.Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if anime && !e.Flags.IsAnime() {
			continue
		}
		if linked && e.AnilistID == nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// flagString renders the set flags as one letter each, in bit order.
func flagString(f jimaku.Flags) string {
	letters := []struct {
		flag jimaku.Flags
		c    byte
	}{
		{jimaku.FlagAnime, 'A'},
		{jimaku.FlagUnverified, 'U'},
		{jimaku.FlagExternal, 'E'},
		{jimaku.FlagMovie, 'M'},
		{jimaku.FlagAdult, 'X'},
	}
	var b []byte
	for _, l := range letters {
		if f.Has(l.flag) {
			b = append(b, l.c)
		}
	}
	if len(b) == 0 {
		return "-"
	}
	return string(b)
}
