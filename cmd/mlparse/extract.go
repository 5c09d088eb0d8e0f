package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/browser"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/runner"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/anilist"
)

var extractCmd = &cobra.Command{
	Use:   "extract <anilist-id>",
	Short: "Render one AniList page and show the extracted metadata",
	Long: `Render one AniList page in the browser and show the metadata the
feature table would get for it.

With --head and --body the fragments are read from saved files instead
and no browser is started.

Examples:
  mlparse extract 21
  mlparse extract 0 --head head.html --body body.html`,
	Args: cobra.ExactArgs(1),
	RunE: runExtractCmd,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("head", "", "Read the head fragment from a file")
	extractCmd.Flags().String("body", "", "Read the body fragment from a file")
}

type extractOutput struct {
	URL             string   `json:"url,omitempty"`
	Format          string   `json:"format"`
	Status          string   `json:"status"`
	Source          string   `json:"source"`
	Genres          []string `json:"genres"`
	Episodes        int      `json:"episodes"`
	EpisodeDuration int      `json:"episode_duration"`
	StartDate       int64    `json:"start_date"`
	EndDate         int64    `json:"end_date"`
	RatingValue     int      `json:"rating_value"`
	RatingCount     int      `json:"rating_count"`
	Studio          int      `json:"studio"`
	Producer        int      `json:"producer"`
	Rejected        []string `json:"rejected,omitempty"`
}

func newExtractOutput(url string, m anilist.Metadata) extractOutput {
	out := extractOutput{
		URL:             url,
		Format:          m.Format.String(),
		Status:          m.Status.String(),
		Source:          m.Source.String(),
		Genres:          make([]string, 0, len(m.Genres)),
		Episodes:        m.Episodes,
		EpisodeDuration: m.EpisodeDuration,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		RatingValue:     m.RatingValue,
		RatingCount:     m.RatingCount,
		Studio:          m.Studio,
		Producer:        m.Producer,
	}
	for _, g := range m.Genres {
		out.Genres = append(out.Genres, g.String())
	}
	for _, r := range m.Rejected {
		out.Rejected = append(out.Rejected, r.Error())
	}
	return out
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	headPath, _ := cmd.Flags().GetString("head")
	bodyPath, _ := cmd.Flags().GetString("body")

	var (
		frags browser.Fragments
		url   string
	)
	if headPath != "" || bodyPath != "" {
		var err error
		if frags, err = readFragments(headPath, bodyPath); err != nil {
			return err
		}
	} else {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid anilist id: %s", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(os.Stderr, cfg.Log)
		url = strings.TrimSuffix(cfg.Metadata.BaseURL, "/") + "/" + strconv.Itoa(id)

		session, err := runner.NewLauncher(cfg.Browser, logger).NewSession(cmd.Context())
		if err != nil {
			return fmt.Errorf("start browser: %w", err)
		}
		frags, err = session.Render(cmd.Context(), url)
		if cerr := session.Close(); cerr != nil {
			logger.Warn("close browser", "error", cerr)
		}
		if err != nil {
			return err
		}
	}

	meta, err := anilist.Extract(frags.Head, frags.Body)
	if err != nil {
		return err
	}
	out := newExtractOutput(url, meta)

	if jsonOutput {
		printJSON(out)
		return nil
	}
	if out.URL != "" {
		fmt.Printf("URL:       %s\n", out.URL)
	}
	fmt.Printf("Format:    %s\n", out.Format)
	fmt.Printf("Status:    %s\n", out.Status)
	fmt.Printf("Source:    %s\n", out.Source)
	fmt.Printf("Genres:    %s\n", strings.Join(out.Genres, ", "))
	fmt.Printf("Episodes:  %d x %d min\n", out.Episodes, out.EpisodeDuration)
	fmt.Printf("Aired:     %s .. %s\n", formatEpoch(out.StartDate), formatEpoch(out.EndDate))
	fmt.Printf("Rating:    %d (%d votes)\n", out.RatingValue, out.RatingCount)
	fmt.Printf("Studio:    %d\n", out.Studio)
	fmt.Printf("Producer:  %d\n", out.Producer)
	if len(out.Rejected) > 0 {
		fmt.Println("\nRejected values:")
		for _, r := range out.Rejected {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}

func readFragments(headPath, bodyPath string) (browser.Fragments, error) {
	var f browser.Fragments
	if headPath != "" {
		b, err := os.ReadFile(headPath)
		if err != nil {
			return f, err
		}
		f.Head = string(b)
	}
	if bodyPath != "" {
		b, err := os.ReadFile(bodyPath)
		if err != nil {
			return f, err
		}
		f.Body = string(b)
	}
	return f, nil
}
