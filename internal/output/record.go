// Package output writes enriched entries as rows of a tab-separated table.
package output

import (
	"slices"
	"strconv"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/filestats"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/anilist"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

// Record is one output row: a listing entry joined with its metadata and file stats.
type Record struct {
	ID           int
	Name         string
	EnglishName  string
	JapaneseName string
	AnilistID    int
	Flags        jimaku.Flags
	LastModified int64

	Format          anilist.Format
	Status          anilist.Status
	Source          anilist.Source
	Episodes        int
	EpisodeDuration int
	AiringStart     int64
	AiringEnd       int64
	RatingValue     int
	RatingCount     int
	Studio          int
	Producer        int
	Genres          []anilist.Genre

	Files filestats.Stats
}

// NewRecord joins an entry with its metadata and file statistics.
func NewRecord(e jimaku.Entry, m anilist.Metadata, s filestats.Stats) Record {
	return Record{
		ID:              e.ID,
		Name:            e.Name,
		EnglishName:     derefString(e.EnglishName),
		JapaneseName:    derefString(e.JapaneseName),
		AnilistID:       derefInt(e.AnilistID),
		Flags:           e.Flags,
		LastModified:    e.LastModified,
		Format:          m.Format,
		Status:          m.Status,
		Source:          m.Source,
		Episodes:        m.Episodes,
		EpisodeDuration: m.EpisodeDuration,
		AiringStart:     m.StartDate,
		AiringEnd:       m.EndDate,
		RatingValue:     m.RatingValue,
		RatingCount:     m.RatingCount,
		Studio:          m.Studio,
		Producer:        m.Producer,
		Genres:          m.Genres,
		Files:           s,
	}
}

// Columns returns the header in row order.
func Columns() []string {
	cols := []string{
		"id", "name", "name_english", "name_japanese", "anilist_id",
		"is_anime", "is_unverified", "is_external", "is_movie", "is_adult",
		"last_modified",
		"format", "status", "source",
		"episode_amount", "episode_duration",
		"airing_start_date", "airing_end_date",
		"rating_value", "rating_count",
		"company_studio", "company_producer",
	}
	for _, g := range anilist.AllGenres() {
		cols = append(cols, "genre_"+g.Slug())
	}
	return append(cols,
		"file_modified_first", "file_modified_last", "file_modified_median",
		"filesize_min", "filesize_max", "filesize_median",
	)
}

// Row renders r in Columns order. Missing strings render as "?".
func (r Record) Row() []string {
	row := []string{
		strconv.Itoa(r.ID),
		orUnknown(r.Name),
		orUnknown(r.EnglishName),
		orUnknown(r.JapaneseName),
		strconv.Itoa(r.AnilistID),
		strconv.FormatBool(r.Flags.IsAnime()),
		strconv.FormatBool(r.Flags.IsUnverified()),
		strconv.FormatBool(r.Flags.IsExternal()),
		strconv.FormatBool(r.Flags.IsMovie()),
		strconv.FormatBool(r.Flags.IsAdult()),
		i64(r.LastModified),
		r.Format.String(),
		r.Status.String(),
		r.Source.String(),
		strconv.Itoa(r.Episodes),
		strconv.Itoa(r.EpisodeDuration),
		i64(r.AiringStart),
		i64(r.AiringEnd),
		strconv.Itoa(r.RatingValue),
		strconv.Itoa(r.RatingCount),
		strconv.Itoa(r.Studio),
		strconv.Itoa(r.Producer),
	}
	for _, g := range anilist.AllGenres() {
		row = append(row, strconv.FormatBool(slices.Contains(r.Genres, g)))
	}
	return append(row,
		i64(r.Files.ModifiedFirst),
		i64(r.Files.ModifiedLast),
		i64(r.Files.ModifiedMedian),
		i64(r.Files.SizeMin),
		i64(r.Files.SizeMax),
		i64(r.Files.SizeMedian),
	)
}

func i64(n int64) string { return strconv.FormatInt(n, 10) }

func orUnknown(s string) string {
	if s == "" {
		return anilist.Unknown
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
