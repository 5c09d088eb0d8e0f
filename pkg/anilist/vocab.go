package anilist

import (
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Unknown is how an unset enumerated field renders.
const Unknown = "?"

// suggestThreshold is the minimum Jaro-Winkler similarity for a "did you mean" hint.
const suggestThreshold = 0.8

// Format is the media format of a title.
type Format int

const (
	FormatUnset Format = iota
	FormatTV
	FormatTVShort
	FormatMovie
	FormatSpecial
	FormatOVA
	FormatONA
	FormatMusic
)

// Status is the release status of a title.
type Status int

const (
	StatusUnset Status = iota
	StatusReleasing
	StatusFinished
	StatusNotYetReleased
	StatusCancelled
	StatusHiatus
)

// Source is the kind of work a title is adapted from.
type Source int

const (
	SourceUnset Source = iota
	SourceOriginal
	SourceManga
	SourceLightNovel
	SourceWebNovel
	SourceNovel
	SourceAnime
	SourceVisualNovel
	SourceVideoGame
	SourceDoujinshi
	SourceComic
	SourceLiveAction
	SourceGame
	SourceMultimediaProject
	SourceOther
)

// Genre is one of the fixed AniList genres.
type Genre int

const (
	GenreAction Genre = iota
	GenreAdventure
	GenreComedy
	GenreDrama
	GenreEcchi
	GenreFantasy
	GenreHorror
	GenreMahouShoujo
	GenreMecha
	GenreMusic
	GenreMystery
	GenrePsychological
	GenreRomance
	GenreSciFi
	GenreSliceOfLife
	GenreSports
	GenreSupernatural
	GenreThriller
	genreCount
)

var (
	formats = newVocabulary[Format]("format", []string{
		FormatTV: "TV", FormatTVShort: "TV Short", FormatMovie: "Movie", FormatSpecial: "Special",
		FormatOVA: "OVA", FormatONA: "ONA", FormatMusic: "Music",
	})
	statuses = newVocabulary[Status]("status", []string{
		StatusReleasing: "Releasing", StatusFinished: "Finished", StatusNotYetReleased: "Not Yet Released",
		StatusCancelled: "Cancelled", StatusHiatus: "Hiatus",
	})
	sources = newVocabulary[Source]("source", []string{
		SourceOriginal: "Original", SourceManga: "Manga", SourceLightNovel: "Light Novel",
		SourceWebNovel: "Web Novel", SourceNovel: "Novel", SourceAnime: "Anime",
		SourceVisualNovel: "Visual Novel", SourceVideoGame: "Video Game", SourceDoujinshi: "Doujinshi",
		SourceComic: "Comic", SourceLiveAction: "Live Action", SourceGame: "Game",
		SourceMultimediaProject: "Multimedia Project", SourceOther: "Other",
	})
	genres = newVocabulary[Genre]("genre", []string{
		GenreAction: "Action", GenreAdventure: "Adventure", GenreComedy: "Comedy", GenreDrama: "Drama",
		GenreEcchi: "Ecchi", GenreFantasy: "Fantasy", GenreHorror: "Horror", GenreMahouShoujo: "Mahou Shoujo",
		GenreMecha: "Mecha", GenreMusic: "Music", GenreMystery: "Mystery", GenrePsychological: "Psychological",
		GenreRomance: "Romance", GenreSciFi: "Sci-Fi", GenreSliceOfLife: "Slice of Life", GenreSports: "Sports",
		GenreSupernatural: "Supernatural", GenreThriller: "Thriller",
	})
)

func (f Format) String() string { return formats.name(f) }
func (s Status) String() string { return statuses.name(s) }
func (s Source) String() string { return sources.name(s) }
func (g Genre) String() string  { return genres.name(g) }

// Slug returns the genre as a lowercase identifier, e.g. "slice_of_life".
func (g Genre) Slug() string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, strings.ToLower(g.String()))
}

// AllGenres returns every genre in vocabulary order.
func AllGenres() []Genre {
	out := make([]Genre, 0, genreCount)
	for g := Genre(0); g < genreCount; g++ {
		out = append(out, g)
	}
	return out
}

// ParseFormat maps a format label to a Format. Any label mentioning "movie" or
// "ona" maps to Movie or ONA, which covers regional variants like "Movie (Chinese)".
func ParseFormat(s string) (Format, error) {
	if f, err := formats.parse(s); err == nil {
		return f, nil
	}
	key := normalize(s)
	switch {
	case strings.Contains(key, "movie"):
		return FormatMovie, nil
	case strings.Contains(key, "ona"):
		return FormatONA, nil
	}
	return formats.parse(s)
}

// ParseStatus maps a status label to a Status.
func ParseStatus(s string) (Status, error) { return statuses.parse(s) }

// ParseSource maps a source label to a Source.
func ParseSource(s string) (Source, error) { return sources.parse(s) }

// ParseGenre maps a genre label to a Genre.
func ParseGenre(s string) (Genre, error) { return genres.parse(s) }

// vocabulary is a fixed set of names indexed by their enum value.
// The empty name at index 0 of the unset-first enums is never matched.
type vocabulary[T ~int] struct {
	field string
	names []string
	index map[string]T
}

func newVocabulary[T ~int](field string, names []string) vocabulary[T] {
	v := vocabulary[T]{field: field, names: names, index: make(map[string]T, len(names))}
	for i, n := range names {
		if n != "" {
			v.index[normalize(n)] = T(i)
		}
	}
	return v
}

func (v vocabulary[T]) name(t T) string {
	if int(t) < 0 || int(t) >= len(v.names) || v.names[t] == "" {
		return Unknown
	}
	return v.names[t]
}

func (v vocabulary[T]) parse(raw string) (T, error) {
	key := normalize(raw)
	if t, ok := v.index[key]; ok {
		return t, nil
	}
	var zero T
	return zero, &FieldError{Field: v.field, Value: strings.TrimSpace(raw), Suggestion: v.suggest(key)}
}

func (v vocabulary[T]) suggest(key string) string {
	if key == "" {
		return ""
	}
	best, bestScore := "", float32(0)
	for _, n := range v.names {
		if n == "" {
			continue
		}
		score := edlib.JaroWinklerSimilarity(key, normalize(n))
		if score > bestScore {
			best, bestScore = n, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

// normalize folds case and compatibility forms, treats '_' and '-' as spaces
// and collapses whitespace, so "NOT_YET_RELEASED" and "Not Yet  Released" agree.
func normalize(s string) string {
	s = cases.Fold().String(norm.NFKC.String(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
