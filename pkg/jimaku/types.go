package jimaku

// Flags is the entry flag bitset published by the listing site.
type Flags uint32

const (
	FlagAnime Flags = 1 << iota
	FlagUnverified
	FlagExternal
	FlagMovie
	FlagAdult
)

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool { return fl&f == f }

func (fl Flags) IsAnime() bool      { return fl.Has(FlagAnime) }
func (fl Flags) IsUnverified() bool { return fl.Has(FlagUnverified) }
func (fl Flags) IsExternal() bool   { return fl.Has(FlagExternal) }
func (fl Flags) IsMovie() bool      { return fl.Has(FlagMovie) }
func (fl Flags) IsAdult() bool      { return fl.Has(FlagAdult) }

// Entry is one catalog item from a listing page.
// ID comes from the entry link; every other field comes from the data-extra attribute.
type Entry struct {
	ID           int     `json:"-"`
	Name         string  `json:"name"`
	Flags        Flags   `json:"flags"`
	LastModified int64   `json:"last_modified"`
	AnilistID    *int    `json:"anilist_id"`
	TMDBID       *string `json:"tmdb_id"`
	EnglishName  *string `json:"english_name"`
	JapaneseName *string `json:"japanese_name"`
}

// File is one subtitle file attached to an entry.
type File struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}
