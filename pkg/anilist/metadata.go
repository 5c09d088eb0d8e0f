// Package anilist extracts title metadata from rendered AniList pages.
//
// A page is read from two fragments: the head, which carries a schema.org
// ld+json block, and the body, which carries label/value pairs. Values from
// the head take precedence.
package anilist

// Metadata is the merged, read-only result of Extract.
// Zero values mean the field was not found in either fragment.
type Metadata struct {
	Format          Format
	Status          Status
	Source          Source
	Genres          []Genre
	Episodes        int
	EpisodeDuration int   // minutes
	StartDate       int64 // epoch seconds
	EndDate         int64 // epoch seconds
	RatingValue     int
	RatingCount     int
	Studio          int // first production company id
	Producer        int // first producer id

	// Rejected lists field values that fell outside their vocabulary.
	Rejected []*FieldError
}

// HasGenre reports whether g is among m's genres.
func (m Metadata) HasGenre(g Genre) bool {
	for _, have := range m.Genres {
		if have == g {
			return true
		}
	}
	return false
}
