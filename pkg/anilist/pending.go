package anilist

import "slices"

// fragmentFields holds the values a single fragment can contribute to the
// precedence-merged fields.
type fragmentFields struct {
	format   *Format
	status   *Status
	source   *Source
	episodes *int
}

// pending accumulates values from both fragments. It is never exposed; build
// turns it into a Metadata once both fragments have been read.
type pending struct {
	head fragmentFields
	body fragmentFields

	// airing is the body's currently airing episode, which overrides episodes.
	airing *int

	duration    int
	startDate   int64
	endDate     int64
	ratingValue int
	ratingCount int
	studio      int
	producer    int
	genres      []Genre

	rejected []*FieldError
}

func (p *pending) reject(err error) {
	if fe, ok := err.(*FieldError); ok {
		p.rejected = append(p.rejected, fe)
	}
}

func (p *pending) addGenre(g Genre) {
	if !slices.Contains(p.genres, g) {
		p.genres = append(p.genres, g)
	}
}

func (p *pending) build() Metadata {
	m := Metadata{
		Format:          deref(first(p.head.format, p.body.format)),
		Status:          deref(first(p.head.status, p.body.status)),
		Source:          deref(first(p.head.source, p.body.source)),
		Episodes:        deref(first(p.airing, p.head.episodes, p.body.episodes)),
		EpisodeDuration: p.duration,
		StartDate:       p.startDate,
		EndDate:         p.endDate,
		RatingValue:     p.ratingValue,
		RatingCount:     p.ratingCount,
		Studio:          p.studio,
		Producer:        p.producer,
		Genres:          slices.Clone(p.genres),
		Rejected:        slices.Clone(p.rejected),
	}
	slices.Sort(m.Genres)
	return m
}

func first[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
