package anilist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"TV", FormatTV},
		{"tv short", FormatTVShort},
		{"TV_SHORT", FormatTVShort},
		{"Movie", FormatMovie},
		{"Movie (Chinese)", FormatMovie},
		{"ONA (Chinese)", FormatONA},
		{"OVA", FormatOVA},
		{"Special", FormatSpecial},
		{"Music", FormatMusic},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("Manhwa")
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestParseStatus_Normalizes(t *testing.T) {
	got, err := ParseStatus("NOT_YET_RELEASED")
	require.NoError(t, err)
	assert.Equal(t, StatusNotYetReleased, got)

	got, err = ParseStatus("  Not   Yet Released ")
	require.NoError(t, err)
	assert.Equal(t, StatusNotYetReleased, got)
}

func TestParseSource_Unknown(t *testing.T) {
	_, err := ParseSource("Radio Drama")
	require.Error(t, err)

	fe, ok := err.(*FieldError)
	require.True(t, ok)
	assert.Equal(t, "source", fe.Field)
}

func TestFieldError_Message(t *testing.T) {
	err := &FieldError{Field: "status", Value: "Releasng", Suggestion: "Releasing"}
	assert.Equal(t, `status: unknown value "Releasng" (did you mean "Releasing"?)`, err.Error())
}

func TestGenre_Slug(t *testing.T) {
	assert.Equal(t, "slice_of_life", GenreSliceOfLife.Slug())
	assert.Equal(t, "sci_fi", GenreSciFi.Slug())
	assert.Equal(t, "mahou_shoujo", GenreMahouShoujo.Slug())
	assert.Equal(t, "action", GenreAction.Slug())
}

func TestAllGenres(t *testing.T) {
	all := AllGenres()
	require.Len(t, all, 18)
	assert.Equal(t, GenreAction, all[0])
	assert.Equal(t, GenreThriller, all[len(all)-1])
}
