package jimaku

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<!DOCTYPE html>
<html><body>
<div class="entry" data-extra="{&quot;name&quot;:&quot;Sousou no Frieren&quot;,&quot;flags&quot;:1,&quot;last_modified&quot;:1700000000,&quot;anilist_id&quot;:154587,&quot;tmdb_id&quot;:null,&quot;english_name&quot;:&quot;Frieren: Beyond Journey's End&quot;,&quot;japanese_name&quot;:&quot;葬送のフリーレン&quot;}">
  <a class="table-data file-name" href="/entry/3049">Sousou no Frieren</a>
</div>
<div class="entry" data-extra="{&quot;name&quot;:&quot;Drama&quot;,&quot;flags&quot;:12,&quot;last_modified&quot;:1690000000,&quot;anilist_id&quot;:null,&quot;tmdb_id&quot;:&quot;tv:1234&quot;,&quot;english_name&quot;:null,&quot;japanese_name&quot;:null}">
  <a class="table-data file-name" href="https://jimaku.cc/entry/77">Drama</a>
</div>
<div class="entry" data-extra="{&quot;name&quot;:&quot;Bad link&quot;,&quot;flags&quot;:1,&quot;last_modified&quot;:1}">
  <a class="table-data file-name" href="/entry/not-a-number">Bad link</a>
</div>
<div class="entry" data-extra="{not json">
  <a class="table-data file-name" href="/entry/99">Garbled</a>
</div>
<div class="entry">
  <a class="table-data file-name" href="/entry/100">No extra</a>
</div>
</body></html>`

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries(strings.NewReader(listingHTML))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, 3049, first.ID)
	assert.Equal(t, "Sousou no Frieren", first.Name)
	assert.Equal(t, int64(1700000000), first.LastModified)
	require.NotNil(t, first.AnilistID)
	assert.Equal(t, 154587, *first.AnilistID)
	assert.Nil(t, first.TMDBID)
	require.NotNil(t, first.JapaneseName)
	assert.Equal(t, "葬送のフリーレン", *first.JapaneseName)
	assert.True(t, first.Flags.IsAnime())
	assert.False(t, first.Flags.IsMovie())

	second := entries[1]
	assert.Equal(t, 77, second.ID)
	assert.Nil(t, second.AnilistID)
	require.NotNil(t, second.TMDBID)
	assert.Equal(t, "tv:1234", *second.TMDBID)
	assert.True(t, second.Flags.IsExternal())
	assert.True(t, second.Flags.IsMovie())
	assert.False(t, second.Flags.IsAnime())
}

func TestParseEntries_NonNumericLinkExcluded(t *testing.T) {
	page := `<div class="entry" data-extra='{"name":"x","flags":0,"last_modified":0,"anilist_id":5}'>
<a class="table-data file-name" href="/entry/abc">x</a></div>`

	_, err := ParseEntries(strings.NewReader(page))
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestParseEntries_DoubleEscapedAttribute(t *testing.T) {
	page := `<div class="entry" data-extra="{&amp;quot;name&amp;quot;:&amp;quot;Twice&amp;quot;,&amp;quot;flags&amp;quot;:2,&amp;quot;last_modified&amp;quot;:5}">
<a class="table-data file-name" href="/entry/12/">Twice</a></div>`

	entries, err := ParseEntries(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 12, entries[0].ID)
	assert.Equal(t, "Twice", entries[0].Name)
	assert.True(t, entries[0].Flags.IsUnverified())
}

func TestParseEntries_Empty(t *testing.T) {
	_, err := ParseEntries(strings.NewReader(`<html><body><p>maintenance</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestParseFiles_JSONRows(t *testing.T) {
	page := `<div class="entry" data-extra='{"name":"ep01.srt","size":40960,"last_modified":"2024-01-02T03:04:05Z"}'></div>
<div class="entry" data-extra='{"name":"ep02.srt","size":51200,"last_modified":"2024-01-09T03:04:05Z"}'></div>
<div class="entry" data-extra='{broken'></div>`

	files, err := ParseFiles(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, File{Name: "ep01.srt", Size: 40960, LastModified: "2024-01-02T03:04:05Z"}, files[0])
	assert.Equal(t, "ep02.srt", files[1].Name)
}

func TestParseFiles_DOMRows(t *testing.T) {
	page := `<table>
<div class="entry">
  <a class="table-data file-name" href="/entry/1/download/ep01.ass">ep01.ass</a>
  <span class="table-data file-size">12.5 kB</span>
  <span class="table-data file-modified">2024-03-01T10:00:00Z</span>
</div>
<div class="entry">
  <a class="table-data file-name" href="/entry/1/download/ep02.ass">ep02.ass</a>
  <span class="table-data file-size">a lot</span>
  <span class="table-data file-modified">2024-03-02T10:00:00Z</span>
</div>
<div class="entry">
  <a class="table-data file-name" href="/entry/1/download/ep03.ass">ep03.ass</a>
  <span class="table-data file-size">2 kB</span>
  <span class="table-data file-modified"><time datetime="2024-03-03T10:00:00Z">3 days ago</time></span>
</div>
</table>`

	files, err := ParseFiles(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, File{Name: "ep01.ass", Size: 12800, LastModified: "2024-03-01T10:00:00Z"}, files[0])
	assert.Equal(t, "ep03.ass", files[1].Name)
	assert.Equal(t, int64(2048), files[1].Size)
	assert.Equal(t, "2024-03-03T10:00:00Z", files[1].LastModified)
}

func TestParseFiles_NoRows(t *testing.T) {
	files, err := ParseFiles(strings.NewReader(`<html><body></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.5 kB", 12800, false},
		{"1 kB", 1024, false},
		{" 3 B ", 3, false},
		{"1.5 MB", 1572864, false},
		{"2 GiB", 2 << 30, false},
		{"10kB", 0, true},
		{"ten kB", 0, true},
		{"5 PB", 0, true},
		{"-1 kB", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		id   int
		ok   bool
	}{
		{"/entry/42", 42, true},
		{"https://jimaku.cc/entry/42?tab=files", 42, true},
		{"/entry/42/", 42, true},
		{"/entry/x42", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		id, ok := IDFromHref(tt.href)
		assert.Equal(t, tt.ok, ok, tt.href)
		assert.Equal(t, tt.id, id, tt.href)
	}
}
