package filestats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

func TestAggregate(t *testing.T) {
	files := []jimaku.File{
		{Name: "a", Size: 100, LastModified: "2024-01-03T00:00:00Z"},
		{Name: "b", Size: 300, LastModified: "2024-01-01T00:00:00Z"},
		{Name: "c", Size: 200, LastModified: "2024-01-04T00:00:00Z"},
		{Name: "d", Size: 400, LastModified: "2024-01-02T00:00:00Z"},
	}

	stats, err := Aggregate(files)
	require.NoError(t, err)

	assert.Equal(t, int64(100), stats.SizeMin)
	assert.Equal(t, int64(400), stats.SizeMax)
	assert.Equal(t, int64(250), stats.SizeMedian)

	assert.Equal(t, int64(1704067200), stats.ModifiedFirst)  // 2024-01-01
	assert.Equal(t, int64(1704326400), stats.ModifiedLast)   // 2024-01-04
	assert.Equal(t, int64(1704196800), stats.ModifiedMedian) // midpoint of 01-02 and 01-03
}

func TestAggregate_SingleFile(t *testing.T) {
	stats, err := Aggregate([]jimaku.File{{Size: 5, LastModified: "2024-01-01T00:00:00Z"}})
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.SizeMin)
	assert.Equal(t, int64(5), stats.SizeMax)
	assert.Equal(t, int64(5), stats.SizeMedian)
	assert.Equal(t, stats.ModifiedFirst, stats.ModifiedLast)
	assert.Equal(t, stats.ModifiedFirst, stats.ModifiedMedian)
}

func TestAggregate_UnparsableTimestampIsZero(t *testing.T) {
	files := []jimaku.File{
		{Size: 1, LastModified: "3 days ago"},
		{Size: 2, LastModified: "2024-01-01T00:00:00Z"},
	}

	stats, err := Aggregate(files)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.ModifiedFirst)
	assert.Equal(t, int64(1704067200), stats.ModifiedLast)
}

func TestAggregate_Empty(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want int64
	}{
		{"empty", nil, 0},
		{"one", []int64{7}, 7},
		{"odd", []int64{1, 5, 9}, 5},
		{"even truncates", []int64{1, 2}, 1},
		{"even", []int64{100, 200, 300, 400}, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.in))
		})
	}
}
