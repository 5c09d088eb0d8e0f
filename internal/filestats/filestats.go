// Package filestats reduces an entry's file list to summary statistics.
package filestats

import (
	"errors"
	"slices"
	"time"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

// ErrNoFiles is returned when Aggregate is given an empty list.
var ErrNoFiles = errors.New("no files to aggregate")

// Stats summarizes the files of one entry. Timestamps are epoch seconds.
type Stats struct {
	ModifiedFirst  int64
	ModifiedLast   int64
	ModifiedMedian int64
	SizeMin        int64
	SizeMax        int64
	SizeMedian     int64
}

// Aggregate computes Stats over files. Timestamps that are not RFC3339 count as 0.
// Timestamps and sizes are sorted independently.
func Aggregate(files []jimaku.File) (Stats, error) {
	if len(files) == 0 {
		return Stats{}, ErrNoFiles
	}

	times := make([]int64, len(files))
	sizes := make([]int64, len(files))
	for i, f := range files {
		times[i] = ParseTimestamp(f.LastModified)
		sizes[i] = f.Size
	}
	slices.Sort(times)
	slices.Sort(sizes)

	return Stats{
		ModifiedFirst:  times[0],
		ModifiedLast:   times[len(times)-1],
		ModifiedMedian: Median(times),
		SizeMin:        sizes[0],
		SizeMax:        sizes[len(sizes)-1],
		SizeMedian:     Median(sizes),
	}, nil
}

// ParseTimestamp converts an RFC3339 string to epoch seconds, or 0 when it does not parse.
func ParseTimestamp(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// Median returns the middle element of a sorted slice, or the truncated mean of
// the two middle elements for an even length. An empty slice yields 0.
func Median(sorted []int64) int64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		a, b := sorted[n/2-1], sorted[n/2]
		return a + (b-a)/2
	}
}
