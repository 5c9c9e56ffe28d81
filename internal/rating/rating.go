package rating

import (
	"math"

	"libraryexplorer/internal/catalog"
)

// The catalog API does not supply ratings, so they are synthesized from the
// item key with the classic 31-multiplier string hash folded to a signed
// 32-bit integer. The same key always yields the same rating.

// Rating is a synthesized average and vote count.
type Rating struct {
	Average float64
	Count   int
}

// Synthesize derives a deterministic rating from an item key. The second
// return value is false when the key is empty, in which case no rating exists.
func Synthesize(key string) (Rating, bool) {
	if key == "" {
		return Rating{}, false
	}

	var h int32
	for _, c := range key {
		h = h*31 + int32(c)
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	// Average in [1.50, 4.90], count in [50, 1549].
	avg := float64(abs%35+15) / 10
	return Rating{
		Average: math.Round(avg*100) / 100,
		Count:   int(abs%1500) + 50,
	}, true
}

// Apply fills the book's rating fields in place.
func Apply(b *catalog.Book) {
	r, ok := Synthesize(b.Key)
	if !ok {
		return
	}
	b.AverageRating = &r.Average
	b.RatingsCount = &r.Count
}
