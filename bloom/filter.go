// Package bloom provides a probabilistic seen-set for frontier URLs.
// The filter is suitable only where a false positive is harmless, such as
// tallying distinct URLs: a miss proves the URL was never marked, a hit
// means "probably marked". It must never gate dedup on its own, since a
// false positive there would drop a genuinely new URL.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// SeenSet tracks URLs observed by this process.
type SeenSet struct {
	f *bloom.BloomFilter
}

// NewSeenSet creates a filter sized for n expected URLs with the given
// false positive rate.
func NewSeenSet(n uint, fpRate float64) *SeenSet {
	return &SeenSet{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Mark records a URL as seen.
func (s *SeenSet) Mark(url string) {
	s.f.AddString(url)
}

// Seen returns true if the URL might have been marked.
// False positives are possible; false negatives are not.
func (s *SeenSet) Seen(url string) bool {
	return s.f.TestString(url)
}

// EstimatedCount returns the approximate number of marked URLs.
func (s *SeenSet) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
