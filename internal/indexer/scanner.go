package indexer

import (
	"sync"
	"time"

	"github.com/goran-ethernal/SafeIndexor/pkg/config"
)

const (
	slowScan     = 30 * time.Second
	moderateScan = 10 * time.Second
	fastScan     = time.Second
	quickScan    = 3 * time.Second
)

// Range is a block range to scan, bounds included.
type Range struct {
	From uint64
	To   uint64

	// Updated is set when To is the highest block allowed by the confirmation depth.
	Updated bool

	// Size is the range size the range was computed with and Full tells whether the range
	// spans all of it. Only full ranges feed the size controller.
	Size uint64
	Full bool
}

// Scanner computes the next block range of an address group and adapts the range size to
// how long scans take.
type Scanner struct {
	mu sync.Mutex

	confirmations uint64
	rangeSize     uint64
	minRangeSize  uint64
	maxRangeSize  uint64
	increment     uint64
	decrement     uint64
}

// NewScanner creates a scanner from the scan settings of an indexer.
func NewScanner(cfg config.IndexerConfig) *Scanner {
	minRange := max(cfg.MinBlockRange, 1)

	return &Scanner{
		confirmations: cfg.Confirmations,
		rangeSize:     cfg.BlockRange,
		minRangeSize:  minRange,
		maxRangeSize:  cfg.MaxBlockRange,
		increment:     cfg.BlockRangeIncrement,
		decrement:     cfg.BlockRangeDecrement,
	}
}

// RangeSize returns the current range size. Zero means "up to the head".
func (s *Scanner) RangeSize() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeSize
}

// ComputeRange returns the next range for a group of addresses given their watermarks.
// It returns false when there is nothing to scan: no watermarks or the group is within the
// confirmation depth of the head.
func (s *Scanner) ComputeRange(watermarks []uint64, head uint64) (Range, bool) {
	if len(watermarks) == 0 {
		return Range{}, false
	}

	commonMin := watermarks[0]
	for _, w := range watermarks[1:] {
		commonMin = min(commonMin, w)
	}

	if head < commonMin || head-commonMin <= s.confirmations {
		return Range{}, false
	}

	s.mu.Lock()
	size := s.rangeSize
	s.mu.Unlock()

	safeHead := head - s.confirmations
	to := safeHead
	full := size > 0 && commonMin+size <= safeHead
	if full {
		to = commonMin + size
	}

	return Range{
		From:    commonMin + 1,
		To:      to,
		Updated: to == safeHead,
		Size:    size,
		Full:    full,
	}, true
}

// Observe feeds the duration of a successful scan to the size controller.
// Ranges that did not span a whole window of the current size are ignored.
func (s *Scanner) Observe(r Range, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !r.Full || r.Size == 0 || r.Size != s.rangeSize {
		return
	}

	switch {
	case d > slowScan:
		s.rangeSize = max(s.rangeSize/2, s.minRangeSize) //nolint:mnd
	case d > moderateScan:
		if s.rangeSize > s.decrement {
			s.rangeSize = max(s.rangeSize-s.decrement, s.minRangeSize)
		} else {
			s.rangeSize = s.minRangeSize
		}
	case d < fastScan:
		s.rangeSize *= 2
	case d < quickScan:
		s.rangeSize += s.increment
	}

	if s.maxRangeSize > 0 && s.rangeSize > s.maxRangeSize {
		s.rangeSize = s.maxRangeSize
	}
}

// Reset drops the range size to its floor after a failed scan.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeSize = s.minRangeSize
}
