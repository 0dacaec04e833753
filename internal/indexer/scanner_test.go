package indexer

import (
	"testing"
	"time"

	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func testScannerConfig() config.IndexerConfig {
	return config.IndexerConfig{
		Confirmations:       2,
		BlockRange:          100,
		MinBlockRange:       1,
		BlockRangeIncrement: 20,
		BlockRangeDecrement: 20,
		QueryChunkSize:      10,
	}
}

func TestScanner_ComputeRange(t *testing.T) {
	tests := []struct {
		name       string
		rangeSize  uint64
		watermarks []uint64
		head       uint64
		want       Range
		ok         bool
	}{
		{
			name: "no watermarks",
			head: 1000,
		},
		{
			name:       "common minimum drives the range",
			rangeSize:  100,
			watermarks: []uint64{500, 300, 400},
			head:       1000,
			want:       Range{From: 301, To: 400, Size: 100, Full: true},
			ok:         true,
		},
		{
			name:       "capped by confirmations",
			rangeSize:  100,
			watermarks: []uint64{950},
			head:       1000,
			want:       Range{From: 951, To: 998, Updated: true, Size: 100},
			ok:         true,
		},
		{
			name:       "exactly one window to the safe head",
			rangeSize:  48,
			watermarks: []uint64{950},
			head:       1000,
			want:       Range{From: 951, To: 998, Updated: true, Size: 48, Full: true},
			ok:         true,
		},
		{
			name:       "within confirmations",
			rangeSize:  100,
			watermarks: []uint64{998},
			head:       1000,
		},
		{
			name:       "ahead of head",
			rangeSize:  100,
			watermarks: []uint64{1200},
			head:       1000,
		},
		{
			name:       "unbounded range",
			rangeSize:  0,
			watermarks: []uint64{10},
			head:       1000,
			want:       Range{From: 11, To: 998, Updated: true},
			ok:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testScannerConfig()
			cfg.BlockRange = tt.rangeSize
			s := NewScanner(cfg)

			got, ok := s.ComputeRange(tt.watermarks, tt.head)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, got)
				require.LessOrEqual(t, got.To, tt.head-cfg.Confirmations)
			}
		})
	}
}

func TestScanner_Observe(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		full     bool
		max      uint64
		want     uint64
	}{
		{name: "very slow halves", duration: 31 * time.Second, full: true, want: 50},
		{name: "slow decrements", duration: 15 * time.Second, full: true, want: 80},
		{name: "fast doubles", duration: 500 * time.Millisecond, full: true, want: 200},
		{name: "quick increments", duration: 2 * time.Second, full: true, want: 120},
		{name: "normal keeps", duration: 5 * time.Second, full: true, want: 100},
		{name: "partial window ignored", duration: 31 * time.Second, full: false, want: 100},
		{name: "capped by max", duration: 500 * time.Millisecond, full: true, max: 150, want: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testScannerConfig()
			cfg.MaxBlockRange = tt.max
			s := NewScanner(cfg)

			r := Range{From: 1, To: 100, Size: 100, Full: tt.full}
			s.Observe(r, tt.duration)
			require.Equal(t, tt.want, s.RangeSize())
		})
	}
}

func TestScanner_SlowScanHalvesNextRange(t *testing.T) {
	s := NewScanner(testScannerConfig())

	first, ok := s.ComputeRange([]uint64{0}, 10_000)
	require.True(t, ok)
	s.Observe(first, 40*time.Second)

	next, ok := s.ComputeRange([]uint64{first.To}, 10_000)
	require.True(t, ok)
	require.Equal(t, first.To+1, next.From)
	require.LessOrEqual(t, next.To-next.From+1, (first.To-first.From+1)/2)
}

func TestScanner_DecrementFloors(t *testing.T) {
	cfg := testScannerConfig()
	cfg.BlockRange = 10
	cfg.MinBlockRange = 5
	s := NewScanner(cfg)

	s.Observe(Range{Size: 10, Full: true}, 20*time.Second)
	require.Equal(t, uint64(5), s.RangeSize())

	s.Observe(Range{Size: 5, Full: true}, time.Minute)
	require.Equal(t, uint64(5), s.RangeSize())
}

func TestScanner_Reset(t *testing.T) {
	cfg := testScannerConfig()
	cfg.MinBlockRange = 3
	s := NewScanner(cfg)

	s.Reset()
	require.Equal(t, uint64(3), s.RangeSize())

	// a range computed before the reset does not feed the controller
	s.Observe(Range{Size: 100, Full: true}, time.Millisecond)
	require.Equal(t, uint64(3), s.RangeSize())
}
