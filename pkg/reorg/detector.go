package reorg

import "context"

// Detector verifies stored blocks against the chain and rewinds indexed data after a reorg.
type Detector interface {
	// Check verifies stored blocks and confirms the ones deep enough. A detected reorg is
	// recovered from and reported as an error.
	Check(ctx context.Context) error

	// Recover rewinds the indexed data to before firstReorgBlock.
	Recover(ctx context.Context, firstReorgBlock uint64, details string) error

	// OnReorg registers a hook called after every rewind.
	OnReorg(hook func(firstReorgBlock uint64))
}
