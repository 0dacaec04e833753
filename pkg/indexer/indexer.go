// Package indexer defines the public contract of the pipeline scan loops.
package indexer

import "context"

// Indexer is one scan loop of the pipeline. Every invocation advances the watermarks of the
// monitored addresses it selects and stores the elements found on the way.
type Indexer interface {
	// Name identifies the indexer in logs, metrics and task names.
	Name() string

	// Start runs one invocation and returns the number of newly stored elements.
	// A failure of one address group does not stop the others; their errors are joined.
	Start(ctx context.Context) (int, error)
}
