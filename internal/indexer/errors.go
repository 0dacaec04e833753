package indexer

import (
	"fmt"
)

// FindRelevantElementsError reports a failed element search. The scanner range size has been
// reset when the orchestrator returns it; the range is retried on the next run.
type FindRelevantElementsError struct {
	Indexer   string
	FromBlock uint64
	ToBlock   uint64
	Addresses int
	Err       error
}

func (e *FindRelevantElementsError) Error() string {
	return fmt.Sprintf("%s: failed to find elements of %d addresses in blocks %d-%d: %v",
		e.Indexer, e.Addresses, e.FromBlock, e.ToBlock, e.Err)
}

func (e *FindRelevantElementsError) Unwrap() error {
	return e.Err
}
