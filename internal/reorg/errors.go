package reorg

import "fmt"

// ReorgDetectedError is returned when stored blocks no longer match the chain and the
// indexed data was rewound.
type ReorgDetectedError struct {
	FirstReorgBlock uint64
	RewindTo        uint64
	BlocksDeleted   int64
	Details         string
}

func (e *ReorgDetectedError) Error() string {
	return fmt.Sprintf("reorg detected at block %d, rewound to block %d: %s",
		e.FirstReorgBlock, e.RewindTo, e.Details)
}

// NewReorgError creates a new ReorgDetectedError.
func NewReorgError(firstReorgBlock, rewindTo uint64, deleted int64, details string) error {
	return &ReorgDetectedError{
		FirstReorgBlock: firstReorgBlock,
		RewindTo:        rewindTo,
		BlocksDeleted:   deleted,
		Details:         details,
	}
}
