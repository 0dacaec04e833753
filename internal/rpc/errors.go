package rpc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/SafeIndexor/internal/common"
)

var (
	// tooManyResultsMarkers match the messages providers return when a log or trace
	// query covers too much data.
	tooManyResultsMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)query returned more than \d+ results`),
		regexp.MustCompile(`(?i)log response size exceeded`),
		regexp.MustCompile(`(?i)block range (is )?too (large|wide)`),
		regexp.MustCompile(`(?i)exceed(s|ed)? (the )?maximum block range`),
		regexp.MustCompile(`(?i)response is too big`),
	}

	suggestedRangeRe = regexp.MustCompile(`\[(0x[0-9a-fA-F]+),\s*(0x[0-9a-fA-F]+)\]`)
)

// IsTooManyResultsError reports whether the node rejected a query because its result
// would be too large. The second value is the message that matched, which may carry
// a suggested block range.
func IsTooManyResultsError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	candidates := []string{err.Error()}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		candidates = append([]string{fmt.Sprintf("%v", dataErr.ErrorData())}, candidates...)
	}

	for _, msg := range candidates {
		for _, re := range tooManyResultsMarkers {
			if re.MatchString(msg) {
				return true, msg
			}
		}
	}

	return false, candidates[0]
}

// ParseSuggestedBlockRange extracts the block range a provider suggests retrying with,
// e.g. "Try with this block range [0x7dfd25, 0x7e0fcc]."
func ParseSuggestedBlockRange(msg string) (fromBlock, toBlock uint64, ok bool) {
	if msg == "" {
		return 0, 0, false
	}

	matches := suggestedRangeRe.FindStringSubmatch(msg)
	if len(matches) != 3 { //nolint:mnd
		return 0, 0, false
	}

	from, err1 := common.ParseBlockNumber(matches[1])
	to, err2 := common.ParseBlockNumber(matches[2])
	if err1 != nil || err2 != nil || from > to {
		return 0, 0, false
	}

	return from, to, true
}

// IsMethodNotFound reports whether the node does not support the called method,
// e.g. a node without the trace namespace.
func IsMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == -32601 { //nolint:mnd
		return true
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "method not found")
}
