package common

import (
	"strconv"
	"strings"
)

// ParseBlockNumber parses a block number given either in decimal or as 0x prefixed hex,
// the two forms nodes use in error messages.
func ParseBlockNumber(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(hex, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// ToLowerWithTrim normalizes a config key such as a log level or component name.
func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SaturatingSub returns a-b, or 0 when b is larger than a.
func SaturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
