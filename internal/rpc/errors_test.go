package rpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockDataError struct {
	data any
	msg  string
}

func (m *mockDataError) Error() string {
	return m.msg
}

func (m *mockDataError) ErrorData() any {
	return m.data
}

type mockCodeError struct {
	code int
	msg  string
}

func (m *mockCodeError) Error() string  { return m.msg }
func (m *mockCodeError) ErrorCode() int { return m.code }

func TestIsTooManyResultsError(t *testing.T) {
	t.Parallel()

	const suggested = "Query returned more than 20000 results. Try with this block range [0x7dfd25, 0x7e0fcc]."
	const alchemy = "Log response size exceeded. You can make eth_getLogs requests with up to a 2K block range"

	matching := map[string]error{
		"data carries suggestion": &mockDataError{data: suggested, msg: "query failed"},
		"wrapped data error":      fmt.Errorf("eth_getLogs: %w", &mockDataError{data: suggested, msg: "query failed"}),
		"size exceeded":           errors.New(alchemy),
		"range too large":         errors.New("block range is too large"),
		"range too wide":          errors.New("Block range too wide"),
		"maximum range":           errors.New("exceed maximum block range: 5000"),
		"response too big":        errors.New("trace_filter: response is too big"),
	}
	for name, err := range matching {
		ok, msg := IsTooManyResultsError(err)
		require.True(t, ok, name)
		require.NotEmpty(t, msg, name)
	}

	// the ErrorData payload wins over the message when present
	_, msg := IsTooManyResultsError(&mockDataError{data: suggested, msg: "query failed"})
	require.Equal(t, suggested, msg)

	ok, msg := IsTooManyResultsError(nil)
	require.False(t, ok)
	require.Empty(t, msg)

	ok, msg = IsTooManyResultsError(&mockDataError{data: "Query returned less than 20000 results.", msg: "x"})
	require.False(t, ok)
	require.Equal(t, "Query returned less than 20000 results.", msg)

	ok, msg = IsTooManyResultsError(errors.New("execution reverted"))
	require.False(t, ok)
	require.Equal(t, "execution reverted", msg)
}

func TestParseSuggestedBlockRange(t *testing.T) {
	t.Parallel()

	type span struct{ from, to uint64 }
	valid := map[string]span{
		"Query returned more than 20000 results. Try with this block range [0x7dfd25, 0x7e0fcc].": {8256805, 8261580},
		"Try with this block range [0x1aBc,   0x2DEF].":                                           {6844, 11759},
		"Try with these ranges [0x10, 0x20] and [0x30, 0x40].":                                    {16, 32},
		"[0x5, 0x5]": {5, 5},
	}
	for msg, want := range valid {
		from, to, ok := ParseSuggestedBlockRange(msg)
		require.True(t, ok, msg)
		require.Equal(t, want, span{from, to}, msg)
	}

	for _, msg := range []string{
		"",
		"Query returned more than 20000 results.",
		"Try with this block range [0xZZZZ, 0x1234].",
		"Try with this block range [0x20, 0x10].",
		"Try with this block range [100, 200].",
	} {
		_, _, ok := ParseSuggestedBlockRange(msg)
		require.False(t, ok, msg)
	}
}

func TestIsMethodNotFound(t *testing.T) {
	t.Parallel()

	require.False(t, IsMethodNotFound(nil))
	require.False(t, IsMethodNotFound(errors.New("execution reverted")))
	require.True(t, IsMethodNotFound(&mockCodeError{code: -32601, msg: "whatever"}))
	require.True(t, IsMethodNotFound(errors.New("the method trace_filter does not exist/is not available: Method not found")))
}
