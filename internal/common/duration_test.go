package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "250ms", expected: 250 * time.Millisecond},
		{input: "30s", expected: 30 * time.Second},
		{input: "1h30m", expected: 90 * time.Minute},
		{input: "soon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDuration_ConfigFormats(t *testing.T) {
	type section struct {
		Interval Duration `json:"interval" yaml:"interval"`
	}

	var fromJSON section
	require.NoError(t, json.Unmarshal([]byte(`{"interval":"15s"}`), &fromJSON))
	require.Equal(t, 15*time.Second, fromJSON.Interval.Duration)

	var fromYAML section
	require.NoError(t, yaml.Unmarshal([]byte("interval: 2m\n"), &fromYAML))
	require.Equal(t, 2*time.Minute, fromYAML.Interval.Duration)

	out, err := json.Marshal(section{Interval: NewDuration(time.Minute)})
	require.NoError(t, err)
	require.JSONEq(t, `{"interval":"1m0s"}`, string(out))
}

func TestDuration_JSONSchema(t *testing.T) {
	schema := Duration{}.JSONSchema()

	require.Equal(t, "string", schema.Type)
	require.Equal(t, "Duration", schema.Title)
	require.Contains(t, schema.Examples, "1m")
}
