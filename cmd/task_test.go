package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotosm/scaleodm-go/client"
)

func TestParseOptions_Default(t *testing.T) {
	options, err := parseOptions(nil)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "fast-orthophoto", options[0].Name)
	assert.Equal(t, true, options[0].Value)
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		raw  string
		want client.TaskOption
	}{
		{raw: "fast-orthophoto", want: client.TaskOption{Name: "fast-orthophoto", Value: true}},
		{raw: "dsm=true", want: client.TaskOption{Name: "dsm", Value: true}},
		{raw: "pc-quality=high", want: client.TaskOption{Name: "pc-quality", Value: "high"}},
		{raw: "min-num-features=8000", want: client.TaskOption{Name: "min-num-features", Value: int64(8000)}},
		{raw: "orthophoto-resolution=2.5", want: client.TaskOption{Name: "orthophoto-resolution", Value: 2.5}},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			options, err := parseOptions([]string{tc.raw})
			require.NoError(t, err)
			require.Len(t, options, 1)
			assert.Equal(t, tc.want, options[0])
		})
	}
}

func TestParseOptions_Invalid(t *testing.T) {
	_, err := parseOptions([]string{"=value"})
	require.Error(t, err)
}
