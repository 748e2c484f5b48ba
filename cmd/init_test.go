package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmOverwrite(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" y ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		got, err := confirmOverwrite(strings.NewReader(tc.input), &out, "stylus-replay.json")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Contains(t, out.String(), "stylus-replay.json already exists")
	}
}

func TestInitOutputPath(t *testing.T) {
	cmd := &cobra.Command{Use: "init"}
	cmd.Flags().String("out", "", "")

	path, err := initOutputPath(cmd)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, DefaultProjectConfigFilename, filepath.Base(path))

	out := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, cmd.Flags().Set("out", out))
	path, err = initOutputPath(cmd)
	require.NoError(t, err)
	assert.Equal(t, out, path)
}
