package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info{Version: "0.3.0", GoVersion: "go1.23.3"}
	assert.Equal(t, "0.3.0", info.Short())
	assert.Equal(t, "stylus-replay version 0.3.0\n  Go version: go1.23.3\n", info.String())

	info.applySettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "1a2b3c4d5e6f"},
		{Key: "vcs.time", Value: "2025-04-23T14:10:23Z"},
		{Key: "vcs.modified", Value: "true"},
	})
	assert.Equal(t, "0.3.0+1a2b3c4-dirty", info.Short())
	assert.Contains(t, info.String(), "Commit:     1a2b3c4-dirty")
	assert.Contains(t, info.String(), "Built:      2025-04-23 14:10:23 UTC")
}

// TestApplySettingsKeepsExplicitCommit checks that a commit set at link time is not replaced.
func TestApplySettingsKeepsExplicitCommit(t *testing.T) {
	info := Info{Version: "0.3.0", Commit: "abcdef0"}
	info.applySettings([]debug.BuildSetting{{Key: "vcs.revision", Value: "1a2b3c4d5e6f"}})
	assert.Equal(t, "0.3.0+abcdef0", info.Short())
}
