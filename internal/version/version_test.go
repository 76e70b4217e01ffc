package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	require.NotNil(t, info)

	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestGetVersionLdflagsOverride(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	assert.Equal(t, "1.2.3", GetVersion())
}

func TestGetGitCommitLdflagsOverride(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = "abcdef1234567890"
	assert.Equal(t, "abcdef1234567890", GetGitCommit())
}

func TestGetShortVersion(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() {
		Version, GitCommit = origVersion, origCommit
	}()

	Version = "1.2.3"
	GitCommit = "abcdef1234567890"

	short := GetShortVersion()
	assert.True(t, strings.HasPrefix(short, "1.2.3"))
	assert.Contains(t, short, "abcdef1")
	assert.NotContains(t, short, "abcdef12", "commit is truncated to seven characters")
}

func TestGetShortVersionUnknownCommit(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() {
		Version, GitCommit = origVersion, origCommit
	}()

	Version = "1.2.3"
	GitCommit = "unknown"

	// The commit may still be recovered from embedded build info, so
	// only the version prefix is fixed.
	assert.True(t, strings.HasPrefix(GetShortVersion(), "1.2.3"))
}
