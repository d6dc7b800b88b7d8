package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoString(t *testing.T) {
	i := Info{Version: "v1.2.3", CommitHash: "abcdef0123", BuildTime: "today"}
	assert.Equal(t, "recordgen v1.2.3 (commit abcdef0123, built today)", i.String())
	assert.Equal(t, "abcdef0", i.Short())

	dev := Info{Version: "dev", CommitHash: "dev", BuildTime: "unknown"}
	assert.Equal(t, "recordgen dev (commit dev, built unknown)", dev.String())
	assert.Equal(t, "dev", dev.Short())
}

func TestSemver(t *testing.T) {
	assert.Nil(t, Info{Version: "dev"}.Semver())
	assert.Nil(t, Info{Version: "not-a-version"}.Semver())

	v := Info{Version: "v0.4.1"}.Semver()
	require.NotNil(t, v)
	assert.Equal(t, uint64(4), v.Minor())
}

func TestGet(t *testing.T) {
	i := Get()
	assert.NotEmpty(t, i.GoVersion)
	assert.Contains(t, i.Platform, "/")
}
