package configpaths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padlight/internal/configpaths"
)

func TestDefaultConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG is unix only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := configpaths.DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "padlight"), dir)

	p, err := configpaths.DefaultNamedConfigPath("run", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "padlight", "run.yaml"), p)
}

func TestCandidatePathsUserFirst(t *testing.T) {
	tests := []struct {
		user string
		pick func(j, y, tm []string) []string
	}{
		{user: "my.json", pick: func(j, _, _ []string) []string { return j }},
		{user: "my.yml", pick: func(_, y, _ []string) []string { return y }},
		{user: "my.toml", pick: func(_, _, tm []string) []string { return tm }},
		{user: "my.conf", pick: func(j, _, _ []string) []string { return j }},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			j, y, tm := configpaths.ConfigCandidatePaths(tt.user)
			assert.Equal(t, tt.user, tt.pick(j, y, tm)[0])
		})
	}

	j, _, _ := configpaths.ConfigCandidatePaths("")
	if runtime.GOOS != "windows" {
		assert.Contains(t, j, filepath.Join(configpaths.SystemDir, "padlight.json"))
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "run.toml")
	require.NoError(t, configpaths.EnsureDir(path))
	assert.DirExists(t, filepath.Dir(path))
}
