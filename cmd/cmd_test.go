package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/codepad-dev/codepad/internal/config"
)

func TestInitCommand(t *testing.T) {
	tempDir := t.TempDir()

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	require.NoError(t, os.Chdir(tempDir))

	err = runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	assert.FileExists(t, ".codepad.yml")
	assert.FileExists(t, "sketch.jsx")

	// The scaffolded config round-trips through the config types.
	data, err := os.ReadFile(".codepad.yml")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "babel", cfg.Compile.Command)
	assert.Equal(t, config.DefaultPresets, cfg.Compile.Presets)
	assert.Equal(t, 1000, cfg.Compile.DebounceMillis)

	snippet, err := os.ReadFile("sketch.jsx")
	require.NoError(t, err)
	assert.Contains(t, string(snippet), "function App()")
}

func TestInitCommandWithProjectName(t *testing.T) {
	tempDir := t.TempDir()

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	require.NoError(t, os.Chdir(tempDir))

	err = runInit(&cobra.Command{}, []string{"my-sketch"})
	require.NoError(t, err)

	assert.DirExists(t, "my-sketch")
	assert.FileExists(t, filepath.Join("my-sketch", ".codepad.yml"))
	assert.FileExists(t, filepath.Join("my-sketch", "sketch.jsx"))
}

func TestInitCommandRefusesExistingConfig(t *testing.T) {
	tempDir := t.TempDir()

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	require.NoError(t, os.Chdir(tempDir))

	require.NoError(t, os.WriteFile(".codepad.yml", []byte("server:\n  port: 9000\n"), 0o644))

	err = runInit(&cobra.Command{}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Existing config untouched.
	data, err := os.ReadFile(".codepad.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "9000")
}

func TestInitCommandKeepsExistingSnippet(t *testing.T) {
	tempDir := t.TempDir()

	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	require.NoError(t, os.Chdir(tempDir))

	require.NoError(t, os.WriteFile("sketch.jsx", []byte("// mine"), 0o644))

	err = runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	data, err := os.ReadFile("sketch.jsx")
	require.NoError(t, err)
	assert.Equal(t, "// mine", string(data))
}

func TestRootCommandStructure(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[strings.Fields(sub.Use)[0]] = true
	}

	for _, want := range []string{"serve", "compile", "init", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestServeCommandAliases(t *testing.T) {
	assert.Contains(t, serveCmd.Aliases, "s")
	assert.Contains(t, initCmd.Aliases, "i")
	assert.Contains(t, compileCmd.Aliases, "c")
}
