package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/codepad-dev/codepad/internal/buffer"
	"github.com/codepad-dev/codepad/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [name]",
	Aliases: []string{"i"},
	Short:   "Scaffold a codepad configuration and starter snippet",
	Long: `Scaffold a .codepad.yml configuration file and a starter snippet. If no
name is provided, initializes in the current directory.

Examples:
  codepad init                  # Initialize in current directory
  codepad init my-sketch        # Initialize in new directory 'my-sketch'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	var projectDir string

	if len(args) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		projectDir = cwd
	} else {
		projectDir = args[0]
		if err := os.MkdirAll(projectDir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	cfg := config.Config{
		Server: config.ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Compile: config.CompileConfig{
			Command:        "babel",
			Presets:        config.DefaultPresets,
			Filename:       "playground.jsx",
			DebounceMillis: 1000,
		},
		Preview: config.PreviewConfig{
			ReactVersion: "18.3.1",
			BabelVersion: "7.26.4",
		},
		Editor: config.EditorConfig{
			Theme: "vs-dark",
		},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	configPath := filepath.Join(projectDir, ".codepad.yml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration already exists: %s", configPath)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	snippetPath := filepath.Join(projectDir, "sketch.jsx")
	if _, err := os.Stat(snippetPath); os.IsNotExist(err) {
		if err := os.WriteFile(snippetPath, []byte(buffer.StarterSource), 0644); err != nil {
			return fmt.Errorf("failed to write starter snippet: %w", err)
		}
	}

	displayName := filepath.Base(projectDir)
	displayName = cases.Title(language.English).String(strings.ReplaceAll(displayName, "-", " "))

	fmt.Printf("Initialized %s\n\n", displayName)
	fmt.Println("Next steps:")
	fmt.Println("  codepad serve               # Start the playground")
	fmt.Println("  codepad serve sketch.jsx    # Watch the starter snippet")

	return nil
}
