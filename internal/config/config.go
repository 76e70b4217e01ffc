// Package config provides configuration management for codepad using
// Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the CODEPAD_ prefix, and validation. It manages server
// settings, the source transformer invocation, the debounce quiet period,
// the pinned sandbox runtime versions, and editor behavior.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig  `yaml:"server"`
	Compile    CompileConfig `yaml:"compile"`
	Preview    PreviewConfig `yaml:"preview"`
	Editor     EditorConfig  `yaml:"editor"`
	TargetFile string        `yaml:"-"` // CLI argument, not from config file
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	Open           bool     `yaml:"open"`
	NoOpen         bool     `yaml:"no-open"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

type CompileConfig struct {
	// Command is the source transformer executable. It reads the raw
	// source on stdin and writes lowered code to stdout; diagnostics go
	// to stderr.
	Command string `yaml:"command"`
	// Args overrides the default argument set built from Presets and
	// Filename. Empty means use the defaults.
	Args []string `yaml:"args"`
	// Presets are the transformation presets: one for markup-in-code
	// syntax, one for syntax lowering.
	Presets []string `yaml:"presets"`
	// Filename is the virtual name the transformer reports in
	// diagnostics for the buffer contents.
	Filename string `yaml:"filename"`
	// DebounceMillis is the quiet period after the last edit before a
	// compile fires.
	DebounceMillis int `yaml:"debounce_ms"`
}

type PreviewConfig struct {
	ReactVersion string `yaml:"react_version"`
	BabelVersion string `yaml:"babel_version"`
}

type EditorConfig struct {
	Theme string `yaml:"theme"`
	// Diagnostics re-enables the editor widget's built-in static
	// analysis. Off by default: the widget's linter does not understand
	// the markup-in-code preset and flags valid input.
	Diagnostics bool `yaml:"diagnostics"`
}

// DefaultPresets are the fixed transformation presets: markup-in-code
// syntax plus lowering to baseline syntax.
var DefaultPresets = []string{"@babel/preset-react", "@babel/preset-env"}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 && !viper.IsSet("server.port") {
		config.Server.Port = 8080
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	if config.Compile.Command == "" {
		config.Compile.Command = "babel"
	}
	if len(config.Compile.Presets) == 0 {
		config.Compile.Presets = DefaultPresets
	}
	if config.Compile.Filename == "" {
		config.Compile.Filename = "playground.jsx"
	}
	if config.Compile.DebounceMillis == 0 && !viper.IsSet("compile.debounce_ms") {
		config.Compile.DebounceMillis = 1000
	}

	if config.Preview.ReactVersion == "" {
		config.Preview.ReactVersion = "18.3.1"
	}
	if config.Preview.BabelVersion == "" {
		config.Preview.BabelVersion = "7.26.4"
	}

	if config.Editor.Theme == "" {
		config.Editor.Theme = "vs-dark"
	}
	if viper.IsSet("editor.diagnostics") {
		config.Editor.Diagnostics = viper.GetBool("editor.diagnostics")
	}

	// Override no-open if explicitly set via flag
	if viper.IsSet("server.no-open") && viper.GetBool("server.no-open") {
		config.Server.Open = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateCompileConfig(&config.Compile); err != nil {
		return fmt.Errorf("compile config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateCompileConfig validates transformer configuration values
func validateCompileConfig(config *CompileConfig) error {
	if strings.TrimSpace(config.Command) == "" {
		return fmt.Errorf("transformer command must not be empty")
	}

	// The command is exec'd directly, never through a shell, but reject
	// obvious shell metacharacters to keep config files honest.
	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Command, char) {
			return fmt.Errorf("transformer command contains dangerous character: %s", char)
		}
	}

	if config.DebounceMillis < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}

	for _, preset := range config.Presets {
		if strings.TrimSpace(preset) == "" {
			return fmt.Errorf("empty transformation preset")
		}
	}

	return nil
}
