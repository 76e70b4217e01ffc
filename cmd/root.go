// Package cmd provides the command-line interface for codepad.
//
// Configuration sources, in precedence order: command-line flags,
// CODEPAD_ environment variables (CODEPAD_SERVER_PORT and friends,
// following the CODEPAD_<SECTION>_<OPTION> pattern), and the
// .codepad.yml configuration file in the current directory.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codepad",
	Short: "A live compile-preview playground for component code",
	Long: `Codepad is a live playground for component-style source code: type into
the editor pane and the result renders in an isolated preview pane,
re-compiling after every pause in typing.

Key Features:
  • Debounced edit-to-render loop with a manual compile trigger
  • Sandboxed preview documents (script execution only, no same-origin)
  • Compile errors rendered in the preview pane, never a blank frame
  • Optional watch mode driving the buffer from a file on disk

Quick Start:
  codepad init                    Scaffold config and a starter snippet
  codepad serve                   Start the playground server
  codepad serve sketch.jsx        Serve and watch a source file
  codepad compile sketch.jsx      One-shot compile to stdout`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .codepad.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CODEPAD_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".codepad")
	}

	viper.SetEnvPrefix("CODEPAD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files degrade to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
