package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codepad-dev/codepad/internal/config"
	"github.com/codepad-dev/codepad/internal/logging"
	"github.com/codepad-dev/codepad/internal/server"
	"github.com/codepad-dev/codepad/internal/transform"
)

var serveCmd = &cobra.Command{
	Use:     "serve [file.jsx]",
	Aliases: []string{"s"},
	Short:   "Start the playground server",
	Long: `Start the playground server. The editor pane in the browser feeds the
source buffer; every pause in typing triggers a compile and the preview
pane is replaced with the result.

With a file argument, the buffer is seeded from that file and kept in
sync as it changes on disk, so the playground can be driven from an
external editor.

Examples:
  codepad serve                    # Serve the starter snippet
  codepad serve sketch.jsx         # Serve and watch a source file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-open", false, "Don't open browser automatically")
	serveCmd.Flags().Int("debounce", 1000, "Quiet period in milliseconds before a compile fires")
	serveCmd.Flags().String("transformer", "babel", "Source transformer command")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.no-open", serveCmd.Flags().Lookup("no-open"))
	viper.BindPFlag("compile.debounce_ms", serveCmd.Flags().Lookup("debounce"))
	viper.BindPFlag("compile.command", serveCmd.Flags().Lookup("transformer"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(args) > 0 {
		cfg.TargetFile = args[0]
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: "text",
		Output: os.Stderr,
	})

	engine, err := transform.NewExecEngine(transform.Options{
		Command:  cfg.Compile.Command,
		Args:     cfg.Compile.Args,
		Presets:  cfg.Compile.Presets,
		Filename: cfg.Compile.Filename,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, engine, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			logger.Warn(ctx, shutdownErr, "error during server shutdown")
		}
		cancel()
	}()

	if cfg.TargetFile != "" {
		fmt.Printf("Starting codepad for %s at http://%s:%d\n", cfg.TargetFile, cfg.Server.Host, cfg.Server.Port)
	} else {
		fmt.Printf("Starting codepad at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
