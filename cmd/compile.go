package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codepad-dev/codepad/internal/config"
	"github.com/codepad-dev/codepad/internal/errors"
	"github.com/codepad-dev/codepad/internal/preview"
	"github.com/codepad-dev/codepad/internal/transform"
)

var compileOut string

var compileCmd = &cobra.Command{
	Use:     "compile [file.jsx]",
	Aliases: []string{"c"},
	Short:   "One-shot compile to an output document",
	Long: `Run a single compile cycle without starting a server: read source from
the given file (or stdin), transform it, and write the resulting
output document to stdout.

A failed transform still produces a valid document: the error-shaped
page that the preview pane would show. The process exits non-zero in
that case so scripts can tell the outcomes apart.

Examples:
  codepad compile sketch.jsx            # Compile a file
  cat sketch.jsx | codepad compile      # Compile stdin
  codepad compile sketch.jsx -o out.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "Write the document to a file instead of stdout")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var source string
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading source file: %w", err)
		}
		source = string(data)
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		source = string(data)
	}

	engine, err := transform.NewExecEngine(transform.Options{
		Command:  cfg.Compile.Command,
		Args:     cfg.Compile.Args,
		Presets:  cfg.Compile.Presets,
		Filename: cfg.Compile.Filename,
	})
	if err != nil {
		return err
	}

	renderer := preview.NewSandboxRenderer(cfg.Preview)
	presenter := preview.NewErrorPresenter()

	var html string
	var failed bool

	code, err := engine.Transform(context.Background(), source)
	if err != nil {
		cerr := errors.Narrow(err)
		fmt.Fprintf(cmd.ErrOrStderr(), "compile failed: %s\n", cerr.Message)
		html = presenter.Present(cerr)
		failed = true
	} else {
		html = renderer.Render(code)
	}

	if compileOut != "" {
		if err := os.WriteFile(compileOut, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing output document: %w", err)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), html)
	}

	if failed {
		os.Exit(1)
	}

	return nil
}
