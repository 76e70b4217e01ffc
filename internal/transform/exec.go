package transform

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/codepad-dev/codepad/internal/errors"
)

// Options configures the external transformer invocation.
type Options struct {
	// Command is the transformer executable, resolved via PATH.
	Command string
	// Args overrides the default argument set. Empty means build the
	// defaults from Presets and Filename.
	Args []string
	// Presets passed to the transformer: markup-in-code syntax plus
	// lowering to baseline syntax.
	Presets []string
	// Filename is the virtual file name reported in diagnostics.
	Filename string
}

// ExecEngine runs an external transformer command, feeding the source
// on stdin and reading lowered code from stdout. Diagnostics arrive on
// stderr and are parsed into a CompileError.
type ExecEngine struct {
	command string
	args    []string
}

// NewExecEngine resolves the transformer command and prepares the
// argument list. A missing command is reported with install guidance.
func NewExecEngine(opts Options) (*ExecEngine, error) {
	if _, err := exec.LookPath(opts.Command); err != nil {
		return nil, errors.NewConfigError(
			errors.ErrCodeCommandNotFound,
			fmt.Sprintf("transformer command %q not found in PATH; install it with: npm install -g @babel/cli @babel/core @babel/preset-react @babel/preset-env", opts.Command),
		)
	}

	args := opts.Args
	if len(args) == 0 {
		args = defaultArgs(opts)
	}

	return &ExecEngine{
		command: opts.Command,
		args:    args,
	}, nil
}

func defaultArgs(opts Options) []string {
	args := []string{"--no-babelrc"}
	if len(opts.Presets) > 0 {
		args = append(args, "--presets="+strings.Join(opts.Presets, ","))
	}
	if opts.Filename != "" {
		args = append(args, "--filename", opts.Filename)
	}
	return args
}

// Transform runs the transformer on the given source. The transform is
// pure per call: identical input yields identical output, and no state
// is carried between calls.
func (e *ExecEngine) Transform(ctx context.Context, source string) (string, error) {
	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.ParseCompilerOutput(stderr.String())
	}

	return stdout.String(), nil
}
