package errors

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// CompileErrorKind classifies a failed compile attempt.
type CompileErrorKind int

const (
	CompileErrorUnknown CompileErrorKind = iota
	CompileErrorSyntax
	CompileErrorReference
)

// String returns the string representation of the kind.
func (k CompileErrorKind) String() string {
	switch k {
	case CompileErrorSyntax:
		return "syntax"
	case CompileErrorReference:
		return "reference"
	default:
		return "unknown"
	}
}

// CompileError is the one concrete error shape the compile pipeline
// handles. Every transform failure is narrowed into it at the engine
// boundary; downstream code never inspects raw errors.
type CompileError struct {
	Kind    CompileErrorKind
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return e.Message
}

// fallbackMessage is used when a failure carries no usable message.
const fallbackMessage = "compilation failed"

// compilerLine matches the first line of transformer diagnostics, e.g.
//
//	SyntaxError: /playground.jsx: Unexpected token (3:14)
//	ReferenceError: App is not defined
var compilerLine = regexp.MustCompile(`(SyntaxError|ReferenceError|TypeError|Error):\s*(.+)`)

// position matches a trailing "(line:column)" location marker.
var position = regexp.MustCompile(`\((\d+):(\d+)\)\s*$`)

// ParseCompilerOutput extracts a CompileError from transformer diagnostics.
// The transformer writes its errors to stderr in a single human-readable
// block; only the classifying first line and the location marker are
// structured, the rest is carried verbatim as the message.
func ParseCompilerOutput(output string) *CompileError {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matches := compilerLine.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		ce := &CompileError{
			Kind:    classifyCompileError(matches[1]),
			Message: matches[1] + ": " + matches[2],
		}

		if pos := position.FindStringSubmatch(matches[2]); pos != nil {
			ce.Line, _ = strconv.Atoi(pos[1])
			ce.Column, _ = strconv.Atoi(pos[2])
		}

		return ce
	}

	output = strings.TrimSpace(output)
	if output == "" {
		output = fallbackMessage
	}

	return &CompileError{
		Kind:    CompileErrorUnknown,
		Message: output,
	}
}

func classifyCompileError(class string) CompileErrorKind {
	switch class {
	case "SyntaxError":
		return CompileErrorSyntax
	case "ReferenceError":
		return CompileErrorReference
	default:
		return CompileErrorUnknown
	}
}

// Narrow converts any error raised during a compile attempt into a
// CompileError, falling back to a generic message when the error carries
// no recognized shape. It is the only place in the system that performs
// this narrowing.
func Narrow(err error) *CompileError {
	if err == nil {
		return nil
	}

	var ce *CompileError
	if errors.As(err, &ce) {
		return ce
	}

	msg := err.Error()
	if msg == "" {
		msg = fallbackMessage
	}

	return &CompileError{
		Kind:    CompileErrorUnknown,
		Message: msg,
	}
}
