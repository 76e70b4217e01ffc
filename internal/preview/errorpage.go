package preview

import (
	"html"
	"strings"
	"text/template"

	"github.com/codepad-dev/codepad/internal/errors"
)

// errorTemplate is the error-shaped document: the compile failure as
// preformatted text, visually distinct from a normal render, with no
// runtime bootstrap included.
var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>codepad compile error</title>
    <style>
        body { font-family: monospace; margin: 20px; background-color: #1e1e1e; color: #ffffff; }
        .compile-error { margin: 20px 0; padding: 15px; border-left: 4px solid #ff4444; background-color: #2d2d2d; }
        .error-header { font-weight: bold; font-size: 1.1em; margin-bottom: 10px; color: #ff4444; }
        .error-message { white-space: pre-wrap; margin: 0; }
    </style>
</head>
<body>
    <div class="compile-error">
        <div class="error-header">Error: {{.Kind}}</div>
        <pre class="error-message">{{.Message}}</pre>
    </div>
</body>
</html>
`))

// ErrorPresenter converts compile failures into error-shaped documents
// so the preview pane always shows something renderable after a failed
// compile, never a blank or stale frame.
type ErrorPresenter struct{}

// NewErrorPresenter creates an error presenter.
func NewErrorPresenter() *ErrorPresenter {
	return &ErrorPresenter{}
}

// Present builds an error-shaped document for the given failure. A nil
// failure still yields a valid document with a generic message.
func (p *ErrorPresenter) Present(cerr *errors.CompileError) string {
	if cerr == nil {
		cerr = &errors.CompileError{
			Kind:    errors.CompileErrorUnknown,
			Message: "compilation failed",
		}
	}

	var buf strings.Builder

	data := struct {
		Kind    string
		Message string
	}{
		Kind:    cerr.Kind.String(),
		Message: html.EscapeString(cerr.Message),
	}

	_ = errorTemplate.Execute(&buf, data)

	return buf.String()
}
