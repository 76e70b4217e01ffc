package preview

import (
	"strings"
	"text/template"

	"github.com/codepad-dev/codepad/internal/config"
)

// MountID is the container element the runtime bootstrap mounts into.
const MountID = "root"

// EntryPoint is the conventionally-named component the author's code is
// expected to define: a zero-argument callable returning a renderable
// tree.
const EntryPoint = "App"

// sandboxTemplate is the render-shaped document. It loads the pinned UI
// runtime and its DOM binding, plus a client-side copy of the
// transformer: the embedded script re-declares its entry point using
// markup syntax, so it is lowered again inside the sandbox through the
// text/babel script type rather than pre-lowered a second time here.
var sandboxTemplate = template.Must(template.New("sandbox").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>codepad preview</title>
    <script crossorigin src="https://unpkg.com/react@{{.ReactVersion}}/umd/react.development.js"></script>
    <script crossorigin src="https://unpkg.com/react-dom@{{.ReactVersion}}/umd/react-dom.development.js"></script>
    <script src="https://unpkg.com/@babel/standalone@{{.BabelVersion}}/babel.min.js"></script>
    <style>
        body { font-family: sans-serif; margin: 16px; }
    </style>
</head>
<body>
    <div id="{{.MountID}}"></div>
    <script type="text/babel">
{{.Code}}
ReactDOM.createRoot(document.getElementById('{{.MountID}}')).render(React.createElement({{.EntryPoint}}));
    </script>
</body>
</html>
`))

// SandboxRenderer builds render-shaped documents for the isolated
// preview frame. The frame runs with scripts allowed and nothing else:
// no same-origin access, no storage, no top-level navigation. That
// isolation is the system's sole security control, so documents are
// built to require only script execution.
type SandboxRenderer struct {
	reactVersion string
	babelVersion string
}

// NewSandboxRenderer creates a renderer pinned to the configured
// runtime versions.
func NewSandboxRenderer(cfg config.PreviewConfig) *SandboxRenderer {
	return &SandboxRenderer{
		reactVersion: cfg.ReactVersion,
		babelVersion: cfg.BabelVersion,
	}
}

// Render builds a complete document embedding the transformed code and
// the runtime bootstrap. Empty code yields a valid empty-output
// document.
func (r *SandboxRenderer) Render(code string) string {
	var buf strings.Builder

	data := struct {
		ReactVersion string
		BabelVersion string
		MountID      string
		EntryPoint   string
		Code         string
	}{
		ReactVersion: r.reactVersion,
		BabelVersion: r.babelVersion,
		MountID:      MountID,
		EntryPoint:   EntryPoint,
		Code:         escapeScriptBody(code),
	}

	// The template is parsed at init; execution into a Builder cannot fail.
	_ = sandboxTemplate.Execute(&buf, data)

	return buf.String()
}

// escapeScriptBody keeps an embedded closing script tag from
// terminating the surrounding script element.
func escapeScriptBody(code string) string {
	return strings.ReplaceAll(code, "</script", "<\\/script")
}
