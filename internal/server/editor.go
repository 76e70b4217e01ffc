package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// monacoVersion pins the editor widget loaded from the CDN.
const monacoVersion = "0.52.0"

// editorPage is the playground UI: the editor widget on the left, the
// sandboxed preview frame on the right. The preview iframe runs with
// scripts allowed and nothing else; allow-same-origin is never added
// alongside allow-scripts, since that isolation is the system's sole
// security control.
var editorPage = template.Must(template.New("editor").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        html, body { height: 100%; margin: 0; font-family: sans-serif; }
        .toolbar { height: 40px; display: flex; align-items: center; gap: 12px; padding: 0 12px; background: #1e1e1e; color: #ccc; }
        .toolbar button { background: #0e639c; color: white; border: none; padding: 6px 14px; border-radius: 3px; cursor: pointer; }
        .toolbar button:disabled { background: #555; cursor: default; }
        .toolbar .status { font-size: 0.85em; color: #888; }
        .panes { display: flex; height: calc(100% - 40px); }
        .pane { flex: 1; height: 100%; }
        #editor { border-right: 1px solid #333; }
        #preview { width: 100%; height: 100%; border: none; background: white; }
    </style>
</head>
<body>
    <div class="toolbar">
        <strong>{{.Title}}</strong>
        <button id="run">Run</button>
        <span class="status" id="status">idle</span>
    </div>
    <div class="panes">
        <div class="pane" id="editor"></div>
        <div class="pane">
            <iframe id="preview" sandbox="allow-scripts" title="preview"></iframe>
        </div>
    </div>
    <script src="https://cdn.jsdelivr.net/npm/monaco-editor@{{.MonacoVersion}}/min/vs/loader.js"></script>
    <script>
        const initialSource = {{.InitialJSON}};
        const frame = document.getElementById('preview');
        const statusEl = document.getElementById('status');
        const runBtn = document.getElementById('run');

        let ws = null;
        let reconnectInterval = null;

        function refreshPreview() {
            fetch('/preview', { cache: 'no-store' })
                .then(resp => resp.text())
                .then(html => { frame.srcdoc = html; });
        }

        function connect() {
            ws = new WebSocket('ws://' + window.location.host + '/ws');

            ws.onopen = function () {
                clearInterval(reconnectInterval);
                reconnectInterval = null;
                statusEl.textContent = 'idle';
                runBtn.disabled = false;
                // Catch up on anything published while disconnected.
                refreshPreview();
            };

            ws.onmessage = function (event) {
                const message = JSON.parse(event.data);
                if (message.type === 'preview') {
                    refreshPreview();
                    statusEl.textContent = 'idle (' + message.kind + ')';
                    runBtn.disabled = false;
                } else if (message.type === 'status') {
                    statusEl.textContent = message.status;
                    runBtn.disabled = message.status === 'compiling';
                }
            };

            ws.onclose = function () {
                statusEl.textContent = 'disconnected';
                runBtn.disabled = true;

                // Try to reconnect
                if (!reconnectInterval) {
                    reconnectInterval = setInterval(connect, 2000);
                }
            };
        }

        connect();
        refreshPreview();

        require.config({ paths: { vs: 'https://cdn.jsdelivr.net/npm/monaco-editor@{{.MonacoVersion}}/min/vs' } });
        require(['vs/editor/editor.main'], function () {
            // Pre-mount configuration: the widget's own linter does not
            // understand the markup-in-code preset, so its semantic and
            // syntax diagnostics are switched off before the editor is
            // created.
            monaco.languages.typescript.javascriptDefaults.setDiagnosticsOptions({
                noSemanticValidation: {{.NoValidation}},
                noSyntaxValidation: {{.NoValidation}}
            });

            const editor = monaco.editor.create(document.getElementById('editor'), {
                value: initialSource,
                language: 'javascript',
                theme: '{{.Theme}}',
                automaticLayout: true,
                minimap: { enabled: false }
            });

            editor.onDidChangeModelContent(function () {
                if (ws && ws.readyState === WebSocket.OPEN) {
                    ws.send(JSON.stringify({ type: 'source', content: editor.getValue() }));
                }
            });

            runBtn.addEventListener('click', function () {
                if (ws && ws.readyState === WebSocket.OPEN) {
                    ws.send(JSON.stringify({ type: 'compile' }));
                }
            });
        });
    </script>
</body>
</html>
`))

// handleIndex serves the editor page.
func (s *PlaygroundServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	// json.Marshal escapes angle brackets, so the embedded source can
	// never terminate the surrounding script tag.
	initialJSON, err := json.Marshal(s.buffer.Text())
	if err != nil {
		http.Error(w, "Failed to encode source", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title         string
		MonacoVersion string
		Theme         string
		NoValidation  bool
		InitialJSON   string
	}{
		Title:         cases.Title(language.English).String("codepad playground"),
		MonacoVersion: monacoVersion,
		Theme:         s.config.Editor.Theme,
		NoValidation:  !s.config.Editor.Diagnostics,
		InitialJSON:   string(initialJSON),
	}

	var buf bytes.Buffer
	if err := editorPage.Execute(&buf, data); err != nil {
		http.Error(w, "Failed to render editor page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
