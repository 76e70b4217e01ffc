// Package preview constructs the self-contained documents shown in the
// playground's sandboxed preview pane.
//
// Each compile cycle produces exactly one Document, either render-shaped
// (runtime bootstrap plus the transformed code) or error-shaped (the
// compile failure as preformatted text). A new Document always replaces
// the previous one wholesale; there is no incremental patching and no
// shared state between runs.
package preview

// DocumentKind distinguishes render documents from error documents.
type DocumentKind int

const (
	KindRender DocumentKind = iota
	KindError
)

// String returns the string representation of the kind.
func (k DocumentKind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Document is a complete, self-contained markup string destined for the
// sandboxed preview frame, tagged with the token of the compile attempt
// that produced it.
type Document struct {
	Kind  DocumentKind
	HTML  string
	Token uint64
}
