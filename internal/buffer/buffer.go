// Package buffer holds the current playground source text.
//
// The buffer is the single source of truth for what the author intends
// to run. The editor widget owns keystroke-level diffing; the buffer
// only ever receives full-text replacements. No validation happens
// here: arbitrary text, including syntactically invalid text, is
// accepted and stored as-is.
package buffer

import "sync"

// StarterSource is the default snippet loaded into a fresh playground:
// a counter component exercising state and an event handler.
const StarterSource = `function App() {
  const [count, setCount] = React.useState(0);

  return (
    <div>
      <p>Count: {count}</p>
      <button onClick={() => setCount(count + 1)}>Increment</button>
    </div>
  );
}
`

// ChangeHandler is invoked after every buffer replacement with the new
// full text.
type ChangeHandler func(text string)

// SourceBuffer stores the current raw source text and notifies
// registered handlers on change.
type SourceBuffer struct {
	mu       sync.RWMutex
	text     string
	version  uint64
	handlers []ChangeHandler
}

// NewSourceBuffer creates a buffer seeded with the given text. The
// empty string is a valid seed.
func NewSourceBuffer(initial string) *SourceBuffer {
	return &SourceBuffer{text: initial}
}

// Text returns the current source text.
func (b *SourceBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Version returns the number of replacements applied so far.
func (b *SourceBuffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Set replaces the buffer contents wholesale and notifies handlers.
// Handlers run outside the buffer lock, on the caller's goroutine.
func (b *SourceBuffer) Set(text string) {
	b.mu.Lock()
	b.text = text
	b.version++
	handlers := b.handlers
	b.mu.Unlock()

	for _, h := range handlers {
		h(text)
	}
}

// OnChange registers a handler invoked after every replacement.
func (b *SourceBuffer) OnChange(h ChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}
