package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepad-dev/codepad/internal/config"
	"github.com/codepad-dev/codepad/internal/errors"
	"github.com/codepad-dev/codepad/internal/preview"
	"github.com/codepad-dev/codepad/internal/transform"
)

// countingEngine records every transform call.
type countingEngine struct {
	mu      sync.Mutex
	inputs  []string
	fail    bool
	block   chan struct{} // when non-nil, Transform blocks until closed
	started chan struct{} // when non-nil, signalled once per call
}

func (e *countingEngine) Transform(ctx context.Context, source string) (string, error) {
	e.mu.Lock()
	e.inputs = append(e.inputs, source)
	e.mu.Unlock()

	if e.started != nil {
		e.started <- struct{}{}
	}
	if e.block != nil {
		<-e.block
	}
	if e.fail {
		return "", &errors.CompileError{Kind: errors.CompileErrorSyntax, Message: "SyntaxError: bad input"}
	}
	return "lowered:" + source, nil
}

func (e *countingEngine) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.inputs...)
}

type testHarness struct {
	engine    *countingEngine
	scheduler *Scheduler
	source    atomic.Value

	mu        sync.Mutex
	published []preview.Document
}

func newHarness(t *testing.T, engine *countingEngine, delay time.Duration) *testHarness {
	t.Helper()

	h := &testHarness{engine: engine}
	h.source.Store("")

	renderer := preview.NewSandboxRenderer(config.PreviewConfig{
		ReactVersion: "18.3.1",
		BabelVersion: "7.26.4",
	})

	h.scheduler = New(
		engine,
		renderer,
		preview.NewErrorPresenter(),
		func() string { return h.source.Load().(string) },
		func(doc preview.Document) {
			h.mu.Lock()
			h.published = append(h.published, doc)
			h.mu.Unlock()
		},
		delay,
		nil,
	)

	t.Cleanup(h.scheduler.Stop)

	return h
}

func (h *testHarness) publishedDocs() []preview.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]preview.Document(nil), h.published...)
}

func (h *testHarness) edit(text string) {
	h.source.Store(text)
	h.scheduler.NotifyChange()
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "compiling", StatusCompiling.String())
	assert.Equal(t, "unknown", Status(99).String())
}

func TestDebounceCoalescesRapidEdits(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, 50*time.Millisecond)

	// Five rapid edits within the quiet period.
	for _, text := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		h.edit(text)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(engine.calls()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	// Settle: no further compiles may fire.
	time.Sleep(150 * time.Millisecond)

	calls := engine.calls()
	require.Len(t, calls, 1, "rapid edits must coalesce into one compile")
	assert.Equal(t, "abcde", calls[0], "the compile must see the last edit")
}

func TestSeparatedEditsEachCompile(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, 20*time.Millisecond)

	h.edit("first")
	require.Eventually(t, func() bool { return len(engine.calls()) == 1 }, time.Second, 5*time.Millisecond)

	h.edit("second")
	require.Eventually(t, func() bool { return len(engine.calls()) == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, engine.calls())
}

func TestCompileNowBypassesDebounce(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, time.Hour)

	h.source.Store("manual")
	ok := h.scheduler.CompileNow(context.Background())

	assert.True(t, ok)
	assert.Equal(t, []string{"manual"}, engine.calls())

	docs := h.publishedDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, preview.KindRender, docs[0].Kind)
	assert.Contains(t, docs[0].HTML, "lowered:manual")
}

func TestCompileNowNoOpWhileCompiling(t *testing.T) {
	engine := &countingEngine{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	h := newHarness(t, engine, time.Hour)

	done := make(chan bool)
	go func() {
		done <- h.scheduler.CompileNow(context.Background())
	}()

	<-engine.started
	assert.Equal(t, StatusCompiling, h.scheduler.Status())

	// Second trigger while the first is in flight is a no-op.
	assert.False(t, h.scheduler.CompileNow(context.Background()))

	close(engine.block)
	assert.True(t, <-done)

	assert.Len(t, engine.calls(), 1)
	assert.Equal(t, StatusIdle, h.scheduler.Status())
}

func TestStatusReturnsToIdleAfterFailure(t *testing.T) {
	engine := &countingEngine{fail: true}
	h := newHarness(t, engine, time.Hour)

	h.source.Store("broken {")
	ok := h.scheduler.CompileNow(context.Background())

	assert.True(t, ok)
	assert.Equal(t, StatusIdle, h.scheduler.Status())

	docs := h.publishedDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, preview.KindError, docs[0].Kind)
	assert.Contains(t, docs[0].HTML, "Error:")
	assert.Contains(t, docs[0].HTML, "SyntaxError: bad input")
}

func TestFailedCompileStillPublishes(t *testing.T) {
	engine := &countingEngine{fail: true}
	h := newHarness(t, engine, 20*time.Millisecond)

	h.edit("broken")

	require.Eventually(t, func() bool {
		_, ok := h.scheduler.Current()
		return ok
	}, time.Second, 5*time.Millisecond)

	doc, ok := h.scheduler.Current()
	require.True(t, ok)
	assert.Equal(t, preview.KindError, doc.Kind)
}

func TestEmptySourcePublishesValidDocument(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, time.Hour)

	h.source.Store("")
	require.True(t, h.scheduler.CompileNow(context.Background()))

	doc, ok := h.scheduler.Current()
	require.True(t, ok)
	assert.Equal(t, preview.KindRender, doc.Kind)
	assert.Contains(t, doc.HTML, "<!DOCTYPE html>")
}

func TestTokensAreMonotonic(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, time.Hour)

	for i := 0; i < 3; i++ {
		require.True(t, h.scheduler.CompileNow(context.Background()))
	}

	docs := h.publishedDocs()
	require.Len(t, docs, 3)
	for i := 1; i < len(docs); i++ {
		assert.Greater(t, docs[i].Token, docs[i-1].Token)
	}

	current, ok := h.scheduler.Current()
	require.True(t, ok)
	assert.Equal(t, docs[2].Token, current.Token)
}

func TestStalePublicationIsDropped(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, time.Hour)

	require.True(t, h.scheduler.CompileNow(context.Background()))

	current, ok := h.scheduler.Current()
	require.True(t, ok)

	// A document from an older compile attempt must not replace a
	// newer one: last writer wins by token.
	stale := preview.Document{Kind: preview.KindRender, HTML: "stale", Token: 0}
	h.scheduler.publishDoc(stale)

	after, ok := h.scheduler.Current()
	require.True(t, ok)
	assert.Equal(t, current.Token, after.Token)
	assert.NotEqual(t, "stale", after.HTML)
}

func TestOnStatusObservesTransitions(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, time.Hour)

	var mu sync.Mutex
	var transitions []Status
	h.scheduler.OnStatus(func(st Status) {
		mu.Lock()
		transitions = append(transitions, st)
		mu.Unlock()
	})

	require.True(t, h.scheduler.CompileNow(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusCompiling, StatusIdle}, transitions)
}

func TestStopCancelsPendingCompile(t *testing.T) {
	engine := &countingEngine{}
	h := newHarness(t, engine, 30*time.Millisecond)

	h.edit("pending")
	h.scheduler.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, engine.calls(), "a cancelled debounce must not compile")
}

var _ transform.Engine = (*countingEngine)(nil)
