// Package scheduler drives the edit-to-render loop: it debounces buffer
// changes, serializes compile attempts, tracks the compile status flag,
// and publishes each resulting output document.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codepad-dev/codepad/internal/errors"
	"github.com/codepad-dev/codepad/internal/logging"
	"github.com/codepad-dev/codepad/internal/preview"
	"github.com/codepad-dev/codepad/internal/transform"
)

// Status is the compile state flag. Exactly one instance exists per
// scheduler; it transitions to StatusCompiling when a compile begins and
// back to StatusIdle when it ends, success or failure.
type Status int32

const (
	StatusIdle Status = iota
	StatusCompiling
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCompiling:
		return "compiling"
	default:
		return "unknown"
	}
}

// SourceFunc returns the current buffer contents at compile time.
type SourceFunc func() string

// PublishFunc receives each newly published document.
type PublishFunc func(doc preview.Document)

// Scheduler coordinates the compile loop.
//
// Two triggers start a compile: the trailing-edge debounce timer armed
// by every buffer change, and the manual CompileNow path, which is a
// no-op while a compile is already in flight. Publications are guarded
// by a monotonically increasing request token, last writer wins, so an
// older compile's document can never overwrite a newer one's.
type Scheduler struct {
	delay     time.Duration
	engine    transform.Engine
	renderer  *preview.SandboxRenderer
	presenter *preview.ErrorPresenter
	source    SourceFunc
	publish   PublishFunc
	logger    logging.Logger

	status   atomic.Int32
	statusFn func(Status)
	token    atomic.Uint64

	timerMu sync.Mutex
	timer   *time.Timer

	pubMu     sync.Mutex
	current   preview.Document
	published bool
}

// New creates a scheduler. The publish callback may be nil; the current
// document is always retrievable via Current.
func New(
	engine transform.Engine,
	renderer *preview.SandboxRenderer,
	presenter *preview.ErrorPresenter,
	source SourceFunc,
	publish PublishFunc,
	delay time.Duration,
	logger logging.Logger,
) *Scheduler {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Scheduler{
		delay:     delay,
		engine:    engine,
		renderer:  renderer,
		presenter: presenter,
		source:    source,
		publish:   publish,
		logger:    logger.WithComponent("scheduler"),
	}
}

// Status returns the current compile status.
func (s *Scheduler) Status() Status {
	return Status(s.status.Load())
}

// OnStatus registers a listener invoked on every status transition.
// Must be called before the first compile can fire.
func (s *Scheduler) OnStatus(fn func(Status)) {
	s.statusFn = fn
}

func (s *Scheduler) setStatus(st Status) {
	s.status.Store(int32(st))
	if s.statusFn != nil {
		s.statusFn(st)
	}
}

// Current returns the most recently published document. The second
// return value is false until the first compile completes.
func (s *Scheduler) Current() (preview.Document, bool) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	return s.current, s.published
}

// NotifyChange (re)arms the debounce timer. A new change before the
// quiet period expires cancels the pending compile outright and starts
// a fresh timer, so rapid typing produces exactly one compile after the
// author pauses.
func (s *Scheduler) NotifyChange() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.delay, func() {
		s.setStatus(StatusCompiling)
		s.run(context.Background())
	})
}

// CompileNow bypasses the debounce delay and runs the compile procedure
// immediately. It reports false, without compiling, while a compile is
// already in flight.
func (s *Scheduler) CompileNow(ctx context.Context) bool {
	if !s.status.CompareAndSwap(int32(StatusIdle), int32(StatusCompiling)) {
		return false
	}
	if s.statusFn != nil {
		s.statusFn(StatusCompiling)
	}

	s.run(ctx)
	return true
}

// Stop cancels any pending debounced compile.
func (s *Scheduler) Stop() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// run executes one compile attempt. The status flag is restored on
// every exit path, so a failed transform can never leave it stuck at
// compiling.
func (s *Scheduler) run(ctx context.Context) {
	defer s.setStatus(StatusIdle)

	token := s.token.Add(1)
	source := s.source()

	start := time.Now()
	code, err := s.engine.Transform(ctx, source)

	var doc preview.Document
	if err != nil {
		cerr := errors.Narrow(err)
		s.logger.Warn(ctx, cerr, "compile failed",
			"token", token,
			"kind", cerr.Kind.String(),
			"duration", time.Since(start).String())

		doc = preview.Document{
			Kind:  preview.KindError,
			HTML:  s.presenter.Present(cerr),
			Token: token,
		}
	} else {
		s.logger.Debug(ctx, "compile succeeded",
			"token", token,
			"duration", time.Since(start).String())

		doc = preview.Document{
			Kind:  preview.KindRender,
			HTML:  s.renderer.Render(code),
			Token: token,
		}
	}

	s.publishDoc(doc)
}

// publishDoc atomically replaces the current document. Stale results,
// identified by token, are dropped rather than published.
func (s *Scheduler) publishDoc(doc preview.Document) {
	s.pubMu.Lock()
	if s.published && doc.Token < s.current.Token {
		s.pubMu.Unlock()
		return
	}
	s.current = doc
	s.published = true
	s.pubMu.Unlock()

	if s.publish != nil {
		s.publish(doc)
	}
}
