package flow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pageflow/config"
	"pageflow/doc"
	"pageflow/layout"
)

// Origins of engine transactions, see doc.Document.UpdateAs.
const (
	OriginStructure = "pageflow/structure"
	OriginReflow    = "pageflow/reflow"
	OriginUnderflow = "pageflow/underflow"
	OriginSync      = "pageflow/sync"
	OriginLifecycle = "pageflow/lifecycle"
	OriginNumbering = "pageflow/numbering"
)

// Report summarizes single pipeline run.
type Report struct {
	Enforced  int
	Reflow    Result
	PulledUp  int
	Sync      SyncStats
	Lifecycle LifecycleStats
	Numbered  int
	Elapsed   time.Duration
}

// Changed reports whether run modified the document.
func (r Report) Changed() bool {
	return r.Enforced > 0 || r.Reflow.Changed() || r.Reflow.Created > 0 || r.PulledUp > 0 ||
		r.Sync.Rewritten > 0 || r.Lifecycle != (LifecycleStats{}) || r.Numbered > 0
}

func (r Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("enforced", r.Enforced)
	enc.AddInt("passes", r.Reflow.Passes)
	enc.AddBool("converged", r.Reflow.Converged)
	enc.AddInt("moved", r.Reflow.Moved)
	enc.AddInt("split", r.Reflow.Split)
	enc.AddInt("created", r.Reflow.Created+r.Lifecycle.Created)
	enc.AddInt("pulled", r.PulledUp)
	enc.AddInt("synced", r.Sync.Rewritten)
	enc.AddInt("removed", r.Lifecycle.Removed)
	enc.AddInt("migrated", r.Lifecycle.Migrated)
	enc.AddInt("numbered", r.Numbered+r.Lifecycle.Renumbered)
	enc.AddDuration("elapsed", r.Elapsed)
	return nil
}

// Option configures Engine.
type Option func(*Engine)

// WithReportHook sets function called after every scheduled pipeline run.
// It is called on the loop goroutine.
func WithReportHook(fn func(Report, error)) Option {
	return func(e *Engine) {
		e.hook = fn
	}
}

// WithDebounce overrides configured quiet period.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// Engine runs structure enforcement, reflow, synchronization, lifecycle and
// numbering over a document, either on request (RunOnce) or in response to
// document changes (Start).
type Engine struct {
	doc *doc.Document
	log *zap.Logger

	sess    *Session
	reflow  *Reflower
	syncer  *Syncer
	life    *Lifecycle
	numbers *Numberer

	delay  time.Duration
	hook   func(Report, error)
	pulled atomic.Int64

	mu          sync.Mutex
	loop        *Loop
	deb         *Debouncer
	unsubscribe func()
}

func NewEngine(d *doc.Document, m layout.Measurer, cfg *config.Config, log *zap.Logger, opts ...Option) *Engine {
	sess := NewSession()
	e := &Engine{
		doc:     d,
		log:     log,
		sess:    sess,
		reflow:  NewReflower(m, &cfg.Layout, cfg.Engine.Underflow, log.Named("reflow")),
		syncer:  NewSyncer(m, cfg.Layout.Geometry(), sess, log.Named("sync")),
		life:    NewLifecycle(sess, log.Named("lifecycle")),
		numbers: NewNumberer(cfg.Engine.PageNumbers.Placement, log.Named("numbering")),
		delay:   cfg.Engine.Debounce,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session returns engine session.
func (e *Engine) Session() *Session {
	return e.sess
}

// RunOnce runs the whole pipeline synchronously. Synchronization guard is
// released when it returns.
func (e *Engine) RunOnce(ctx context.Context) (Report, error) {
	defer e.sess.Release()
	return e.run(ctx)
}

func (e *Engine) run(ctx context.Context) (rep Report, err error) {
	start := time.Now()
	defer func() { rep.Elapsed = time.Since(start) }()

	rep.PulledUp = int(e.pulled.Swap(0))

	if err = ctx.Err(); err != nil {
		return rep, err
	}
	_ = e.doc.UpdateAs(OriginStructure, func(tx *doc.Tx) error {
		rep.Enforced = EnforceDocument(tx)
		return nil
	})

	if rep.Reflow, err = e.reflow.Run(ctx, e.doc); err != nil {
		return rep, err
	}

	_ = e.doc.UpdateAs(OriginSync, func(tx *doc.Tx) error {
		rep.Sync = e.syncer.Sync(tx)
		return nil
	})
	_ = e.doc.UpdateAs(OriginLifecycle, func(tx *doc.Tx) error {
		rep.Lifecycle = e.life.Run(tx)
		return nil
	})
	_ = e.doc.UpdateAs(OriginNumbering, func(tx *doc.Tx) error {
		rep.Numbered = e.numbers.Run(tx)
		return nil
	})
	return rep, nil
}

// Start subscribes engine to document changes. Every change not caused by
// synchronization writes schedules debounced pipeline run on the engine loop.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loop != nil {
		return
	}

	loop := NewLoop()
	e.loop = loop
	e.deb = NewDebouncer(e.delay, func() {
		loop.Post(func() { e.tick(ctx, loop) })
	})
	loop.Start(ctx)
	e.unsubscribe = e.doc.Subscribe(e.changed)
}

func (e *Engine) changed(ch doc.Change) {
	switch ch.Origin {
	case OriginSync:
		if e.sess.Syncing() {
			e.log.Debug("Ignoring change caused by synchronization", zap.Uint64("seq", ch.Seq))
			return
		}
	case OriginStructure, OriginReflow, OriginLifecycle, OriginNumbering:
		// already processed by the run which made them
		return
	}
	e.mu.Lock()
	deb := e.deb
	e.mu.Unlock()
	if deb != nil {
		deb.Call()
	}
}

// tick is a scheduled pipeline run. Guard taken by synchronization is
// released on the following tick.
func (e *Engine) tick(ctx context.Context, loop *Loop) {
	rep, err := e.run(ctx)
	if rep.Sync.Guarded {
		loop.Post(e.sess.Release)
	}
	if err != nil {
		e.log.Debug("Pipeline run interrupted", zap.Error(err))
	} else if rep.Changed() {
		e.log.Debug("Pipeline run", zap.Object("report", rep))
	}
	if e.hook != nil {
		e.hook(rep, err)
	}
}

// Flush runs pending scheduled pipeline immediately and waits for the loop to
// process it.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	loop, deb := e.loop, e.deb
	e.mu.Unlock()
	if loop == nil {
		return ErrLoopStopped
	}
	deb.Flush()
	// two ticks: pipeline itself and guard release after it
	for range 2 {
		if err := loop.Do(ctx, func() {}); err != nil {
			return err
		}
	}
	return nil
}

// EditingSection records that user edits section of the page.
func (e *Engine) EditingSection(pageKey string, kind doc.SectionKind) {
	e.sess.Editing(pageKey, kind)
}

// FocusSection records that section of the page received input focus.
func (e *Engine) FocusSection(pageKey string, kind doc.SectionKind) {
	e.sess.Focused(pageKey, kind)
}

// Blur records that focus left document sections.
func (e *Engine) Blur() {
	e.sess.Blur()
}

// DeletionRequested pulls blocks up into pages with spare capacity after user
// deleted n blocks. Returns number of blocks pulled, pipeline run follows.
func (e *Engine) DeletionRequested(n int) int {
	var pulled int
	_ = e.doc.UpdateAs(OriginUnderflow, func(tx *doc.Tx) error {
		pulled = e.reflow.PullUp(tx, n)
		return nil
	})
	e.pulled.Add(int64(pulled))
	return pulled
}

// Close stops scheduled processing and resets session.
func (e *Engine) Close() {
	e.mu.Lock()
	loop, deb, unsubscribe := e.loop, e.deb, e.unsubscribe
	e.loop, e.deb, e.unsubscribe = nil, nil, nil
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if deb != nil {
		deb.Cancel()
	}
	if loop != nil {
		loop.Stop()
	}
	e.sess.Reset()
}
