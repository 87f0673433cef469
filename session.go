package mandelbrot

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"
)

// Reference iteration budgets and idle window.
const (
	DefaultDraftIterations   = 50
	DefaultRefinedIterations = 500
	DefaultIdleThreshold     = 10 * time.Second
)

// Config carries the knobs of a session. Zero-valued fields are not usable;
// start from DefaultConfig.
type Config struct {
	Resolution        Resolution
	DraftIterations   int
	RefinedIterations int
	IdleThreshold     time.Duration

	// Evaluator and Renderer default to the package Evaluate and the
	// Inferno palette when nil.
	Evaluator Evaluator
	Renderer  Renderer
}

// DefaultConfig returns the reference configuration: 1600x900 bitmaps,
// 50-iteration drafts, 500-iteration refined renders, a 10 second idle
// window.
func DefaultConfig() Config {
	return Config{
		Resolution:        DefaultResolution,
		DraftIterations:   DefaultDraftIterations,
		RefinedIterations: DefaultRefinedIterations,
		IdleThreshold:     DefaultIdleThreshold,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := c.Resolution.Validate(); err != nil {
		return err
	}
	if c.DraftIterations < 1 {
		return fmt.Errorf("%w: draft %d", ErrInvalidIterations, c.DraftIterations)
	}
	if c.RefinedIterations < 1 {
		return fmt.Errorf("%w: refined %d", ErrInvalidIterations, c.RefinedIterations)
	}
	if c.IdleThreshold <= 0 {
		return fmt.Errorf("mandelbrot: idle threshold must be positive, got %v", c.IdleThreshold)
	}
	return nil
}

// Session owns one user's interactive state: the current view, the quality
// machine, the single in-flight render and the idle upgrade timer. Sessions
// are independent of each other. All methods are safe for concurrent use.
//
// Output flows to the Display through a FIFO queue serviced by a single
// dispatch goroutine, so bitmaps and statuses arrive in emission order and a
// superseded render can never overtake the interaction that superseded it.
type Session struct {
	cfg Config

	mu        sync.Mutex
	view      ViewState
	lastPoint *PlanePoint
	qc        *QualityController
	gen       uint64             // bumped on every committed interaction
	cancel    context.CancelFunc // cancels the in-flight render, if any
	idle      *time.Timer        // pending draft-to-refined upgrade
	started   bool
	closed    bool

	ctx     context.Context // session lifetime, parent of every render
	ctxStop context.CancelFunc

	display Display
	events  chan func()   // FIFO queue of display calls
	done    chan struct{} // dispatch goroutine has drained
}

// NewSession builds a session around the given configuration and display.
// The session emits nothing until Start is called, so the caller can finish
// wiring its display first.
func NewSession(cfg Config, display Display) (*Session, error) {
	if display == nil {
		return nil, fmt.Errorf("mandelbrot: nil display")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = EvaluatorFunc(Evaluate)
	}
	if cfg.Renderer == nil {
		cfg.Renderer = Inferno()
	}

	s := &Session{
		cfg:     cfg,
		view:    DefaultViewState(),
		qc:      NewQualityController(cfg.IdleThreshold),
		display: display,
		events:  make(chan func(), 64),
		done:    make(chan struct{}),
	}
	s.ctx, s.ctxStop = context.WithCancel(context.Background())
	go s.dispatch()
	return s, nil
}

func (s *Session) dispatch() {
	defer close(s.done)
	for ev := range s.events {
		ev()
	}
}

// Start emits the initial status and issues the first draft render of the
// whole-set view. Extra calls are no-ops.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.started {
		return
	}
	Logger().Debug("session starting",
		"width", s.cfg.Resolution.Width, "height", s.cfg.Resolution.Height,
		"draftIters", s.cfg.DraftIterations, "refinedIters", s.cfg.RefinedIterations)
	s.emitStatusLocked()
	s.startRenderLocked(Draft)
}

// PointClicked commits a click at the continuous pixel coordinate (x, y) of
// the displayed bitmap. The clicked point becomes the new viewport center,
// the current zoom factor scales the extents, any in-flight render or
// pending upgrade is preempted and a fresh draft render starts.
//
// A click that fails validation is rejected synchronously with the view, the
// zoom bookkeeping and any in-flight render untouched.
func (s *Session) PointClicked(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	pt := s.view.Viewport.PixelToPlane(x, y, s.cfg.Resolution)
	next, err := s.view.RecenterZoom(x, y, s.cfg.Resolution)
	if err != nil {
		return err
	}
	s.view = next
	s.lastPoint = &pt
	s.interactLocked()
	s.emitStatusLocked()
	s.startRenderLocked(Draft)
	return nil
}

// ZoomFactorChanged updates the factor the next click will use. It takes
// effect on the next click only: no render is triggered, and a settling
// draft keeps its idle window. An out-of-range factor is rejected with the
// state unchanged.
func (s *Session) ZoomFactorChanged(factor int) error {
	if _, err := ZoomMultiplier(factor); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if factor == s.view.Zoom.Factor {
		return nil
	}
	s.view.Zoom.Factor = factor
	s.emitStatusLocked()
	return nil
}

// View returns the current viewport and zoom state.
func (s *Session) View() (Viewport, ZoomState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Viewport, s.view.Zoom
}

// Close cancels any in-flight render, disarms the upgrade timer and stops
// the dispatch goroutine. Close blocks until queued display calls have
// drained, so it must not be called from inside a Display method. The
// display receives nothing after Close returns. Extra calls are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
	s.ctxStop()
	close(s.events)
	s.mu.Unlock()
	<-s.done
	Logger().Debug("session closed")
}

// interactLocked preempts whatever the session was doing: the in-flight
// render is canceled, the upgrade timer disarmed and the quality machine
// reset, so the next render is a draft of the new view. Caller holds s.mu.
func (s *Session) interactLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
	s.qc.Interact()
}

// startRenderLocked launches the render goroutine for the current view.
// Only one render runs at a time: any previous one was canceled by
// interactLocked and its result will fail the generation check. Caller
// holds s.mu.
func (s *Session) startRenderLocked(tier Tier) {
	maxIter := s.cfg.DraftIterations
	if tier == Refined {
		maxIter = s.cfg.RefinedIterations
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.started = true
	go s.render(ctx, s.gen, s.view.Viewport, tier, maxIter)
}

func (s *Session) render(ctx context.Context, gen uint64, v Viewport, tier Tier, maxIter int) {
	begun := time.Now()
	grid, err := s.cfg.Evaluator.Evaluate(ctx, v, s.cfg.Resolution, maxIter)
	var img *image.RGBA
	if err == nil {
		img, err = s.cfg.Renderer.Render(grid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// Superseded while in flight. Routine cancellation, not an error.
		Logger().Debug("render superseded", "tier", tier.String(), "generation", gen)
		return
	}
	s.cancel = nil
	if err != nil {
		Logger().Warn("render failed", "tier", tier.String(), "generation", gen, "err", err)
		s.emit(func(d Display) { d.DisplayError(fmt.Errorf("%s render: %w", tier, err)) })
		return
	}

	s.qc.RenderCompleted(tier, time.Now())
	if tier == Draft && s.qc.Phase() == PhaseSettling {
		s.scheduleUpgradeLocked()
	}
	st := s.statusLocked()
	s.emit(func(d Display) { d.DisplayImage(img, v, tier) })
	s.emit(func(d Display) { d.DisplayStatus(st) })
	Logger().Debug("render complete",
		"tier", tier.String(), "generation", gen, "elapsed", time.Since(begun))
}

// scheduleUpgradeLocked arms the timer that upgrades the settled draft to a
// refined render once the idle window elapses. Caller holds s.mu.
func (s *Session) scheduleUpgradeLocked() {
	gen := s.gen
	s.idle = time.AfterFunc(s.cfg.IdleThreshold, func() { s.upgrade(gen) })
}

// upgrade runs when the idle timer fires.
func (s *Session) upgrade(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// Preempted between the timer firing and the lock.
		return
	}
	if !s.qc.RefineDue(time.Now()) {
		return
	}
	s.idle = nil
	Logger().Debug("idle window elapsed, refining", "generation", gen)
	s.startRenderLocked(Refined)
}

func (s *Session) statusLocked() Status {
	quality := Draft
	if s.qc.Phase() == PhaseIdle {
		quality = Refined
	}
	return Status{
		Viewport:       s.view.Viewport,
		Resolution:     s.cfg.Resolution,
		CumulativeZoom: s.view.Zoom.CumulativeZoom,
		ZoomFactor:     s.view.Zoom.Factor,
		LastPoint:      s.lastPoint,
		Quality:        quality,
	}
}

func (s *Session) emitStatusLocked() {
	st := s.statusLocked()
	s.emit(func(d Display) { d.DisplayStatus(st) })
}

// emit queues a display call. A full queue drops the event instead of
// blocking interactions; a slow display loses intermediate frames. Caller
// holds s.mu.
func (s *Session) emit(ev func(Display)) {
	if s.closed {
		return
	}
	select {
	case s.events <- func() { ev(s.display) }:
	default:
		Logger().Warn("display queue full, dropping event")
	}
}
