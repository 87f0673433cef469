package mandelbrot

import "time"

// Tier is the quality of a render.
type Tier int

const (
	// Draft renders use the low iteration budget for fast feedback.
	Draft Tier = iota
	// Refined renders use the high iteration budget.
	Refined
)

func (t Tier) String() string {
	switch t {
	case Draft:
		return "draft"
	case Refined:
		return "refined"
	default:
		return "unknown"
	}
}

// QualityPhase enumerates the states of the render quality machine.
type QualityPhase int

const (
	// PhasePending: an interaction was committed and its draft render has
	// not completed yet.
	PhasePending QualityPhase = iota
	// PhaseSettling: the draft is done; the idle window is running before
	// iterations are spent on a refined pass.
	PhaseSettling
	// PhaseIdle: the refined render has been issued; nothing left to do
	// until the next interaction.
	PhaseIdle
)

func (p QualityPhase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSettling:
		return "settling"
	case PhaseIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// QualityController decides when a view deserves a refined render. A session
// starts in PhasePending, so the first render is a fast draft. Every
// interaction resets to PhasePending; a completed draft opens the idle
// window; once the window elapses undisturbed the controller releases
// exactly one refined render and rests in PhaseIdle.
//
// The controller is a pure state machine: time flows in through parameters,
// which keeps every transition deterministic under test. It is not safe for
// concurrent use; the owning session serializes access.
type QualityController struct {
	phase         QualityPhase
	settledAt     time.Time
	idleThreshold time.Duration
}

// NewQualityController returns a controller in PhasePending with the given
// idle window.
func NewQualityController(idleThreshold time.Duration) *QualityController {
	return &QualityController{phase: PhasePending, idleThreshold: idleThreshold}
}

// Phase returns the current phase.
func (c *QualityController) Phase() QualityPhase { return c.phase }

// Interact records a committed interaction. Whatever was settling or already
// refined is forgotten and a fresh draft is due.
func (c *QualityController) Interact() {
	c.phase = PhasePending
	c.settledAt = time.Time{}
}

// RenderCompleted records a render of the given tier finishing at now.
// A draft completing the pending interaction opens the idle window; any
// other completion changes nothing.
func (c *QualityController) RenderCompleted(tier Tier, now time.Time) {
	if tier == Draft && c.phase == PhasePending {
		c.phase = PhaseSettling
		c.settledAt = now
	}
}

// RefineDue reports whether the idle window has fully elapsed at now. The
// first call that reports true moves the machine to PhaseIdle, so one
// settled draft releases at most one refined render.
func (c *QualityController) RefineDue(now time.Time) bool {
	if c.phase != PhaseSettling {
		return false
	}
	if now.Sub(c.settledAt) < c.idleThreshold {
		return false
	}
	c.phase = PhaseIdle
	c.settledAt = time.Time{}
	return true
}

// SettledAt returns the start of the idle window, or the zero time when the
// machine is not settling.
func (c *QualityController) SettledAt() time.Time { return c.settledAt }
