package escalate

// #region imports
import (
	"github.com/guestflow/ragcore/internal/gate"
)

// #endregion

// #region defaults

const (
	DefaultWindowSize = 50
	DefaultTopK       = 12
	DefaultTopKWide   = 15

	// DefaultRateThreshold is the rolling low-overlap rate at which
	// new requests start at the fallback top-k instead of paying the
	// two-pass cost.
	DefaultRateThreshold = 0.25
)

// #endregion defaults

// #region config

// Config tunes the escalation controller.
type Config struct {
	WindowSize      int
	RateThreshold   float64
	PreemptiveWiden bool
}

// DefaultConfig mirrors the production settings.
func DefaultConfig() Config {
	return Config{
		WindowSize:      DefaultWindowSize,
		RateThreshold:   DefaultRateThreshold,
		PreemptiveWiden: true,
	}
}

// #endregion config

// #region controller

// Controller owns the process-wide low-overlap window and decides the
// starting retrieval breadth. Two widening mechanisms coexist:
// pre-emptive widening (start wide when the recent population keeps
// failing overlap) and the per-request fallback pass. When widening
// already started a request at the fallback top-k, the fallback pass
// has no further room and does not run.
type Controller struct {
	cfg    Config
	window *Window
}

// NewController creates a controller with its own window.
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg:    cfg,
		window: NewWindow(cfg.WindowSize),
	}
}

// #endregion controller

// #region pick-top-k

// PickTopK returns the top-k for the first retrieval attempt and
// whether pre-emptive widening fired. defaultK and fallbackK are the
// tenant's resolved settings.
func (c *Controller) PickTopK(defaultK, fallbackK int) (topK int, widened bool) {
	if c.cfg.PreemptiveWiden && c.window.Rate() >= c.cfg.RateThreshold {
		return fallbackK, true
	}
	return defaultK, false
}

// ShouldEscalate reports whether a failed first pass warrants the
// single wider retry: the reason must be a low-overlap failure and
// the first pass must have run below the fallback top-k.
func (c *Controller) ShouldEscalate(reason gate.Reason, topKUsed, fallbackK int) bool {
	return reason.IsLowOverlap() && topKUsed < fallbackK
}

// #endregion pick-top-k

// #region record

// RecordOutcome appends the final gate reason of a request to the
// window. Only the final outcome is recorded: a first pass that was
// rescued by the fallback does not count as a failure.
func (c *Controller) RecordOutcome(reason gate.Reason) {
	c.window.Record(reason.IsLowOverlap())
}

// Rate exposes the current rolling low-overlap rate.
func (c *Controller) Rate() float64 {
	return c.window.Rate()
}

// #endregion record
