package escalate

// #region imports
import (
	"sync"
)

// #endregion

// #region window
// Window is a bounded FIFO of low-overlap outcomes shared across
// requests within one process. It only ever answers "what fraction of
// recent requests failed on overlap" — individual entries are never
// replayed. Safe for concurrent use.
type Window struct {
	mu   sync.Mutex
	buf  []bool
	head int
	size int
}

// NewWindow creates a window holding at most capacity outcomes.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{buf: make([]bool, capacity)}
}

// #endregion window

// #region record

// Record appends one outcome, evicting the oldest entry once the
// window is full.
func (w *Window) Record(lowOverlap bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf[w.head] = lowOverlap
	w.head = (w.head + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
}

// #endregion record

// #region rate

// Rate returns the fraction of recorded outcomes that were
// low-overlap failures, 0.0 for an empty window.
func (w *Window) Rate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < w.size; i++ {
		if w.buf[i] {
			hits++
		}
	}
	return float64(hits) / float64(w.size)
}

// Len returns the number of recorded outcomes, at most the capacity.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// #endregion rate
