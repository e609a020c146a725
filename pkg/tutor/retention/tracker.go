package retention

// Tracker keeps the ordered retention history of one session.
// It is not safe for concurrent use; the owning session serializes access.
type Tracker struct {
	history []float64
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record appends a score. Scores outside [0,1] are clamped.
func (t *Tracker) Record(value float64) {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	t.history = append(t.history, value)
}

// Average is sum(history)/len(history), recomputed over the full history.
// It returns 0 before the first Record.
func (t *Tracker) Average() float64 {
	if len(t.history) == 0 {
		return 0
	}
	var sum float64
	for _, v := range t.history {
		sum += v
	}
	return sum / float64(len(t.history))
}

// Latest returns the most recent score
func (t *Tracker) Latest() (float64, bool) {
	if len(t.history) == 0 {
		return 0, false
	}
	return t.history[len(t.history)-1], true
}

func (t *Tracker) Len() int {
	return len(t.history)
}

// History returns a copy of the recorded scores in order
func (t *Tracker) History() []float64 {
	out := make([]float64, len(t.history))
	copy(out, t.history)
	return out
}
