package engine

// MaxHintTier caps every hint ladder.
const MaxHintTier = 3

// HintLadder is a monotonic hint counter capped at Max. It is narrative
// flavor only; validators never read it.
type HintLadder struct {
	Level int
	Max   int
}

func NewHintLadder() HintLadder { return HintLadder{Max: MaxHintTier} }

// Escalate moves one tier up and reports whether the tier changed.
func (h HintLadder) Escalate() (HintLadder, bool) {
	top := h.top()
	if h.Level >= top {
		return h, false
	}
	h.Level++
	return h, true
}

// Raise sets the tier to at least level, capped.
func (h HintLadder) Raise(level int) HintLadder {
	top := h.top()
	if level > top {
		level = top
	}
	if level > h.Level {
		h.Level = level
	}
	return h
}

// Exhausted reports whether the top tier is reached.
func (h HintLadder) Exhausted() bool {
	top := h.top()
	return h.Level >= top
}

func (h HintLadder) top() int {
	if h.Max <= 0 {
		return MaxHintTier
	}
	return h.Max
}
