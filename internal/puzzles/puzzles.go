// Package puzzles implements the eight validators of the sequence. Every
// puzzle is a pure engine.Puzzle: boards are values, Mutate returns a new
// board, IsSolved never looks at anything but the board.
package puzzles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

const sep = "== == == == == == == == == == == == == == == =="

// DefaultSeed drives boards when the host passes no stream.
const DefaultSeed = "snappr"

// All returns the built-in puzzles in progression order.
func All() []engine.Puzzle {
	return []engine.Puzzle{
		Pins{}, Snippet{}, Bookmarks{}, Files{}, Slash{}, Switchboard{}, NewAlign(600), Finale{},
	}
}

// ByScreen finds the puzzle mounted on screen.
func ByScreen(screen engine.ScreenID) (engine.Puzzle, bool) {
	for _, p := range All() {
		if p.Screen() == screen {
			return p, true
		}
	}
	return nil, false
}

func streamOr(s *engine.Stream, id engine.PuzzleID) *engine.Stream {
	if s != nil {
		return s
	}
	seed, _ := engine.NewSeed(DefaultSeed)
	return seed.BoardStream(id)
}

// index parses a 1-based position argument.
func index(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("%w: position %q not in 1..%d", engine.ErrInvalidEvent, arg, n)
	}
	return i - 1, nil
}

// solvedLines appends success lines only on the board's false->true edge.
func solvedLines(before, after bool, fb engine.Feedback, lines ...string) engine.Feedback {
	if !before && after {
		fb.Lines = append(fb.Lines, lines...)
		fb.Lines = append(fb.Lines, sep)
	}
	return fb
}
