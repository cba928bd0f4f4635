package puzzles

import (
	"fmt"

	"github.com/DaanHessen/snappr/internal/engine"
)

var (
	surfaces   = []string{"oak", "stone", "laminate"}
	servewares = []string{"plate", "container"}
)

// SwitchboardBoard holds the two toggles; empty means unset.
type SwitchboardBoard struct {
	Surface   string
	Serveware string
}

// Switchboard matches the style reference: pale oak, overhead, plate.
type Switchboard struct{}

func (Switchboard) ID() engine.PuzzleID     { return engine.PuzzleSwitchboard }
func (Switchboard) Screen() engine.ScreenID { return engine.ScreenSwitchboard }
func (Switchboard) Title() string           { return "Style Surface Switchboard (SURFACE)" }

func (Switchboard) Intro() []string {
	return []string{
		"Puzzle 6: Style Surface Switchboard (SURFACE) — Earn KEY-6",
		"Principle: Style Consistency — match background material; plate/container rules; don’t place food straight on the background.",
		"Mechanic: surface oak|stone|laminate, serveware plate|container.",
		sep,
		"Ref: pale oak, overhead, plate (not container)",
	}
}

func (Switchboard) NewBoard(*engine.Stream) engine.Board { return SwitchboardBoard{} }

func (Switchboard) IsSolved(board engine.Board) bool {
	b := board.(SwitchboardBoard)
	return b.Surface == "oak" && b.Serveware == "plate"
}

func oneOf(v string, opts []string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

func (p Switchboard) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	old := board.(SwitchboardBoard)
	b := old
	var fb engine.Feedback
	v := ev.Arg(0)
	switch ev.Verb {
	case "surface":
		if !oneOf(v, surfaces) {
			return board, fb, fmt.Errorf("%w: surface must be oak, stone or laminate", engine.ErrInvalidEvent)
		}
		b.Surface = v
	case "serveware":
		if !oneOf(v, servewares) {
			return board, fb, fmt.Errorf("%w: serveware must be plate or container", engine.ErrInvalidEvent)
		}
		b.Serveware = v
	default:
		return board, fb, engine.ErrUnknownCommand
	}
	fb.Lines = []string{fmt.Sprintf("%s → %s", ev.Verb, v)}
	fb = solvedLines(p.IsSolved(old), p.IsSolved(b), fb,
		"> verifying selection…",
		"SURFACE LOCKED.",
		"KEY-6: OAK-OVERHEAD",
		"“The tree spirits nod.”",
	)
	return b, fb, nil
}

func (Switchboard) Render(board engine.Board) string {
	b := board.(SwitchboardBoard)
	show := func(v string) string {
		if v == "" {
			return "—"
		}
		return v
	}
	return fmt.Sprintf("SURFACE:   [%s]  (oak | stone | laminate)\nSERVEWARE: [%s]  (plate | container)", show(b.Surface), show(b.Serveware))
}
