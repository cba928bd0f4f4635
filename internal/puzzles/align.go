package puzzles

import (
	"fmt"
	"math"
	"strconv"

	"github.com/DaanHessen/snappr/internal/engine"
)

const (
	alignTarget = 0.08
	alignTol    = 0.01
)

// Pads are the four paddings as fractions of the frame.
type Pads struct {
	Left, Right, Top, Bottom float64
}

func (p Pads) InRange() bool {
	ok := func(v float64) bool { return math.Abs(v-alignTarget) <= alignTol+1e-9 }
	return ok(p.Left) && ok(p.Right) && ok(p.Top) && ok(p.Bottom)
}

// AlignBoard is the dish centre inside a square frame. Locked is set once
// the frame snaps on target.
type AlignBoard struct {
	X, Y   float64
	Locked bool
}

// Align frames a round dish at 8% padding on every side.
type Align struct {
	Size float64
}

func NewAlign(size float64) Align {
	if size <= 0 {
		size = 600
	}
	return Align{Size: size}
}

func (Align) ID() engine.PuzzleID     { return engine.PuzzleAlign }
func (Align) Screen() engine.ScreenID { return engine.ScreenAlign }
func (Align) Title() string           { return "Alignment Grid (ALIGN)" }

func (Align) Intro() []string {
	return []string{
		"Puzzle 7: Alignment Grid (ALIGN) — Earn KEY-7",
		"Principle: Framing — centered; ≥5%, ideal 8–10% padding; no crop.",
		"Mechanic: nudge up|down|left|right [n], or move <x> <y>. All sides must read 0.08 ± 0.01.",
		sep,
	}
}

func (a Align) radius() float64 { return a.Size * (0.5 - alignTarget) }

func (a Align) step() float64 { return math.Max(1, math.Round(a.Size*0.002)) }

func (a Align) clamp(x, y float64) (float64, float64) {
	r := a.radius()
	lo, hi := r, a.Size-r
	return math.Min(math.Max(x, lo), hi), math.Min(math.Max(y, lo), hi)
}

// Pads reports the paddings for a board.
func (a Align) Pads(b AlignBoard) Pads {
	r := a.radius()
	return Pads{
		Left:   (b.X - r) / a.Size,
		Right:  (a.Size - (b.X + r)) / a.Size,
		Top:    (b.Y - r) / a.Size,
		Bottom: (a.Size - (b.Y + r)) / a.Size,
	}
}

// NewBoard places the dish off-centre on both axes, far enough out that no
// side starts in range.
func (a Align) NewBoard(stream *engine.Stream) engine.Board {
	s := streamOr(stream, engine.PuzzleAlign)
	slack := a.Size/2 - a.radius()
	floor := a.Size * (alignTol * 2)
	off := func() float64 {
		d := floor + s.Float64()*(slack-floor)
		if s.Intn(2) == 0 {
			d = -d
		}
		return d
	}
	x, y := a.clamp(a.Size/2+off(), a.Size/2+off())
	return AlignBoard{X: x, Y: y}
}

func (a Align) IsSolved(board engine.Board) bool {
	return a.Pads(board.(AlignBoard)).InRange()
}

func (a Align) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	old := board.(AlignBoard)
	b := old
	var fb engine.Feedback
	if b.Locked {
		fb.Lines = []string{"frame locked."}
		if ev.Verb != "nudge" && ev.Verb != "move" {
			return board, fb, engine.ErrUnknownCommand
		}
		return board, fb, nil
	}
	switch ev.Verb {
	case "nudge":
		n := 1
		if len(ev.Args) > 1 {
			v, err := strconv.Atoi(ev.Args[1])
			if err != nil || v < 1 {
				return board, fb, fmt.Errorf("%w: bad nudge count %q", engine.ErrInvalidEvent, ev.Args[1])
			}
			n = v
		}
		d := a.step() * float64(n)
		switch ev.Arg(0) {
		case "up":
			b.Y -= d
		case "down":
			b.Y += d
		case "left":
			b.X -= d
		case "right":
			b.X += d
		default:
			return board, fb, fmt.Errorf("%w: nudge up|down|left|right", engine.ErrInvalidEvent)
		}
	case "move":
		if len(ev.Args) != 2 {
			return board, fb, fmt.Errorf("%w: move <x> <y>", engine.ErrInvalidEvent)
		}
		x, errX := strconv.ParseFloat(ev.Args[0], 64)
		y, errY := strconv.ParseFloat(ev.Args[1], 64)
		if errX != nil || errY != nil {
			return board, fb, fmt.Errorf("%w: move needs numbers", engine.ErrInvalidEvent)
		}
		b.X, b.Y = x, y
	default:
		return board, fb, engine.ErrUnknownCommand
	}
	b.X, b.Y = a.clamp(b.X, b.Y)
	p := a.Pads(b)
	fb.Lines = []string{fmt.Sprintf("L %.3f  R %.3f  T %.3f  B %.3f", p.Left, p.Right, p.Top, p.Bottom)}
	if p.InRange() {
		b.X, b.Y, b.Locked = a.Size/2, a.Size/2, true
	}
	fb = solvedLines(a.IsSolved(old), a.IsSolved(b), fb,
		"> verifying frame…",
		"CENTER CONFIRMED.",
		"KEY-7: PCT-08",
		"“Precision is tasty.”",
	)
	return b, fb, nil
}

func (a Align) Render(board engine.Board) string {
	b := board.(AlignBoard)
	p := a.Pads(b)
	state := "adjusting"
	if b.Locked {
		state = "LOCKED"
	}
	return fmt.Sprintf("dish at (%.0f, %.0f) in %.0f×%.0f  [%s]\nleft %.3f  right %.3f  top %.3f  bottom %.3f  (target 0.08 ± 0.01)",
		b.X, b.Y, a.Size, a.Size, state, p.Left, p.Right, p.Top, p.Bottom)
}
