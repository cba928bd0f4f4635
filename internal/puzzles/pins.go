package puzzles

import (
	"fmt"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

// PinsTarget is the letter order that opens the access path.
const PinsTarget = "SNRFDFN"

type PinTile struct {
	Letter string
	Title  string
	Rule   string
}

var pinTiles = []PinTile{
	{"S", "Style Surface", "same background material; plating shouldn’t stand out; color profile consistent with brand palette."},
	{"N", "No Distractions", "clean background; ≤1 blurred, non-distracting element; no text/logos."},
	{"R", "Rule of Thirds", "primary subject near intersection; respect breathing room; keep diagonals calm."},
	{"F", "Frame Tight", "crop in to details; avoid dead space; hint at texture; don’t cut major lines."},
	{"D", "Depth Cue", "foreground suggestive; subtle parallax; shallow depth of field allowed if SNR remains intact."},
	{"F", "Flat Lighting", "no harsh shadows; softbox or north light; product reads true-to-color; tone map gently."},
	{"N", "Neutral White", "white balance to neutral; remove casts; use gray card reference; prefer ∆E < 3."},
}

// PinsBoard is the pinned-items strip. Picked is the 0-based tile waiting for
// a second pick, or -1.
type PinsBoard struct {
	Tiles  []PinTile
	Picked int
}

func (b PinsBoard) Letters() string {
	var sb strings.Builder
	for _, t := range b.Tiles {
		sb.WriteString(t.Letter)
	}
	return sb.String()
}

func (b PinsBoard) clone() PinsBoard {
	b.Tiles = append([]PinTile(nil), b.Tiles...)
	return b
}

// Pins asks the player to reorder the pinned rule fragments.
type Pins struct{}

func (Pins) ID() engine.PuzzleID     { return engine.PuzzlePins }
func (Pins) Screen() engine.ScreenID { return engine.ScreenPins }
func (Pins) Title() string           { return "Pin Heist (PINS)" }

func (Pins) Intro() []string {
	return []string{
		"Puzzle 1: Pin Heist (PINS)",
		"The pinned rule fragments were scrambled. Restore their order.",
		"Commands: swap <i> <j>, pick <i> (pick twice to swap), move <i> <j>.",
		sep,
	}
}

// NewBoard shuffles the tiles. A shuffle that lands on the answer swaps the
// first two tiles so the board never starts solved.
func (Pins) NewBoard(stream *engine.Stream) engine.Board {
	s := streamOr(stream, engine.PuzzlePins)
	b := PinsBoard{Tiles: append([]PinTile(nil), pinTiles...), Picked: -1}
	s.Shuffle(len(b.Tiles), func(i, j int) { b.Tiles[i], b.Tiles[j] = b.Tiles[j], b.Tiles[i] })
	if b.Letters() == PinsTarget {
		b.Tiles[0], b.Tiles[1] = b.Tiles[1], b.Tiles[0]
	}
	return b
}

func (p Pins) IsSolved(b engine.Board) bool {
	return b.(PinsBoard).Letters() == PinsTarget
}

func (p Pins) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	b := board.(PinsBoard).clone()
	before := p.IsSolved(b)
	n := len(b.Tiles)
	var fb engine.Feedback
	switch ev.Verb {
	case "swap":
		if len(ev.Args) != 2 {
			return board, fb, fmt.Errorf("%w: swap needs two positions", engine.ErrInvalidEvent)
		}
		i, err := index(ev.Args[0], n)
		if err != nil {
			return board, fb, err
		}
		j, err := index(ev.Args[1], n)
		if err != nil {
			return board, fb, err
		}
		b.Tiles[i], b.Tiles[j] = b.Tiles[j], b.Tiles[i]
		b.Picked = -1
		fb.Lines = append(fb.Lines, fmt.Sprintf("swapped %d and %d → %s", i+1, j+1, b.Letters()))
	case "pick":
		if len(ev.Args) != 1 {
			return board, fb, fmt.Errorf("%w: pick needs one position", engine.ErrInvalidEvent)
		}
		i, err := index(ev.Args[0], n)
		if err != nil {
			return board, fb, err
		}
		switch {
		case b.Picked < 0:
			b.Picked = i
			fb.Lines = append(fb.Lines, fmt.Sprintf("picked %d (%s)", i+1, b.Tiles[i].Title))
		case b.Picked == i:
			b.Picked = -1
			fb.Lines = append(fb.Lines, "pick cleared.")
		default:
			b.Tiles[b.Picked], b.Tiles[i] = b.Tiles[i], b.Tiles[b.Picked]
			fb.Lines = append(fb.Lines, fmt.Sprintf("swapped %d and %d → %s", b.Picked+1, i+1, b.Letters()))
			b.Picked = -1
		}
	case "move":
		if len(ev.Args) != 2 {
			return board, fb, fmt.Errorf("%w: move needs two positions", engine.ErrInvalidEvent)
		}
		from, err := index(ev.Args[0], n)
		if err != nil {
			return board, fb, err
		}
		to, err := index(ev.Args[1], n)
		if err != nil {
			return board, fb, err
		}
		t := b.Tiles[from]
		rest := append(append([]PinTile(nil), b.Tiles[:from]...), b.Tiles[from+1:]...)
		b.Tiles = append(append(append([]PinTile(nil), rest[:to]...), t), rest[to:]...)
		b.Picked = -1
		fb.Lines = append(fb.Lines, fmt.Sprintf("moved %d to %d → %s", from+1, to+1, b.Letters()))
	default:
		return board, fb, engine.ErrUnknownCommand
	}
	fb = solvedLines(before, p.IsSolved(b), fb, "ACCESS PATH: OPEN", "Verified: moving to PINS.", "KEY-1: SNRFDFN")
	return b, fb, nil
}

func (p Pins) Render(board engine.Board) string {
	b := board.(PinsBoard)
	var sb strings.Builder
	for i, t := range b.Tiles {
		mark := " "
		if i == b.Picked {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s%d. [%s] %s: %s\n", mark, i+1, t.Letter, t.Title, t.Rule)
	}
	status := "ACCESS PATH: JAMMED"
	if p.IsSolved(b) {
		status = "ACCESS PATH: OPEN"
	}
	fmt.Fprintf(&sb, "\n%s  %s", b.Letters(), status)
	return sb.String()
}
