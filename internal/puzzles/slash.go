package puzzles

import (
	"fmt"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

type SlashRow struct {
	ID    string
	Name  string
	Desc  string
	Side  bool
	Exact bool
}

var slashRows = []SlashRow{
	{ID: "A", Name: `"2pc Tenders with Fries"`},
	{ID: "B", Name: `"BBQ Ribs"`, Desc: `Desc: "Comes with two sides (optional)."`},
	{ID: "C", Name: `"Chicken Wings"`, Desc: `(no number in name; refs show 7–9)`},
}

var slashAnswer = map[string][2]bool{
	"A": {true, true},
	"B": {false, false},
	"C": {false, false},
}

type SlashBoard struct {
	Rows []SlashRow
}

// Slash is the menu audit: set side and exact-count chips per item.
type Slash struct{}

func (Slash) ID() engine.PuzzleID     { return engine.PuzzleSlash }
func (Slash) Screen() engine.ScreenID { return engine.ScreenSlash }
func (Slash) Title() string           { return "Slash Search Audit (SLASH)" }

func (Slash) Intro() []string {
	return []string{
		"Items:",
		`A) "2pc Tenders with Fries"`,
		`B) "BBQ Ribs" — Desc: "Comes with two sides (optional)."`,
		`C) "Chicken Wings" — (no number; refs show 7–9)`,
		sep,
		"Set the chips: side <row> yes|no, exact <row> yes|no. When correct, the audit will complete.",
	}
}

func (Slash) NewBoard(*engine.Stream) engine.Board {
	return SlashBoard{Rows: append([]SlashRow(nil), slashRows...)}
}

func (Slash) IsSolved(board engine.Board) bool {
	for _, r := range board.(SlashBoard).Rows {
		want := slashAnswer[r.ID]
		if r.Side != want[0] || r.Exact != want[1] {
			return false
		}
	}
	return true
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

func (p Slash) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	old := board.(SlashBoard)
	var fb engine.Feedback
	if ev.Verb != "side" && ev.Verb != "exact" {
		return board, fb, engine.ErrUnknownCommand
	}
	if len(ev.Args) != 2 {
		return board, fb, fmt.Errorf("%w: %s <row> yes|no", engine.ErrInvalidEvent, ev.Verb)
	}
	id := strings.ToUpper(ev.Args[0])
	var v bool
	switch ev.Arg(1) {
	case "yes", "y":
		v = true
	case "no", "n":
	default:
		return board, fb, fmt.Errorf("%w: expected yes or no", engine.ErrInvalidEvent)
	}
	b := SlashBoard{Rows: append([]SlashRow(nil), old.Rows...)}
	found := false
	for i := range b.Rows {
		if b.Rows[i].ID != id {
			continue
		}
		found = true
		if ev.Verb == "side" {
			b.Rows[i].Side = v
		} else {
			b.Rows[i].Exact = v
		}
	}
	if !found {
		return board, fb, fmt.Errorf("%w: unknown row %q", engine.ErrInvalidEvent, id)
	}
	fb.Lines = []string{fmt.Sprintf("%s %s → %s", id, ev.Verb, yesNo(v))}
	fb = solvedLines(p.IsSolved(old), p.IsSolved(b), fb,
		"> evaluating selections…",
		"AUDIT CLEAN.",
		"KEY-5: NAME-WINS",
		"“Names are law. Descriptions are gossip.”",
	)
	return b, fb, nil
}

func (Slash) Render(board engine.Board) string {
	var sb strings.Builder
	for _, r := range board.(SlashBoard).Rows {
		fmt.Fprintf(&sb, "%s) %-28s side:%-3s exact:%-3s %s\n", r.ID, r.Name, yesNo(r.Side), yesNo(r.Exact), r.Desc)
	}
	return strings.TrimRight(sb.String(), "\n")
}
