package puzzles

import (
	"fmt"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

var finaleTarget = []string{"S", "N", "R", "F", "D", "F", "N"}

type PromptTile struct {
	ID     int
	Letter string
	Title  string
	Body   string
}

var promptLibrary = []PromptTile{
	{Letter: "S", Title: "S — match style ref", Body: "S — match style ref: pale oak overhead; no takeout unless shown; plate/containerize"},
	{Letter: "N", Title: "N — reject geometry glitches", Body: "N — reject perspective/geometry glitches; tableware coherent"},
	{Letter: "R", Title: "R — natural textures", Body: "R — natural textures; no plastic/AI sheen"},
	{Letter: "F", Title: "F — centered subject", Body: "F — centered subject; ~8% safe padding; no crop"},
	{Letter: "D", Title: "D — new instance", Body: "D — new instance; not a derivative; when in doubt, fail"},
	{Letter: "F", Title: "F — sides & counts", Body: "F — sides only if in the name; ±1 count unless named (name > desc > refs)"},
	{Letter: "N", Title: "N — no text/logos", Body: "N — ≤1 subtle background prop; no text/logos"},
}

// FinaleBoard is the tray of unplaced tiles and the seven slots. A zero ID
// marks an empty slot.
type FinaleBoard struct {
	Tray  []PromptTile
	Slots [7]PromptTile
	Key   string
}

func (b FinaleBoard) clone() FinaleBoard {
	b.Tray = append([]PromptTile(nil), b.Tray...)
	return b
}

// Finale assembles the seven principles in order.
type Finale struct{}

func (Finale) ID() engine.PuzzleID     { return engine.PuzzleFinale }
func (Finale) Screen() engine.ScreenID { return engine.ScreenFinale }
func (Finale) Title() string           { return "Prompt Assembler (FINAL)" }

func (Finale) Intro() []string {
	return []string{
		"Puzzle 8: Prompt Assembler (FINAL)",
		"Goal: assemble the seven principles in order S N R F D F N.",
		"Mechanic: place <tile> <slot>, clear <slot>, key <text> for flavor.",
		sep,
	}
}

func (Finale) NewBoard(stream *engine.Stream) engine.Board {
	s := streamOr(stream, engine.PuzzleFinale)
	tray := make([]PromptTile, len(promptLibrary))
	for i, t := range promptLibrary {
		t.ID = i + 1
		tray[i] = t
	}
	s.Shuffle(len(tray), func(i, j int) { tray[i], tray[j] = tray[j], tray[i] })
	return FinaleBoard{Tray: tray}
}

func (Finale) IsSolved(board engine.Board) bool {
	b := board.(FinaleBoard)
	for i, want := range finaleTarget {
		if b.Slots[i].ID == 0 || b.Slots[i].Letter != want {
			return false
		}
	}
	return true
}

// take removes the tile with id from the tray or a slot.
func (b *FinaleBoard) take(id int) (PromptTile, bool) {
	for i, t := range b.Tray {
		if t.ID == id {
			b.Tray = append(b.Tray[:i:i], b.Tray[i+1:]...)
			return t, true
		}
	}
	for i, t := range b.Slots {
		if t.ID == id {
			b.Slots[i] = PromptTile{}
			return t, true
		}
	}
	return PromptTile{}, false
}

func (p Finale) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	old := board.(FinaleBoard)
	b := old.clone()
	var fb engine.Feedback
	switch ev.Verb {
	case "place":
		if len(ev.Args) != 2 {
			return board, fb, fmt.Errorf("%w: place <tile> <slot>", engine.ErrInvalidEvent)
		}
		tileIdx, err := index(ev.Args[0], len(promptLibrary))
		if err != nil {
			return board, fb, err
		}
		slot, err := index(ev.Args[1], len(b.Slots))
		if err != nil {
			return board, fb, err
		}
		t, ok := b.take(tileIdx + 1)
		if !ok {
			return board, fb, fmt.Errorf("%w: no tile %d", engine.ErrInvalidEvent, tileIdx+1)
		}
		if prev := b.Slots[slot]; prev.ID != 0 {
			b.Tray = append(b.Tray, prev)
		}
		b.Slots[slot] = t
		fb.Lines = []string{fmt.Sprintf("slot %d ← %s", slot+1, t.Title)}
	case "clear":
		slot, err := index(ev.Arg(0), len(b.Slots))
		if err != nil {
			return board, fb, err
		}
		if t := b.Slots[slot]; t.ID != 0 {
			b.Slots[slot] = PromptTile{}
			b.Tray = append(b.Tray, t)
		}
		fb.Lines = []string{fmt.Sprintf("slot %d cleared.", slot+1)}
	case "key":
		b.Key = ev.Rest()
		fb.Lines = []string{fmt.Sprintf("key noted: %s", b.Key)}
	default:
		return board, fb, engine.ErrUnknownCommand
	}
	fb = solvedLines(p.IsSolved(old), p.IsSolved(b), fb,
		"> verifying assembled prompt…",
		"ACCESS GRANTED.",
		"Final ordering accepted: S N R F D F N",
	)
	return b, fb, nil
}

func (Finale) Render(board engine.Board) string {
	b := board.(FinaleBoard)
	var sb strings.Builder
	sb.WriteString("SLOTS\n")
	for i, t := range b.Slots {
		label := "—"
		if t.ID != 0 {
			label = fmt.Sprintf("(%d) %s", t.ID, t.Title)
		}
		fmt.Fprintf(&sb, " %d. %s\n", i+1, label)
	}
	sb.WriteString("TRAY\n")
	for _, t := range b.Tray {
		fmt.Fprintf(&sb, " (%d) %s\n", t.ID, t.Body)
	}
	return strings.TrimRight(sb.String(), "\n")
}
