package puzzles

import (
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

const (
	SnippetExpected = "center=true; padding=08; props<=1; text=forbidden;"
	SnippetEncoded  = "fhqwhu=wuxh; sdgglqj=08; sursv<=1; whaw=iruelgghq;"
)

var snippetHints = [...]string{
	"HINT: The syntax is sound. Only the alphabet seems... rotated.",
	"HINT: The words look familiar, but they’ve slid a few steps sideways. Realign the frame.",
	"HINT: Shift each letter backward by three to restore the config. Spaces and punctuation must match.",
}

type SnippetBoard struct {
	Hints    engine.HintLadder
	Fails    int
	Accepted bool
}

// Snippet is the cipher console: decode the shifted line and run it.
type Snippet struct{}

func (Snippet) ID() engine.PuzzleID     { return engine.PuzzleSnippet }
func (Snippet) Screen() engine.ScreenID { return engine.ScreenSnippet }
func (Snippet) Title() string           { return "Snippet Cipher (SNIPPET)" }

func (Snippet) Intro() []string {
	return []string{
		"Initializing...",
		"0.0002ms ok!",
		sep,
		"Puzzle 2: Snippet Cipher (SNIPPET) — Earn KEY-2",
		"Mechanic: Decode the line (Caesar-shifted). Then enter the exact config string.",
		SnippetEncoded,
		"Tip: Symbols and numbers are fine; the alphabet is off.",
		sep,
	}
}

func (Snippet) NewBoard(*engine.Stream) engine.Board {
	return SnippetBoard{Hints: engine.NewHintLadder()}
}

func (Snippet) IsSolved(b engine.Board) bool { return b.(SnippetBoard).Accepted }

func (s Snippet) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	b := board.(SnippetBoard)
	var fb engine.Feedback
	switch {
	case ev.Verb == "help":
		fb.Lines = []string{
			"Help: List of available commands",
			">help", ">hint", ">run <config>", ">clear", ">exit",
			"",
			"Shortcut: paste the exact config and press Enter.",
		}
	case ev.Verb == "hint":
		var changed bool
		b.Hints, changed = b.Hints.Escalate()
		if changed {
			fb.Lines = []string{snippetHints[b.Hints.Level-1]}
		}
	case ev.Verb == "clear":
		fb.Clear = true
		fb.Lines = []string{"clear"}
	case ev.Verb == "exit":
		fb.Exit = true
		fb.Lines = []string{"Goodbye! Comeback soon."}
	case ev.Verb == "run" && ev.Rest() == "":
		fb.Lines = []string{"Usage: run <config>"}
	case ev.Verb == "run":
		return s.run(b, ev.Rest())
	case ev.Raw == SnippetExpected:
		return s.run(b, ev.Raw)
	default:
		return board, engine.Feedback{Lines: []string{"Unknown command. Type help."}}, engine.ErrUnknownCommand
	}
	fb.Hint = b.Hints.Level
	return b, fb, nil
}

func (s Snippet) run(b SnippetBoard, cfg string) (engine.Board, engine.Feedback, error) {
	fb := engine.Feedback{Lines: []string{"RUN config…"}}
	if strings.TrimSpace(cfg) == SnippetExpected {
		before := b.Accepted
		b.Accepted = true
		fb = solvedLines(before, true, fb,
			"CONFIG ACCEPTED.",
			"KEY-2: OAK",
			"“The table approves. It’s very judgmental.”",
			"Next: “Check for clones.” → BOOKMARKS",
		)
		fb.Hint = b.Hints.Level
		return b, fb, nil
	}
	b.Fails++
	fb.Lines = append(fb.Lines, "CONFIG REJECTED. Exact match required.")
	var changed bool
	if b.Hints, changed = b.Hints.Escalate(); changed {
		fb.Lines = append(fb.Lines, snippetHints[b.Hints.Level-1])
	}
	fb.Hint = b.Hints.Level
	return b, fb, nil
}

func (Snippet) Render(board engine.Board) string {
	b := board.(SnippetBoard)
	if b.Accepted {
		return "CONFIG ACCEPTED"
	}
	return SnippetEncoded
}
