package puzzles

import (
	"fmt"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

type BookmarkNote struct {
	ID    string
	Title string
	Body  string
}

var bookmarkNotes = []BookmarkNote{
	{"A", "A — Observation", "Crisp fries on pale oak, overhead. Spiral cut differs from refs; plate rim unique."},
	{"B", "B — Observation", "Fries on pale oak, overhead. Same spiral pattern as ref #2, same plate rim scuff, identical crumb cluster at 2 o’clock."},
	{"C", "C — Observation", "Straight-cut fries; plate style differs, same surface. Lighting softer than refs but within range."},
}

const bookmarksClone = "B"

var bookmarkHints = [...]string{
	"HINT: Distinctiveness fails when specific scars repeat.",
	"HINT: Look for identical micro-artifacts and arrangement: texture clusters, edge damage, repeating geometry.",
	"HINT: The clone mirrors a ref’s spiral pattern, a plate-rim scuff, and a crumb cluster near 2 o’clock.",
}

type BookmarksBoard struct {
	Picked string
	Purged bool
	Hints  engine.HintLadder
}

// Bookmarks asks which of three notes describes a derivative image.
type Bookmarks struct{}

func (Bookmarks) ID() engine.PuzzleID     { return engine.PuzzleBookmarks }
func (Bookmarks) Screen() engine.ScreenID { return engine.ScreenBookmarks }
func (Bookmarks) Title() string           { return "Spot the Clone (BOOKMARKS)" }

func (Bookmarks) Intro() []string {
	return []string{
		sep,
		"BOOKMARKS online.",
		"Three notes. One is derivative. Type A, B or C (or select <x> then submit).",
		"Distinctiveness principle in effect.",
		sep,
	}
}

func (Bookmarks) NewBoard(*engine.Stream) engine.Board {
	return BookmarksBoard{Hints: engine.NewHintLadder()}
}

func (Bookmarks) IsSolved(b engine.Board) bool { return b.(BookmarksBoard).Purged }

func (p Bookmarks) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	b := board.(BookmarksBoard)
	var fb engine.Feedback
	switch ev.Verb {
	case "a", "b", "c":
		return p.evaluate(b, strings.ToUpper(ev.Verb))
	case "select":
		id := strings.ToUpper(ev.Arg(0))
		if !validNote(id) {
			return board, fb, fmt.Errorf("%w: pick A, B or C", engine.ErrInvalidEvent)
		}
		b.Picked = id
		fb.Lines = []string{fmt.Sprintf("selected %s.", id)}
	case "submit":
		if b.Picked == "" {
			fb.Lines = []string{"Pick A, B, or C first."}
			break
		}
		return p.evaluate(b, b.Picked)
	case "?", "hint":
		level := b.Hints.Level + 1
		if level > engine.MaxHintTier {
			level = engine.MaxHintTier
		}
		b.Hints = b.Hints.Raise(level)
		fb.Lines = []string{bookmarkHints[level-1]}
	default:
		return board, fb, engine.ErrUnknownCommand
	}
	fb.Hint = b.Hints.Level
	return b, fb, nil
}

func validNote(id string) bool {
	for _, n := range bookmarkNotes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (p Bookmarks) evaluate(b BookmarksBoard, choice string) (engine.Board, engine.Feedback, error) {
	b.Picked = choice
	fb := engine.Feedback{Lines: []string{sep, fmt.Sprintf("> evaluating choice %s…", choice)}}
	if choice == bookmarksClone {
		before := b.Purged
		b.Purged = true
		fb = solvedLines(before, true, fb, "CLONE PURGED.", "KEY-3: NEW-DAY", "“Copies are flattery. I am bored of flattery.”")
		fb.Hint = b.Hints.Level
		return b, fb, nil
	}
	fb.Lines = append(fb.Lines, "Not quite.")
	var changed bool
	if b.Hints, changed = b.Hints.Escalate(); changed {
		fb.Lines = append(fb.Lines, bookmarkHints[b.Hints.Level-1])
	}
	fb.Lines = append(fb.Lines, "Try again. Type A, B or C.", sep)
	fb.Hint = b.Hints.Level
	return b, fb, nil
}

func (Bookmarks) Render(board engine.Board) string {
	b := board.(BookmarksBoard)
	var sb strings.Builder
	for _, n := range bookmarkNotes {
		mark := " "
		if n.ID == b.Picked {
			mark = ">"
		}
		fmt.Fprintf(&sb, "%s %s\n  %s\n", mark, n.Title, n.Body)
	}
	if b.Purged {
		sb.WriteString("\nCLONE PURGED")
	}
	return strings.TrimRight(sb.String(), "\n")
}
