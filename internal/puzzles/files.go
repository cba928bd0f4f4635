package puzzles

import (
	"fmt"
	"strings"

	"github.com/DaanHessen/snappr/internal/engine"
)

type Bin string

const (
	BinDesk       Bin = "desk"
	BinQuarantine Bin = "quarantine"
)

type FileCard struct {
	ID       string
	Name     string
	Note     string
	Artifact bool
}

var fileCards = []FileCard{
	{"f1", "IMG_0412_fries.png", "Fork tines fuse into the plate rim; perspective bends.", true},
	{"f2", "IMG_0413_fries.png", "Consistent overhead plane; rim and cutlery agree.", false},
	{"f3", "IMG_0414_fries.png", "Table edge warps behind the dish; shadows disagree.", true},
}

// FilesBoard maps each file id to the bin it sits in.
type FilesBoard struct {
	Where map[string]Bin
}

// Files is artifact triage: quarantine the generated images only.
type Files struct{}

func (Files) ID() engine.PuzzleID     { return engine.PuzzleFiles }
func (Files) Screen() engine.ScreenID { return engine.ScreenFiles }
func (Files) Title() string           { return "Artifact Triage (FILES)" }

func (Files) Intro() []string {
	return []string{
		"Puzzle 4: Files — Artifact Triage (FILES) — Earn KEY-4",
		"Principles: No AI Artifacts; perspective coherence.",
		"Commands: quarantine <f1|f2|f3>, restore <file>, info <file>.",
		sep,
	}
}

func (Files) NewBoard(*engine.Stream) engine.Board {
	w := map[string]Bin{}
	for _, f := range fileCards {
		w[f.ID] = BinDesk
	}
	return FilesBoard{Where: w}
}

func (Files) IsSolved(board engine.Board) bool {
	w := board.(FilesBoard).Where
	return w["f1"] == BinQuarantine && w["f3"] == BinQuarantine && w["f2"] != BinQuarantine
}

func fileCard(id string) (FileCard, bool) {
	for _, f := range fileCards {
		if f.ID == id {
			return f, true
		}
	}
	return FileCard{}, false
}

func (p Files) Mutate(board engine.Board, ev engine.Event) (engine.Board, engine.Feedback, error) {
	old := board.(FilesBoard)
	var fb engine.Feedback
	id := ev.Arg(0)
	card, ok := fileCard(id)
	var bin Bin
	switch ev.Verb {
	case "quarantine", "q":
		bin = BinQuarantine
	case "restore", "desk":
		bin = BinDesk
	case "info":
		if !ok {
			return board, fb, fmt.Errorf("%w: unknown file %q", engine.ErrInvalidEvent, id)
		}
		fb.Lines = []string{fmt.Sprintf("%s: %s", card.Name, card.Note)}
		return board, fb, nil
	default:
		return board, fb, engine.ErrUnknownCommand
	}
	if !ok {
		return board, fb, fmt.Errorf("%w: unknown file %q", engine.ErrInvalidEvent, id)
	}
	b := FilesBoard{Where: make(map[string]Bin, len(old.Where))}
	for k, v := range old.Where {
		b.Where[k] = v
	}
	b.Where[id] = bin
	fb.Lines = []string{fmt.Sprintf("%s → %s", card.Name, bin)}
	fb = solvedLines(p.IsSolved(old), p.IsSolved(b), fb,
		"> evaluating…",
		"ARTIFACTS ISOLATED.",
		"KEY-4: TRUE-PLANE",
		"(“True plane” echoes the perspective-coherence requirement.)",
	)
	return b, fb, nil
}

func (Files) Render(board engine.Board) string {
	b := board.(FilesBoard)
	var desk, q []string
	for _, f := range fileCards {
		label := fmt.Sprintf("[%s] %s", f.ID, f.Name)
		if b.Where[f.ID] == BinQuarantine {
			q = append(q, label)
		} else {
			desk = append(desk, label)
		}
	}
	return fmt.Sprintf("DESK:       %s\nQUARANTINE: %s", strings.Join(desk, "  "), strings.Join(q, "  "))
}
