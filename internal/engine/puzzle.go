package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidEvent   = errors.New("invalid event")
)

// Board is a puzzle's local state. Each puzzle asserts its own concrete type.
type Board any

// Event is one player input, already split into a verb and arguments.
type Event struct {
	Raw  string
	Verb string
	Args []string
}

// ParseEvent splits a command line. The verb is lower-cased; Raw keeps the
// trimmed original for puzzles that need exact text.
func ParseEvent(line string) Event {
	raw := strings.TrimSpace(line)
	fields := strings.Fields(raw)
	ev := Event{Raw: raw}
	if len(fields) == 0 {
		return ev
	}
	ev.Verb = strings.ToLower(fields[0])
	ev.Args = fields[1:]
	return ev
}

// Arg returns the lower-cased i-th argument or "".
func (e Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return strings.ToLower(e.Args[i])
}

// Rest returns the raw text after the verb.
func (e Event) Rest() string {
	idx := strings.IndexFunc(e.Raw, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(e.Raw[idx:])
}

// Feedback is what a mutation tells the player.
type Feedback struct {
	Lines []string
	Hint  int  // current hint tier, 0 when the puzzle has none
	Clear bool // wipe the console before appending Lines
	Exit  bool // leave to the hub
}

// Puzzle is the generic puzzle module the engine drives.
type Puzzle interface {
	ID() PuzzleID
	Screen() ScreenID
	Title() string
	Intro() []string
	NewBoard(stream *Stream) Board
	Mutate(b Board, ev Event) (Board, Feedback, error)
	IsSolved(b Board) bool
	Render(b Board) string
}

// exitDelay matches the short pause before leaving a puzzle console.
const exitDelay = 300 * time.Millisecond

// PuzzleScreen is one mounted puzzle: local board, console log, gate and the
// scope owning every timer the screen starts.
type PuzzleScreen struct {
	ctx     context.Context
	session *Session
	puzzle  Puzzle
	stream  *Stream
	board   Board
	gate    *Gate
	scope   *Scope
	log     []string
}

// MountPuzzle mounts p with a fresh board drawn from stream. A navigation the
// previous mount left pending is re-armed.
func (s *Session) MountPuzzle(ctx context.Context, p Puzzle, stream *Stream) (*PuzzleScreen, error) {
	if p == nil {
		return nil, errors.New("puzzle is nil")
	}
	rec, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	cfg, ok := s.catalog.Gate(p.ID())
	if !ok {
		cfg = GateConfig{Puzzle: p.ID(), Screen: p.Screen(), Signal: string(p.ID()) + "Solved"}
	}
	scope := s.sched.Scope()
	ps := &PuzzleScreen{
		ctx:     ctx,
		session: s,
		puzzle:  p,
		stream:  stream,
		board:   p.NewBoard(stream),
		gate:    NewGate(s, cfg, scope),
		scope:   scope,
		log:     append([]string{}, p.Intro()...),
	}
	ps.gate.Rearm(ctx, rec)
	return ps, nil
}

func (ps *PuzzleScreen) Puzzle() Puzzle   { return ps.puzzle }
func (ps *PuzzleScreen) Board() Board     { return ps.board }
func (ps *PuzzleScreen) Scope() *Scope    { return ps.scope }
func (ps *PuzzleScreen) Log() []string    { return append([]string{}, ps.log...) }
func (ps *PuzzleScreen) Solved() bool     { return ps.puzzle.IsSolved(ps.board) }
func (ps *PuzzleScreen) View() string     { return ps.puzzle.Render(ps.board) }
func (ps *PuzzleScreen) Screen() ScreenID { return ps.puzzle.Screen() }

// Completed reports whether the puzzle is recorded as solved in the session.
func (ps *PuzzleScreen) Completed() bool {
	return ps.session.Record().Completed[ps.puzzle.ID()]
}

// Dispatch applies one player event: mutate the board, re-run the validator
// and feed the gate.
func (ps *PuzzleScreen) Dispatch(ev Event) (Feedback, Transition, error) {
	if ps.scope.Closed() {
		return Feedback{}, Transition{}, errors.New("screen is unmounted")
	}
	switch ev.Verb {
	case "":
		return Feedback{}, Transition{}, nil
	case "skip":
		ps.Skip()
		return Feedback{Lines: []string{"skipping…"}}, Transition{}, nil
	case "back":
		ps.leave(ScreenHub)
		return Feedback{}, Transition{}, nil
	case "reset":
		ps.board = ps.puzzle.NewBoard(ps.stream)
		fb := Feedback{Lines: []string{"reset board."}}
		ps.append(fb)
		tr, err := ps.gate.Observe(ps.ctx, ps.puzzle.IsSolved(ps.board))
		return fb, tr, err
	}
	next, fb, err := ps.puzzle.Mutate(ps.board, ev)
	if err != nil {
		return fb, Transition{}, err
	}
	ps.board = next
	tr, err := ps.gate.Observe(ps.ctx, ps.puzzle.IsSolved(ps.board))
	if tr.Routed {
		fb.Lines = append(fb.Lines, fmt.Sprintf("Routing to %s…", tr.To))
	}
	ps.append(fb)
	if fb.Exit {
		ps.scope.After(exitDelay, func() { ps.leave(ScreenHub) })
	}
	return fb, tr, err
}

func (ps *PuzzleScreen) append(fb Feedback) {
	if fb.Clear {
		ps.log = nil
	}
	ps.log = append(ps.log, fb.Lines...)
}

// Skip bypasses the puzzle without recording completion.
func (ps *PuzzleScreen) Skip() {
	if next, ok := ps.session.router.Next(ps.puzzle.Screen()); ok {
		ps.leave(next)
	}
}

// leave drops this screen's pending auto-route before navigating away, so a
// later visit is not bounced onward.
func (ps *PuzzleScreen) leave(to ScreenID) {
	_ = ps.gate.Abandon(ps.ctx) // failures are logged by the session
	ps.session.navigate(to)
}

// Unmount cancels every timer this screen owns.
func (ps *PuzzleScreen) Unmount() { ps.scope.Close() }
