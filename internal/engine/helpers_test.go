package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// memStore round-trips through JSON so tests see exactly what a real backend
// would hand back.
type memStore struct {
	data  []byte
	saves int
	fail  bool
}

func (m *memStore) Load(ctx context.Context) (Record, bool) {
	if m.data == nil {
		return Record{}, false
	}
	var r Record
	if err := json.Unmarshal(m.data, &r); err != nil {
		return Record{}, false
	}
	r.Normalize()
	r.RepairCounters()
	return r, true
}

func (m *memStore) Save(ctx context.Context, r Record) error {
	if m.fail {
		return errors.New("disk full")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	m.data = b
	m.saves++
	return nil
}

var epoch = time.Date(2025, 3, 14, 9, 40, 0, 0, time.UTC)

func testCatalog() Catalog {
	return Catalog{
		Home:     Channel("#ai-manila"),
		Channels: []string{"#ai-manila", "#celebrations"},
		Compose:  ComposeConfig{Author: "you", Delay: 10 * time.Second},
		Script: Script{Stages: []Stage{
			{Name: "b1", Delay: 10 * time.Second, Effect: Effect{View: Channel("#ai-manila"), Messages: []ScriptMessage{{Author: "Migi", Text: "check-in", TS: "09:41"}}}},
			{Name: "b2", Delay: 900 * time.Millisecond, Effect: Effect{View: Channel("#ai-manila"), Messages: []ScriptMessage{{Author: "lani", Text: "ok", TS: "09:43"}}}},
			{Name: "b3", Delay: 900 * time.Millisecond, Effect: Effect{View: Channel("#ai-manila"), Messages: []ScriptMessage{{Author: "Slackbot", Text: "added", TS: "09:44"}}}},
			{Name: "b4", Delay: 900 * time.Millisecond, Effect: Effect{View: Channel("#ai-manila"), Messages: []ScriptMessage{{Author: "Unknown User", Text: "fragment"}}}},
			{Name: "dm", Delay: 2300 * time.Millisecond, Effect: Effect{View: Direct("Unknown User"), Messages: []ScriptMessage{{Author: "Unknown User", Text: "pick good"}}}},
			{Name: "b", Delay: 900 * time.Millisecond, Effect: Effect{View: Direct("Unknown User"), Messages: []ScriptMessage{{Author: "Unknown User", Text: "Protocol B", Action: &Action{Label: "Open", To: ScreenPins}}}}},
			{Name: "c", Delay: 900 * time.Millisecond, Effect: Effect{View: Direct("Unknown User"), Messages: []ScriptMessage{{Author: "Unknown User", Text: "Protocol C", Action: &Action{Label: "React", Note: "decoy"}}}}},
		}},
		Bundles: map[string]Effect{
			"pinsSolved": {View: Direct("Unknown User"), Focus: true, Messages: []ScriptMessage{
				{Author: "Unknown User", Text: "KEY-1: SNRFDFN"},
				{Author: "Unknown User", Text: "The table wants its say", Action: &Action{Label: "Open Puzzle: SNIPPET", To: ScreenSnippet}},
			}},
		},
		Routes: []Route{
			{Screen: ScreenHub, Next: ScreenPins},
			{Screen: ScreenPins, Next: ScreenHub, AutoRoute: true},
			{Screen: ScreenSnippet, Next: ScreenBookmarks, AutoRoute: true, Settle: 900 * time.Millisecond},
			{Screen: ScreenAlign, Next: ScreenFinale, Settle: 1200 * time.Millisecond},
		},
		Gates: []GateConfig{
			{Puzzle: PuzzlePins, Screen: ScreenPins, Signal: "pinsSolved"},
			{Puzzle: PuzzleSnippet, Screen: ScreenSnippet, Signal: "snippetSolved"},
			{Puzzle: PuzzleAlign, Screen: ScreenAlign, Signal: "alignSolved"},
		},
	}
}

type navLog struct{ to []ScreenID }

func (n *navLog) Navigate(to ScreenID) { n.to = append(n.to, to) }

func newTestSession(t *testing.T, st *memStore) (*Session, *navLog) {
	t.Helper()
	nav := &navLog{}
	s, err := NewSession(st, NewScheduler(epoch), testCatalog(), WithNavigator(nav))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, nav
}

// toggle is a one-flag puzzle: "on" solves it, "off" unsolves it.
type toggle struct{ id PuzzleID }

func (p toggle) ID() PuzzleID           { return p.id }
func (p toggle) Screen() ScreenID       { return ScreenID(p.id) }
func (p toggle) Title() string          { return string(p.id) }
func (p toggle) Intro() []string        { return []string{"toggle ready"} }
func (p toggle) NewBoard(*Stream) Board { return false }
func (p toggle) IsSolved(b Board) bool  { return b.(bool) }
func (p toggle) Render(b Board) string {
	if b.(bool) {
		return "on"
	}
	return "off"
}

func (p toggle) Mutate(b Board, ev Event) (Board, Feedback, error) {
	switch ev.Verb {
	case "on":
		return true, Feedback{Lines: []string{"on"}}, nil
	case "off":
		return false, Feedback{Lines: []string{"off"}}, nil
	}
	return b, Feedback{}, ErrUnknownCommand
}
