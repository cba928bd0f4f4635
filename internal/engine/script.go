package engine

import (
	"errors"
	"fmt"
	"time"
)

// ScriptMessage is a message template; ids are assigned when it is appended.
type ScriptMessage struct {
	Author string  `yaml:"author"`
	Text   string  `yaml:"text"`
	TS     string  `yaml:"ts,omitempty"`
	Action *Action `yaml:"action,omitempty"`
}

// Effect appends messages to one view. Focus switches the hub to that view.
type Effect struct {
	View     ViewRef         `yaml:"view"`
	Focus    bool            `yaml:"focus,omitempty"`
	Messages []ScriptMessage `yaml:"messages"`
}

// Apply appends the effect's messages to r. Templates without a timestamp
// are stamped with now.
func (e Effect) Apply(r *Record, now time.Time) []Message {
	msgs := make([]Message, 0, len(e.Messages))
	for _, sm := range e.Messages {
		ts := sm.TS
		if ts == "" {
			ts = now.Format("15:04")
		}
		msgs = append(msgs, Message{Author: sm.Author, Text: sm.Text, TS: ts, Action: sm.Action})
	}
	if e.Focus {
		r.SetActive(e.View)
	}
	if e.View.Kind == ViewDirect {
		r.OpenDirect(e.View.Name)
	}
	return r.Append(e.View, msgs...)
}

// Stage is one scheduled unit of the narrative script. Delay is measured from
// the previous stage's fire time.
type Stage struct {
	Name   string        `yaml:"name"`
	Delay  time.Duration `yaml:"delay"`
	Effect Effect        `yaml:"effect"`
}

// Script is the fixed, ordered narrative for the hub.
type Script struct {
	Stages []Stage `yaml:"stages"`
}

func (s Script) Len() int { return len(s.Stages) }

// Remaining returns the 1-based stage indexes still to fire after fired
// stages, with cumulative offsets measured from now.
func (s Script) Remaining(fired int) []ScheduledStage {
	if fired < 0 {
		fired = 0
	}
	var out []ScheduledStage
	var offset time.Duration
	for i := fired; i < s.Len(); i++ {
		offset += s.Stages[i].Delay
		out = append(out, ScheduledStage{Index: i + 1, Offset: offset})
	}
	return out
}

// Stage returns the 1-based stage idx.
func (s Script) Stage(idx int) (Stage, bool) {
	if idx < 1 || idx > s.Len() {
		return Stage{}, false
	}
	return s.Stages[idx-1], true
}

// ScheduledStage pairs a stage index with its offset from entry.
type ScheduledStage struct {
	Index  int
	Offset time.Duration
}

// ComposeConfig controls the hub composer.
type ComposeConfig struct {
	Author string        `yaml:"author"`
	Delay  time.Duration `yaml:"delay"`
}

// Catalog is the static content the engine runs on.
type Catalog struct {
	Home     ViewRef           `yaml:"home"`
	Channels []string          `yaml:"channels"`
	Compose  ComposeConfig     `yaml:"compose"`
	Script   Script            `yaml:"script"`
	Bundles  map[string]Effect `yaml:"bundles"`
	Routes   []Route           `yaml:"routes"`
	Gates    []GateConfig      `yaml:"gates"`
}

var ErrInvalidCatalog = errors.New("invalid catalog")

// Validate checks cross references inside the catalog.
func (c Catalog) Validate() error {
	if c.Home.IsZero() || c.Home.Kind != ViewChannel {
		return fmt.Errorf("%w: home must be a channel", ErrInvalidCatalog)
	}
	for i, st := range c.Script.Stages {
		if st.Effect.View.IsZero() {
			return fmt.Errorf("%w: stage %d has no view", ErrInvalidCatalog, i+1)
		}
		if st.Delay < 0 {
			return fmt.Errorf("%w: stage %d has a negative delay", ErrInvalidCatalog, i+1)
		}
	}
	for name, b := range c.Bundles {
		if b.View.IsZero() {
			return fmt.Errorf("%w: bundle %q has no view", ErrInvalidCatalog, name)
		}
	}
	if _, err := NewRouter(c.Routes); err != nil {
		return err
	}
	seen := map[PuzzleID]bool{}
	for _, g := range c.Gates {
		if g.Puzzle == "" || g.Screen == "" || g.Signal == "" {
			return fmt.Errorf("%w: gate %q is incomplete", ErrInvalidCatalog, g.Puzzle)
		}
		if seen[g.Puzzle] {
			return fmt.Errorf("%w: duplicate gate %q", ErrInvalidCatalog, g.Puzzle)
		}
		seen[g.Puzzle] = true
	}
	return nil
}

// Gate returns the gate configuration for a puzzle.
func (c Catalog) Gate(id PuzzleID) (GateConfig, bool) {
	for _, g := range c.Gates {
		if g.Puzzle == id {
			return g, true
		}
	}
	return GateConfig{}, false
}

// Scaled returns a copy with every delay multiplied by f. f <= 0 keeps the
// catalog as is.
func (c Catalog) Scaled(f float64) Catalog {
	if f <= 0 || f == 1 {
		return c
	}
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	out := c
	out.Compose.Delay = scale(c.Compose.Delay)
	out.Script.Stages = make([]Stage, len(c.Script.Stages))
	for i, st := range c.Script.Stages {
		st.Delay = scale(st.Delay)
		out.Script.Stages[i] = st
	}
	out.Routes = make([]Route, len(c.Routes))
	for i, r := range c.Routes {
		r.Settle = scale(r.Settle)
		out.Routes[i] = r
	}
	return out
}
