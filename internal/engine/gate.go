package engine

import (
	"context"
	"fmt"
	"time"
)

// GateConfig binds a puzzle to its screen and the signal flag it raises.
type GateConfig struct {
	Puzzle PuzzleID `yaml:"puzzle"`
	Screen ScreenID `yaml:"screen"`
	Signal string   `yaml:"signal"`
}

// Transition describes what one Observe call did.
type Transition struct {
	Solved    bool
	Completed bool // newly recorded by this call
	Routed    bool // a navigation was scheduled
	To        ScreenID
}

// Gate turns a validator's false->true edge into exactly one completion
// record, one signal flag and at most one scheduled navigation. The persisted
// completion flag is the de-duplication guard.
type Gate struct {
	session *Session
	cfg     GateConfig
	scope   *Scope
	last    bool
}

func NewGate(session *Session, cfg GateConfig, scope *Scope) *Gate {
	return &Gate{session: session, cfg: cfg, scope: scope}
}

func (g *Gate) Config() GateConfig { return g.cfg }

// Observe feeds the current validator output to the gate.
func (g *Gate) Observe(ctx context.Context, solved bool) (Transition, error) {
	tr := Transition{Solved: solved}
	edge := solved && !g.last
	g.last = solved
	if !edge {
		return tr, nil
	}
	now := g.session.sched.Now()
	route, auto := g.session.router.Auto(g.cfg.Screen)
	rec, err := g.session.Mutate(ctx, func(r *Record) error {
		if r.Completed[g.cfg.Puzzle] {
			return ErrDuplicateFire
		}
		r.Completed[g.cfg.Puzzle] = true
		r.Signals[g.cfg.Signal] = true
		if auto {
			r.PendingNav = &PendingNav{From: g.cfg.Screen, To: route.Next, DueAt: now.Add(route.Settle).UnixMilli()}
		}
		return nil
	})
	if err := g.session.suppressed(err, fmt.Sprintf("completion of %s", g.cfg.Puzzle)); err != nil {
		// nothing was written; the next solved observation retries
		g.last = false
		return tr, err
	}
	if err != nil {
		return tr, nil
	}
	tr.Completed = true
	if rec.PendingNav != nil && rec.PendingNav.From == g.cfg.Screen {
		g.arm(ctx, route.Settle)
		tr.Routed = true
		tr.To = rec.PendingNav.To
	}
	return tr, nil
}

// Rearm schedules a navigation that an earlier mount of this screen left
// pending. It reports whether anything was scheduled.
func (g *Gate) Rearm(ctx context.Context, r Record) bool {
	nav := r.PendingNav
	if nav == nil || nav.From != g.cfg.Screen {
		return false
	}
	delay := time.UnixMilli(nav.DueAt).Sub(g.session.sched.Now())
	if delay < 0 {
		delay = 0
	}
	g.arm(ctx, delay)
	return true
}

// Abandon clears a navigation this screen left pending. The player chose
// where to go instead.
func (g *Gate) Abandon(ctx context.Context) error {
	if nav := g.session.current.PendingNav; nav == nil || nav.From != g.cfg.Screen {
		return nil
	}
	_, err := g.session.Mutate(ctx, func(r *Record) error {
		if r.PendingNav == nil || r.PendingNav.From != g.cfg.Screen {
			return ErrDuplicateFire
		}
		r.PendingNav = nil
		return nil
	})
	return g.session.suppressed(err, fmt.Sprintf("abandon route from %s", g.cfg.Screen))
}

func (g *Gate) arm(ctx context.Context, delay time.Duration) {
	g.scope.After(delay, func() { g.fire(ctx) })
}

// fire consumes the pending navigation and performs it. A second timer for
// the same navigation finds nothing pending and does nothing.
func (g *Gate) fire(ctx context.Context) {
	var to ScreenID
	_, err := g.session.Mutate(ctx, func(r *Record) error {
		if r.PendingNav == nil || r.PendingNav.From != g.cfg.Screen {
			return ErrDuplicateFire
		}
		to = r.PendingNav.To
		r.PendingNav = nil
		return nil
	})
	if g.session.suppressed(err, fmt.Sprintf("navigation from %s", g.cfg.Screen)) != nil || err != nil {
		return
	}
	g.session.navigate(to)
}
