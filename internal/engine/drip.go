package engine

import (
	"context"
	"fmt"
)

// Drip replays the unfired suffix of a script. Progress lives only in the
// persisted NarrativeStage counter, so a reload resumes where it stopped and
// duplicate timers from a double mount are harmless.
type Drip struct {
	session *Session
	script  Script
}

func NewDrip(session *Session, script Script) *Drip {
	return &Drip{session: session, script: script}
}

// Start schedules every stage after fired on scope and returns how many were
// scheduled. Offsets are cumulative from now.
func (d *Drip) Start(ctx context.Context, scope *Scope, fired int) int {
	pending := d.script.Remaining(fired)
	for _, st := range pending {
		idx := st.Index
		scope.After(st.Offset, func() {
			_ = d.Fire(ctx, idx)
		})
	}
	return len(pending)
}

// Fire applies stage idx if it has not been recorded yet. Earlier stages that
// are somehow still missing are applied first, in order, within the same save.
func (d *Drip) Fire(ctx context.Context, idx int) error {
	if _, ok := d.script.Stage(idx); !ok {
		return fmt.Errorf("stage %d out of range", idx)
	}
	now := d.session.sched.Now()
	_, err := d.session.Mutate(ctx, func(r *Record) error {
		if r.NarrativeStage >= idx {
			return ErrDuplicateFire
		}
		for k := r.NarrativeStage + 1; k <= idx; k++ {
			st, _ := d.script.Stage(k)
			st.Effect.Apply(r, now)
			r.NarrativeStage = k
		}
		return nil
	})
	return d.session.suppressed(err, fmt.Sprintf("stage %d", idx))
}
