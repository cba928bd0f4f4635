package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrEmptyDraft  = errors.New("empty draft")
	ErrNoAction    = errors.New("message has no action")
)

// Hub is the mounted narrative hub: channel and DM views, the composer and
// the drip. Everything it schedules belongs to its scope.
type Hub struct {
	ctx     context.Context
	session *Session
	scope   *Scope
	drip    *Drip
}

// MountHub opens the record, consumes pending signal flags, starts the drip
// from the persisted stage and re-arms composer sends still in the outbox.
func (s *Session) MountHub(ctx context.Context) (*Hub, error) {
	rec, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	h := &Hub{ctx: ctx, session: s, scope: s.sched.Scope(), drip: NewDrip(s, s.catalog.Script)}
	if len(rec.PendingSignals()) > 0 {
		if rec, err = h.consumeSignals(); err != nil {
			h.scope.Close()
			return nil, err
		}
	}
	h.drip.Start(ctx, h.scope, rec.NarrativeStage)
	for _, p := range rec.Outbox {
		h.armSend(p)
	}
	return h, nil
}

// consumeSignals appends the bundle of every raised flag once and clears the
// flag in the same save. Flags are taken in gate order so bundles keep the
// progression order.
func (h *Hub) consumeSignals() (Record, error) {
	cat := h.session.catalog
	now := h.session.sched.Now()
	rec, err := h.session.Mutate(h.ctx, func(r *Record) error {
		raised := r.PendingSignals()
		if len(raised) == 0 {
			return ErrDuplicateFire
		}
		order := make([]string, 0, len(raised))
		for _, g := range cat.Gates {
			if r.Signals[g.Signal] {
				order = append(order, g.Signal)
			}
		}
		for _, flag := range raised {
			if _, gated := cat.gateBySignal(flag); !gated {
				order = append(order, flag)
			}
		}
		for _, flag := range order {
			if b, ok := cat.Bundles[flag]; ok {
				b.Apply(r, now)
			} else {
				h.session.logger.Printf("signal %s has no bundle", flag)
			}
			delete(r.Signals, flag)
		}
		return nil
	})
	if err := h.session.suppressed(err, "signal consumption"); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c Catalog) gateBySignal(flag string) (GateConfig, bool) {
	for _, g := range c.Gates {
		if g.Signal == flag {
			return g, true
		}
	}
	return GateConfig{}, false
}

func (h *Hub) Scope() *Scope  { return h.scope }
func (h *Hub) Record() Record { return h.session.Record() }

// Views lists the selectable views: catalog channels then opened DMs.
func (h *Hub) Views() []ViewRef {
	rec := h.session.Record()
	out := make([]ViewRef, 0, len(h.session.catalog.Channels)+len(rec.DirectList))
	for _, c := range h.session.catalog.Channels {
		out = append(out, Channel(c))
	}
	for _, d := range rec.DirectList {
		out = append(out, Direct(d))
	}
	return out
}

func (h *Hub) known(r Record, v ViewRef) bool {
	switch v.Kind {
	case ViewChannel:
		for _, c := range h.session.catalog.Channels {
			if c == v.Name {
				return true
			}
		}
	case ViewDirect:
		for _, d := range r.DirectList {
			if d == v.Name {
				return true
			}
		}
	}
	return false
}

// Select makes view active and zeroes its unread count.
func (h *Hub) Select(view ViewRef) error {
	_, err := h.session.Mutate(h.ctx, func(r *Record) error {
		if !h.known(*r, view) {
			return fmt.Errorf("%w: %s", ErrUnknownView, view)
		}
		r.SetActive(view)
		return nil
	})
	return err
}

// SetDraft persists the composer text as typed.
func (h *Hub) SetDraft(text string) error {
	_, err := h.session.Mutate(h.ctx, func(r *Record) error {
		r.MessageDraft = text
		return nil
	})
	return err
}

// Send clears the draft and queues it for delivery to the active view after
// the compose delay.
func (h *Hub) Send() (PendingSend, error) {
	delay := h.session.catalog.Compose.Delay
	due := h.session.sched.Now().Add(delay).UnixMilli()
	var sent PendingSend
	_, err := h.session.Mutate(h.ctx, func(r *Record) error {
		text := strings.TrimSpace(r.MessageDraft)
		if text == "" {
			return ErrEmptyDraft
		}
		r.MessageDraft = ""
		sent = r.enqueueSend(r.Active, text, due)
		return nil
	})
	if err != nil {
		return PendingSend{}, err
	}
	h.armSend(sent)
	return sent, nil
}

func (h *Hub) armSend(p PendingSend) {
	delay := time.UnixMilli(p.DueAt).Sub(h.session.sched.Now())
	if delay < 0 {
		delay = 0
	}
	seq := p.Seq
	h.scope.After(delay, func() { _ = h.deliver(seq) })
}

// deliver moves one outbox entry into its view. An entry already delivered by
// another mount is gone from the outbox, which makes this a no-op.
func (h *Hub) deliver(seq int) error {
	author := h.session.catalog.Compose.Author
	if author == "" {
		author = "you"
	}
	now := h.session.sched.Now()
	_, err := h.session.Mutate(h.ctx, func(r *Record) error {
		p, ok := r.takeSend(seq)
		if !ok {
			return ErrDuplicateFire
		}
		r.Append(p.Target, Message{Author: author, Text: p.Text, TS: now.Format("15:04")})
		return nil
	})
	return h.session.suppressed(err, fmt.Sprintf("send %d", seq))
}

// Open follows the action attached to a message. Routing actions navigate
// and return an empty note; note actions return their text.
func (h *Hub) Open(id int) (string, error) {
	m, ok := h.session.Record().FindMessage(id)
	if !ok {
		return "", fmt.Errorf("message %d not found", id)
	}
	if m.Action == nil {
		return "", ErrNoAction
	}
	if m.Action.To != "" {
		h.session.navigate(m.Action.To)
		return "", nil
	}
	return m.Action.Note, nil
}

// Unmount cancels every timer the hub owns. Persisted progress is untouched
// and resumes on the next mount.
func (h *Hub) Unmount() { h.scope.Close() }
