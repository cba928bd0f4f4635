package engine

import (
	"sort"
	"strings"
)

// RecordVersion is the persisted payload version understood by this build.
const RecordVersion = 1

// ViewRef identifies a channel or a direct-message thread in the hub.
type ViewRef struct {
	Kind ViewKind `json:"kind" yaml:"kind"`
	Name string   `json:"name" yaml:"name"`
}

func Channel(name string) ViewRef { return ViewRef{Kind: ViewChannel, Name: name} }
func Direct(name string) ViewRef  { return ViewRef{Kind: ViewDirect, Name: name} }

func (v ViewRef) IsZero() bool { return v.Name == "" }

func (v ViewRef) String() string {
	if v.Kind == ViewDirect {
		return "@" + v.Name
	}
	return v.Name
}

// Action is an optional button attached to a message. A message either routes
// somewhere (To) or shows a note in place (Note).
type Action struct {
	Label string   `json:"label" yaml:"label"`
	To    ScreenID `json:"to,omitempty" yaml:"to,omitempty"`
	Note  string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// Message is one immutable chat line.
type Message struct {
	ID      int     `json:"id"`
	Author  string  `json:"author"`
	Text    string  `json:"text"`
	TS      string  `json:"ts,omitempty"`
	Channel string  `json:"channel,omitempty"`
	Action  *Action `json:"action,omitempty"`
}

// PendingSend is a composed message waiting for its delivery delay.
type PendingSend struct {
	Seq    int     `json:"seq"`
	Target ViewRef `json:"target"`
	Text   string  `json:"text"`
	DueAt  int64   `json:"dueAt"` // unix millis on the scheduler clock
}

// PendingNav is the single auto-route scheduled by a progression gate.
type PendingNav struct {
	From  ScreenID `json:"from"`
	To    ScreenID `json:"to"`
	DueAt int64    `json:"dueAt"`
}

// Record is the per-session progression state. All mutation goes through
// Session.Mutate; the helpers below only append or bump counters.
type Record struct {
	Version        int                  `json:"version"`
	Active         ViewRef              `json:"activeView"`
	MessageDraft   string               `json:"messageDraft"`
	Messages       []Message            `json:"messages"`
	DirectList     []string             `json:"directList"`
	DirectMsgs     map[string][]Message `json:"directMsgs"`
	Unread         map[string]int       `json:"unread"`
	NarrativeStage int                  `json:"narrativeStage"`
	NextMessageID  int                  `json:"nextMessageId"`
	Completed      map[PuzzleID]bool    `json:"completed"`
	Signals        map[string]bool      `json:"signals"`
	Outbox         []PendingSend        `json:"outbox"`
	NextSendSeq    int                  `json:"nextSendSeq"`
	PendingNav     *PendingNav          `json:"pendingNav,omitempty"`
}

// NewRecord returns the default record for a first visit.
func NewRecord(home ViewRef) Record {
	r := Record{Version: RecordVersion, Active: home, NextMessageID: 1, NextSendSeq: 1}
	r.Normalize()
	return r
}

// Normalize replaces nil collections with empty ones so a record survives a
// JSON round trip unchanged.
func (r *Record) Normalize() {
	if r.Messages == nil {
		r.Messages = []Message{}
	}
	if r.DirectList == nil {
		r.DirectList = []string{}
	}
	if r.DirectMsgs == nil {
		r.DirectMsgs = map[string][]Message{}
	}
	for k, v := range r.DirectMsgs {
		if v == nil {
			r.DirectMsgs[k] = []Message{}
		}
	}
	if r.Unread == nil {
		r.Unread = map[string]int{}
	}
	if r.Completed == nil {
		r.Completed = map[PuzzleID]bool{}
	}
	if r.Signals == nil {
		r.Signals = map[string]bool{}
	}
	if r.Outbox == nil {
		r.Outbox = []PendingSend{}
	}
	if r.Version == 0 {
		r.Version = RecordVersion
	}
}

// RepairCounters restores the sequence invariants after a load: the next ids
// are strictly greater than anything already present.
func (r *Record) RepairCounters() {
	next := r.MaxMessageID() + 1
	if r.NextMessageID < next {
		r.NextMessageID = next
	}
	if r.NextMessageID < 1 {
		r.NextMessageID = 1
	}
	seq := 1
	for _, p := range r.Outbox {
		if p.Seq+1 > seq {
			seq = p.Seq + 1
		}
	}
	if r.NextSendSeq < seq {
		r.NextSendSeq = seq
	}
	if r.NarrativeStage < 0 {
		r.NarrativeStage = 0
	}
}

// MaxMessageID returns the largest id in the channel feed and all DM threads.
func (r Record) MaxMessageID() int {
	top := 0
	for _, m := range r.Messages {
		if m.ID > top {
			top = m.ID
		}
	}
	for _, thread := range r.DirectMsgs {
		for _, m := range thread {
			if m.ID > top {
				top = m.ID
			}
		}
	}
	return top
}

// Clone deep-copies the record, maps and message slices included.
func (r Record) Clone() Record {
	out := r
	out.Messages = cloneMessages(r.Messages)
	out.DirectList = append([]string{}, r.DirectList...)
	out.DirectMsgs = make(map[string][]Message, len(r.DirectMsgs))
	for k, v := range r.DirectMsgs {
		out.DirectMsgs[k] = cloneMessages(v)
	}
	out.Unread = make(map[string]int, len(r.Unread))
	for k, v := range r.Unread {
		out.Unread[k] = v
	}
	out.Completed = make(map[PuzzleID]bool, len(r.Completed))
	for k, v := range r.Completed {
		out.Completed[k] = v
	}
	out.Signals = make(map[string]bool, len(r.Signals))
	for k, v := range r.Signals {
		out.Signals[k] = v
	}
	out.Outbox = append([]PendingSend{}, r.Outbox...)
	if r.PendingNav != nil {
		nav := *r.PendingNav
		out.PendingNav = &nav
	}
	return out
}

func cloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = m
		if m.Action != nil {
			a := *m.Action
			out[i].Action = &a
		}
	}
	return out
}

// allocID hands out the next message id.
func (r *Record) allocID() int {
	if r.NextMessageID < 1 {
		r.NextMessageID = 1
	}
	id := r.NextMessageID
	r.NextMessageID++
	return id
}

// Append adds messages to the log of view, assigning fresh ids, and returns
// the stored copies. Appending to a DM thread opens it in the direct list and
// bumps its unread count unless it is the active view.
func (r *Record) Append(view ViewRef, msgs ...Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		m.ID = r.allocID()
		if m.Action != nil {
			a := *m.Action
			m.Action = &a
		}
		if view.Kind == ViewDirect {
			m.Channel = ""
			r.OpenDirect(view.Name)
			r.DirectMsgs[view.Name] = append(r.DirectMsgs[view.Name], m)
		} else {
			m.Channel = view.Name
			r.Messages = append(r.Messages, m)
		}
		out = append(out, m)
	}
	if len(out) > 0 && view.Kind == ViewDirect && r.Active != view {
		r.Unread[view.Name] += len(out)
	}
	return out
}

// OpenDirect makes sure a DM thread is listed. It never reorders.
func (r *Record) OpenDirect(name string) {
	for _, d := range r.DirectList {
		if d == name {
			return
		}
	}
	r.DirectList = append(r.DirectList, name)
	if _, ok := r.DirectMsgs[name]; !ok {
		r.DirectMsgs[name] = []Message{}
	}
}

// SetActive switches the displayed view and clears its unread count.
func (r *Record) SetActive(view ViewRef) {
	r.Active = view
	if view.Kind == ViewDirect {
		r.Unread[view.Name] = 0
	}
}

// Log returns the messages visible in view.
func (r Record) Log(view ViewRef) []Message {
	if view.Kind == ViewDirect {
		return r.DirectMsgs[view.Name]
	}
	var out []Message
	for _, m := range r.Messages {
		if m.Channel == view.Name {
			out = append(out, m)
		}
	}
	return out
}

// FindMessage looks a message up by id across every log.
func (r Record) FindMessage(id int) (Message, bool) {
	for _, m := range r.Messages {
		if m.ID == id {
			return m, true
		}
	}
	for _, thread := range r.DirectMsgs {
		for _, m := range thread {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Message{}, false
}

// CompletedList returns completed puzzles in a stable order.
func (r Record) CompletedList() []PuzzleID {
	out := make([]PuzzleID, 0, len(r.Completed))
	for id, ok := range r.Completed {
		if ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PendingSignals returns raised signal flags in a stable order.
func (r Record) PendingSignals() []string {
	out := make([]string, 0, len(r.Signals))
	for k, v := range r.Signals {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// enqueueSend records a composed message for delayed delivery.
func (r *Record) enqueueSend(target ViewRef, text string, dueAt int64) PendingSend {
	if r.NextSendSeq < 1 {
		r.NextSendSeq = 1
	}
	p := PendingSend{Seq: r.NextSendSeq, Target: target, Text: strings.TrimSpace(text), DueAt: dueAt}
	r.NextSendSeq++
	r.Outbox = append(r.Outbox, p)
	return p
}

// takeSend removes the pending send with seq and reports whether it was there.
func (r *Record) takeSend(seq int) (PendingSend, bool) {
	for i, p := range r.Outbox {
		if p.Seq == seq {
			r.Outbox = append(r.Outbox[:i:i], r.Outbox[i+1:]...)
			return p, true
		}
	}
	return PendingSend{}, false
}
