package engine

import (
	"time"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
)

// CancelToken identifies a scheduled callback. The zero token is never issued.
type CancelToken struct{ id uint64 }

func (t CancelToken) Valid() bool { return t.id != 0 }

type timer struct {
	id    uint64
	seq   uint64
	due   time.Time
	every time.Duration
	fn    func()
}

// Scheduler is a single-threaded virtual-time timer queue. The host loop
// calls Advance with the wall clock; callbacks run inside Advance in due
// order, ties broken by registration order. It does no locking: every call
// must come from the host's event loop.
type Scheduler struct {
	now   time.Time
	seq   uint64
	queue *heap.Heap[*timer]
	live  map[uint64]*timer
}

func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{
		now: start,
		queue: heap.New(func(a, b *timer) bool {
			if a.due.Equal(b.due) {
				return a.seq < b.seq
			}
			return a.due.Before(b.due)
		}),
		live: make(map[uint64]*timer),
	}
}

// Now is the scheduler's clock. Inside a callback it equals that callback's
// due time, so delays registered from a callback chain exactly.
func (s *Scheduler) Now() time.Time { return s.now }

// After runs fn once, delay after Now. Negative delays count as zero.
func (s *Scheduler) After(delay time.Duration, fn func()) CancelToken {
	return s.add(delay, 0, fn)
}

// Every runs fn every interval until cancelled.
func (s *Scheduler) Every(interval time.Duration, fn func()) CancelToken {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return s.add(interval, interval, fn)
}

func (s *Scheduler) add(delay, every time.Duration, fn func()) CancelToken {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &timer{id: s.seq, seq: s.seq, due: s.now.Add(delay), every: every, fn: fn}
	s.live[t.id] = t
	s.queue.Push(t)
	return CancelToken{id: t.id}
}

// Cancel stops a pending callback. It reports whether anything was cancelled.
func (s *Scheduler) Cancel(tok CancelToken) bool {
	if _, ok := s.live[tok.id]; !ok {
		return false
	}
	delete(s.live, tok.id)
	return true
}

// Pending counts live timers.
func (s *Scheduler) Pending() int { return len(s.live) }

// Next returns the due time of the earliest live timer.
func (s *Scheduler) Next() (time.Time, bool) {
	for {
		t, ok := s.queue.Peek()
		if !ok {
			return time.Time{}, false
		}
		if _, live := s.live[t.id]; live {
			return t.due, true
		}
		s.queue.Pop()
	}
}

// Advance fires every callback due at or before to and moves the clock to
// to. Callbacks registered while advancing also fire if they fall due.
func (s *Scheduler) Advance(to time.Time) int {
	fired := 0
	for {
		t, ok := s.queue.Peek()
		if !ok || t.due.After(to) {
			break
		}
		s.queue.Pop()
		if _, live := s.live[t.id]; !live {
			continue
		}
		if t.due.After(s.now) {
			s.now = t.due
		}
		if t.every > 0 {
			s.seq++
			t.seq = s.seq
			t.due = t.due.Add(t.every)
			s.queue.Push(t)
		} else {
			delete(s.live, t.id)
		}
		t.fn()
		fired++
	}
	if to.After(s.now) {
		s.now = to
	}
	return fired
}

// AdvanceBy is Advance relative to Now.
func (s *Scheduler) AdvanceBy(d time.Duration) int { return s.Advance(s.now.Add(d)) }

// Scope groups the timers owned by one mounted screen.
func (s *Scheduler) Scope() *Scope {
	return &Scope{s: s, tokens: mapset.New[uint64]()}
}

// Scope cancels everything it scheduled on Close. A closed scope ignores new
// registrations and hands back the zero token.
type Scope struct {
	s      *Scheduler
	tokens mapset.Set[uint64]
	closed bool
}

func (sc *Scope) After(delay time.Duration, fn func()) CancelToken {
	if sc.closed {
		return CancelToken{}
	}
	var tok CancelToken
	tok = sc.s.After(delay, func() {
		sc.tokens.Remove(tok.id)
		fn()
	})
	sc.tokens.Put(tok.id)
	return tok
}

func (sc *Scope) Every(interval time.Duration, fn func()) CancelToken {
	if sc.closed {
		return CancelToken{}
	}
	tok := sc.s.Every(interval, fn)
	sc.tokens.Put(tok.id)
	return tok
}

func (sc *Scope) Cancel(tok CancelToken) bool {
	sc.tokens.Remove(tok.id)
	return sc.s.Cancel(tok)
}

// Pending counts this scope's live timers.
func (sc *Scope) Pending() int { return sc.tokens.Size() }

func (sc *Scope) Closed() bool { return sc.closed }

// Now forwards to the scheduler clock.
func (sc *Scope) Now() time.Time { return sc.s.Now() }

// Close cancels every outstanding timer. Safe to call twice.
func (sc *Scope) Close() {
	if sc.closed {
		return
	}
	sc.closed = true
	sc.tokens.Each(func(id uint64) {
		sc.s.Cancel(CancelToken{id: id})
	})
	sc.tokens = mapset.New[uint64]()
}
