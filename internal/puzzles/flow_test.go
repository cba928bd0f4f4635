package puzzles

import (
	"context"
	"testing"
	"time"

	"github.com/DaanHessen/snappr/internal/catalog"
	"github.com/DaanHessen/snappr/internal/engine"
	"github.com/DaanHessen/snappr/internal/store"
)

func newFlow(t *testing.T) (*engine.Session, *[]engine.ScreenID) {
	t.Helper()
	cat, err := catalog.Load(1)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	rs, err := store.NewRecordStore(store.NewMemoryBackend(), "flow")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	var navs []engine.ScreenID
	sched := engine.NewScheduler(time.Date(2025, 3, 14, 9, 40, 0, 0, time.UTC))
	sess, err := engine.NewSession(rs, sched, cat, engine.WithNavigator(engine.NavigatorFunc(func(to engine.ScreenID) {
		navs = append(navs, to)
	})))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return sess, &navs
}

func solvePins(t *testing.T, ps *engine.PuzzleScreen) {
	t.Helper()
	for i := 0; i < len(PinsTarget); i++ {
		b := ps.Board().(PinsBoard)
		if b.Tiles[i].Letter == string(PinsTarget[i]) {
			continue
		}
		for j := i + 1; j < len(b.Tiles); j++ {
			if b.Tiles[j].Letter == string(PinsTarget[i]) {
				if _, _, err := ps.Dispatch(engine.Event{Verb: "swap", Args: []string{itoa(i + 1), itoa(j + 1)}}); err != nil {
					t.Fatalf("swap: %v", err)
				}
				break
			}
		}
	}
}

func TestPinsToSnippetFlow(t *testing.T) {
	ctx := context.Background()
	sess, navs := newFlow(t)
	seed, _ := engine.NewSeed("flow")

	pins, err := sess.MountPuzzle(ctx, Pins{}, seed.BoardStream(engine.PuzzlePins))
	if err != nil {
		t.Fatalf("mount pins: %v", err)
	}
	solvePins(t, pins)
	if !pins.Completed() {
		t.Fatalf("pins not recorded")
	}
	sess.Scheduler().AdvanceBy(0)
	if len(*navs) != 1 || (*navs)[0] != engine.ScreenHub {
		t.Fatalf("navs=%v", *navs)
	}
	// further moves after completion never schedule a second route
	pins.Dispatch(engine.ParseEvent("swap 1 2"))
	pins.Dispatch(engine.ParseEvent("swap 1 2"))
	sess.Scheduler().AdvanceBy(time.Second)
	if len(*navs) != 1 {
		t.Fatalf("second navigation: %v", *navs)
	}
	pins.Unmount()

	hub, err := sess.MountHub(ctx)
	if err != nil {
		t.Fatalf("mount hub: %v", err)
	}
	rec := hub.Record()
	if len(rec.Signals) != 0 {
		t.Fatalf("signal not consumed: %v", rec.Signals)
	}
	dm := rec.Log(engine.Direct("Unknown User"))
	if len(dm) == 0 || dm[len(dm)-1].Action == nil || dm[len(dm)-1].Action.To != engine.ScreenSnippet {
		t.Fatalf("bundle not delivered: %+v", dm)
	}
	if rec.Active != engine.Direct("Unknown User") {
		t.Fatalf("bundle did not focus the dm: %v", rec.Active)
	}
	if _, err := hub.Open(dm[len(dm)-1].ID); err != nil {
		t.Fatalf("open action: %v", err)
	}
	if last := (*navs)[len(*navs)-1]; last != engine.ScreenSnippet {
		t.Fatalf("action went to %s", last)
	}
	hub.Unmount()

	snip, err := sess.MountPuzzle(ctx, Snippet{}, nil)
	if err != nil {
		t.Fatalf("mount snippet: %v", err)
	}
	fb, tr, err := snip.Dispatch(engine.ParseEvent(SnippetExpected))
	if err != nil || !tr.Routed || tr.To != engine.ScreenBookmarks {
		t.Fatalf("snippet tr=%+v err=%v", tr, err)
	}
	if fb.Lines[len(fb.Lines)-1] != "Routing to bookmarks…" {
		t.Fatalf("feedback=%v", fb.Lines)
	}
	before := len(*navs)
	sess.Scheduler().AdvanceBy(899 * time.Millisecond)
	if len(*navs) != before {
		t.Fatalf("routed before settle")
	}
	sess.Scheduler().AdvanceBy(time.Millisecond)
	if (*navs)[len(*navs)-1] != engine.ScreenBookmarks {
		t.Fatalf("navs=%v", *navs)
	}
	snip.Unmount()
}

func TestUnmountBeforeSettleRearmsOnce(t *testing.T) {
	ctx := context.Background()
	sess, navs := newFlow(t)

	snip, err := sess.MountPuzzle(ctx, Snippet{}, nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, _, err := snip.Dispatch(engine.ParseEvent("run " + SnippetExpected)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	snip.Unmount()
	sess.Scheduler().AdvanceBy(5 * time.Second)
	if len(*navs) != 0 {
		t.Fatalf("unmounted screen navigated: %v", *navs)
	}

	again, err := sess.MountPuzzle(ctx, Snippet{}, nil)
	if err != nil {
		t.Fatalf("remount: %v", err)
	}
	sess.Scheduler().AdvanceBy(0)
	if len(*navs) != 1 || (*navs)[0] != engine.ScreenBookmarks {
		t.Fatalf("navs=%v", *navs)
	}
	if sess.Record().PendingNav != nil {
		t.Fatalf("pending navigation left behind")
	}
	again.Unmount()
}

func TestLeavingBeforeSettleDropsTheRoute(t *testing.T) {
	for _, verb := range []string{"back", "skip"} {
		ctx := context.Background()
		sess, navs := newFlow(t)

		snip, err := sess.MountPuzzle(ctx, Snippet{}, nil)
		if err != nil {
			t.Fatalf("%s: mount: %v", verb, err)
		}
		if _, _, err := snip.Dispatch(engine.ParseEvent(SnippetExpected)); err != nil {
			t.Fatalf("%s: dispatch: %v", verb, err)
		}
		snip.Dispatch(engine.Event{Verb: verb})
		if len(*navs) != 1 {
			t.Fatalf("%s: navs=%v", verb, *navs)
		}
		if sess.Record().PendingNav != nil {
			t.Fatalf("%s: route still pending: %+v", verb, sess.Record().PendingNav)
		}
		snip.Unmount()
		sess.Scheduler().AdvanceBy(time.Minute)

		again, err := sess.MountPuzzle(ctx, Snippet{}, nil)
		if err != nil {
			t.Fatalf("%s: remount: %v", verb, err)
		}
		sess.Scheduler().AdvanceBy(0)
		if len(*navs) != 1 {
			t.Fatalf("%s: revisit bounced onward: %v", verb, *navs)
		}
		if !again.Completed() {
			t.Fatalf("%s: completion lost", verb)
		}
		again.Unmount()
	}
}

func TestExitLeavesAfterPause(t *testing.T) {
	ctx := context.Background()
	sess, navs := newFlow(t)
	snip, err := sess.MountPuzzle(ctx, Snippet{}, nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, _, err := snip.Dispatch(engine.ParseEvent("exit")); err != nil {
		t.Fatalf("exit: %v", err)
	}
	sess.Scheduler().AdvanceBy(299 * time.Millisecond)
	if len(*navs) != 0 {
		t.Fatalf("left early")
	}
	sess.Scheduler().AdvanceBy(time.Millisecond)
	if len(*navs) != 1 || (*navs)[0] != engine.ScreenHub {
		t.Fatalf("navs=%v", *navs)
	}
	if snip.Completed() {
		t.Fatalf("exit recorded completion")
	}
}
