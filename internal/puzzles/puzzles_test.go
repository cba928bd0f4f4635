package puzzles

import (
	"errors"
	"strings"
	"testing"

	"github.com/DaanHessen/snappr/internal/engine"
)

func apply(t *testing.T, p engine.Puzzle, b engine.Board, lines ...string) (engine.Board, engine.Feedback) {
	t.Helper()
	var fb engine.Feedback
	for _, l := range lines {
		var err error
		b, fb, err = p.Mutate(b, engine.ParseEvent(l))
		if err != nil {
			t.Fatalf("%s: %q: %v", p.ID(), l, err)
		}
	}
	return b, fb
}

func hasLine(fb engine.Feedback, want string) bool {
	for _, l := range fb.Lines {
		if l == want {
			return true
		}
	}
	return false
}

func TestRegistryCoversEveryPuzzle(t *testing.T) {
	seen := map[engine.PuzzleID]bool{}
	for _, p := range All() {
		seen[p.ID()] = true
		if got, ok := ByScreen(p.Screen()); !ok || got.ID() != p.ID() {
			t.Fatalf("ByScreen(%s) = %v", p.Screen(), got)
		}
	}
	for _, id := range engine.AllPuzzles {
		if !seen[id] {
			t.Fatalf("missing puzzle %s", id)
		}
	}
	if _, ok := ByScreen(engine.ScreenHub); ok {
		t.Fatalf("hub is not a puzzle")
	}
}

func TestNoPuzzleStartsSolved(t *testing.T) {
	for _, p := range All() {
		for i := 0; i < 50; i++ {
			seed, _ := engine.NewSeed("start-" + string(rune('a'+i%26)) + strings.Repeat("x", i))
			if p.IsSolved(p.NewBoard(seed.BoardStream(p.ID()))) {
				t.Fatalf("%s starts solved (run %d)", p.ID(), i)
			}
		}
	}
}

func TestPinsSolveBySwapping(t *testing.T) {
	p := Pins{}
	b := p.NewBoard(nil).(PinsBoard)
	// selection sort into the target with swaps
	for i := 0; i < len(PinsTarget); i++ {
		if b.Tiles[i].Letter == string(PinsTarget[i]) {
			continue
		}
		for j := i + 1; j < len(b.Tiles); j++ {
			if b.Tiles[j].Letter == string(PinsTarget[i]) {
				next, _, err := p.Mutate(b, engine.Event{Verb: "swap", Args: []string{itoa(i + 1), itoa(j + 1)}})
				if err != nil {
					t.Fatalf("swap: %v", err)
				}
				b = next.(PinsBoard)
				break
			}
		}
	}
	if !p.IsSolved(b) {
		t.Fatalf("letters=%s", b.Letters())
	}
}

func itoa(i int) string { return string(rune('0' + i)) }

func TestPinsPickAndMove(t *testing.T) {
	p := Pins{}
	b0 := p.NewBoard(nil).(PinsBoard)
	b, _ := apply(t, p, b0, "pick 1", "pick 2")
	got := b.(PinsBoard)
	if got.Tiles[0] != b0.Tiles[1] || got.Tiles[1] != b0.Tiles[0] || got.Picked != -1 {
		t.Fatalf("pick swap failed")
	}
	if b0.Tiles[0] == got.Tiles[0] {
		t.Fatalf("mutate changed the input board")
	}
	b, _ = apply(t, p, b0, "move 1 7")
	if b.(PinsBoard).Tiles[6] != b0.Tiles[0] {
		t.Fatalf("move failed")
	}
	if _, _, err := p.Mutate(b0, engine.ParseEvent("swap 0 9")); !errors.Is(err, engine.ErrInvalidEvent) {
		t.Fatalf("err=%v", err)
	}
}

func TestSnippetConsole(t *testing.T) {
	p := Snippet{}
	b := p.NewBoard(nil)
	b, fb := apply(t, p, b, "run center=true; padding=8;")
	if p.IsSolved(b) || !hasLine(fb, "CONFIG REJECTED. Exact match required.") || fb.Hint != 1 {
		t.Fatalf("reject feedback=%+v", fb)
	}
	b, fb = apply(t, p, b, "hint", "hint", "hint")
	if fb.Hint != engine.MaxHintTier || len(fb.Lines) != 0 {
		t.Fatalf("hint ladder not capped: %+v", fb)
	}
	_, fb = apply(t, p, b, "clear")
	if !fb.Clear {
		t.Fatalf("clear not flagged")
	}
	_, fb = apply(t, p, b, "exit")
	if !fb.Exit {
		t.Fatalf("exit not flagged")
	}
	solved, fb := apply(t, p, b, SnippetExpected)
	if !p.IsSolved(solved) || !hasLine(fb, "KEY-2: OAK") {
		t.Fatalf("bare config not accepted: %+v", fb)
	}
	solved, _ = apply(t, p, p.NewBoard(nil), "run "+SnippetExpected)
	if !p.IsSolved(solved) {
		t.Fatalf("run config not accepted")
	}
	if _, _, err := p.Mutate(b, engine.ParseEvent("dance")); !errors.Is(err, engine.ErrUnknownCommand) {
		t.Fatalf("err=%v", err)
	}
}

func TestSnippetEncodedIsShiftByThree(t *testing.T) {
	var sb strings.Builder
	for _, r := range SnippetEncoded {
		if r >= 'a' && r <= 'z' {
			r = 'a' + (r-'a'+23)%26
		}
		sb.WriteRune(r)
	}
	if sb.String() != SnippetExpected {
		t.Fatalf("decoded %q", sb.String())
	}
}

func TestBookmarks(t *testing.T) {
	p := Bookmarks{}
	b := p.NewBoard(nil)
	b, fb := apply(t, p, b, "a")
	if p.IsSolved(b) || fb.Hint != 1 {
		t.Fatalf("wrong pick feedback=%+v", fb)
	}
	b, fb = apply(t, p, b, "submit")
	if fb.Hint != 2 {
		t.Fatalf("resubmit did not escalate: %d", fb.Hint)
	}
	b, fb = apply(t, p, b, "?", "?")
	if fb.Hint != 3 {
		t.Fatalf("manual hint tier=%d", fb.Hint)
	}
	b, fb = apply(t, p, b, "select b", "submit")
	if !p.IsSolved(b) || !hasLine(fb, "KEY-3: NEW-DAY") {
		t.Fatalf("clone not purged: %+v", fb)
	}
	_, fb = apply(t, p, p.NewBoard(nil), "submit")
	if !hasLine(fb, "Pick A, B, or C first.") {
		t.Fatalf("empty submit=%+v", fb)
	}
}

func TestFiles(t *testing.T) {
	p := Files{}
	b := p.NewBoard(nil)
	b, _ = apply(t, p, b, "quarantine f1", "quarantine f2", "quarantine f3")
	if p.IsSolved(b) {
		t.Fatalf("f2 quarantined must not solve")
	}
	b, fb := apply(t, p, b, "restore f2")
	if !p.IsSolved(b) || !hasLine(fb, "KEY-4: TRUE-PLANE") {
		t.Fatalf("files not solved: %+v", fb)
	}
	_, fb = apply(t, p, b, "info f2")
	if len(fb.Lines) != 1 {
		t.Fatalf("info=%+v", fb)
	}
	if _, _, err := p.Mutate(b, engine.ParseEvent("quarantine f9")); !errors.Is(err, engine.ErrInvalidEvent) {
		t.Fatalf("err=%v", err)
	}
}

func TestSlash(t *testing.T) {
	p := Slash{}
	b := p.NewBoard(nil)
	b, fb := apply(t, p, b, "side a yes")
	if p.IsSolved(b) || hasLine(fb, "AUDIT CLEAN.") {
		t.Fatalf("half answer solved")
	}
	b, fb = apply(t, p, b, "exact a yes")
	if !p.IsSolved(b) || !hasLine(fb, "KEY-5: NAME-WINS") {
		t.Fatalf("audit not clean: %+v", fb)
	}
	b, _ = apply(t, p, b, "side b yes")
	if p.IsSolved(b) {
		t.Fatalf("B side yes must fail")
	}
	if _, _, err := p.Mutate(b, engine.ParseEvent("side a maybe")); !errors.Is(err, engine.ErrInvalidEvent) {
		t.Fatalf("err=%v", err)
	}
}

func TestSwitchboard(t *testing.T) {
	p := Switchboard{}
	b := p.NewBoard(nil)
	b, _ = apply(t, p, b, "surface stone", "serveware plate")
	if p.IsSolved(b) {
		t.Fatalf("stone solved")
	}
	b, fb := apply(t, p, b, "surface oak")
	if !p.IsSolved(b) || !hasLine(fb, "KEY-6: OAK-OVERHEAD") {
		t.Fatalf("oak+plate not locked: %+v", fb)
	}
	b, _ = apply(t, p, b, "serveware container")
	if p.IsSolved(b) {
		t.Fatalf("container solved")
	}
	if _, _, err := p.Mutate(b, engine.ParseEvent("surface marble")); !errors.Is(err, engine.ErrInvalidEvent) {
		t.Fatalf("err=%v", err)
	}
}

func TestAlign(t *testing.T) {
	p := NewAlign(600)
	b := p.NewBoard(nil).(AlignBoard)
	if p.Pads(b).InRange() {
		t.Fatalf("starts in range")
	}
	near, fb := apply(t, p, b, "move 290 300")
	if p.IsSolved(near) || hasLine(fb, "CENTER CONFIRMED.") {
		t.Fatalf("x=290 is outside tolerance")
	}
	locked, fb := apply(t, p, near, "nudge right 6")
	lb := locked.(AlignBoard)
	if !p.IsSolved(locked) || !lb.Locked || lb.X != 300 || lb.Y != 300 {
		t.Fatalf("not snapped: %+v", lb)
	}
	if !hasLine(fb, "KEY-7: PCT-08") {
		t.Fatalf("feedback=%+v", fb)
	}
	after, _ := apply(t, p, locked, "nudge left 20")
	if after.(AlignBoard) != lb {
		t.Fatalf("locked frame moved")
	}
	clamped, _ := apply(t, p, b, "move -100 9999")
	cb := clamped.(AlignBoard)
	if cb.X != 252 || cb.Y != 348 {
		t.Fatalf("clamp=%+v", cb)
	}
}

func TestFinale(t *testing.T) {
	p := Finale{}
	b := p.NewBoard(nil).(FinaleBoard)
	// tile ids follow library order: 1 S, 2 N, 3 R, 4 F, 5 D, 6 F, 7 N
	got, _ := apply(t, p, b, "place 1 1", "place 2 2", "place 3 3", "place 4 4", "place 5 5", "place 6 6")
	if p.IsSolved(got) {
		t.Fatalf("six slots solved")
	}
	got, fb := apply(t, p, got, "place 7 7")
	if !p.IsSolved(got) || !hasLine(fb, "ACCESS GRANTED.") {
		t.Fatalf("not granted: %+v", fb)
	}
	// duplicate letters are interchangeable
	swapped, _ := apply(t, p, b, "place 1 1", "place 7 2", "place 3 3", "place 6 4", "place 5 5", "place 4 6", "place 2 7")
	if !p.IsSolved(swapped) {
		t.Fatalf("equivalent F/N tiles rejected")
	}
	cleared, _ := apply(t, p, got, "clear 3")
	cb := cleared.(FinaleBoard)
	if p.IsSolved(cleared) || len(cb.Tray) != 1 {
		t.Fatalf("clear failed: %+v", cb)
	}
	keyed, fb := apply(t, p, b, "key OAK NEW-DAY")
	if keyed.(FinaleBoard).Key != "OAK NEW-DAY" || len(fb.Lines) != 1 {
		t.Fatalf("key=%q", keyed.(FinaleBoard).Key)
	}
}
