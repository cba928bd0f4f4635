package store

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/DaanHessen/snappr/internal/engine"
	"github.com/DaanHessen/snappr/internal/util"
)

func sampleRecord() engine.Record {
	r := engine.NewRecord(engine.Channel("#ai-manila"))
	r.Append(engine.Channel("#ai-manila"), engine.Message{Author: "Migi", Text: "check-in", TS: "09:41"})
	r.Append(engine.Direct("Unknown User"), engine.Message{Author: "Unknown User", Text: "pick good", Action: &engine.Action{Label: "Open", To: engine.ScreenPins}})
	r.NarrativeStage = 5
	r.Completed[engine.PuzzlePins] = true
	r.Signals["pinsSolved"] = true
	r.PendingNav = &engine.PendingNav{From: engine.ScreenPins, To: engine.ScreenHub, DueAt: 42}
	return r
}

func roundTrip(t *testing.T, b Backend, compress bool) {
	t.Helper()
	ctx := context.Background()
	s, err := NewRecordStore(b, "sess", WithCompression(compress))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, ok := s.Load(ctx); ok {
		t.Fatalf("empty backend returned a record")
	}
	want := sampleRecord()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := s.Load(ctx)
	if !ok {
		t.Fatalf("record missing after save")
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip changed record\nwant %+v\ngot  %+v", want, got)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Load(ctx); ok {
		t.Fatalf("record survived clear")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	roundTrip(t, NewMemoryBackend(), false)
}

func TestCompressedRoundTrip(t *testing.T) {
	b := NewMemoryBackend()
	roundTrip(t, b, true)

	s, _ := NewRecordStore(b, "sess", WithCompression(true))
	if err := s.Save(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _, _ := b.Get(context.Background(), s.Key())
	if !bytes.HasPrefix(raw, zstdMagic) {
		t.Fatalf("payload not compressed")
	}
	// a plain store still reads compressed payloads
	plain, _ := NewRecordStore(b, "sess")
	if _, ok := plain.Load(context.Background()); !ok {
		t.Fatalf("plain store could not read compressed payload")
	}
}

func TestBoltRoundTrip(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	roundTrip(t, b, true)
}

func TestSQLiteRoundTrip(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "state.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	roundTrip(t, b, false)
}

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("SNAPPR_TEST_DSN")
	if dsn == "" {
		t.Skip("SNAPPR_TEST_DSN not set")
	}
	b, err := OpenBackend(context.Background(), util.Config{Backend: util.BackendPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	roundTrip(t, b, true)
}

func TestCorruptPayloadsLoadAsAbsent(t *testing.T) {
	ctx := context.Background()
	cases := map[string][]byte{
		"bad zstd":       append(append([]byte{}, zstdMagic...), 0x00, 0x01, 0x02),
		"bad json":       []byte(`{"version":1,`),
		"schema":         []byte(`{"version":1,"activeView":{"kind":"channel","name":"#x"},"messages":"nope","narrativeStage":0,"nextMessageId":1}`),
		"wrong version":  []byte(`{"version":9,"activeView":{"kind":"channel","name":"#x"},"messages":[],"narrativeStage":0,"nextMessageId":1}`),
		"negative stage": []byte(`{"version":1,"activeView":{"kind":"channel","name":"#x"},"messages":[],"narrativeStage":-1,"nextMessageId":1}`),
	}
	for name, payload := range cases {
		var logs bytes.Buffer
		b := NewMemoryBackend()
		s, _ := NewRecordStore(b, "sess", WithLogger(log.New(&logs, "", 0)))
		_ = b.Put(ctx, s.Key(), payload)
		if _, ok := s.Load(ctx); ok {
			t.Fatalf("%s: corrupt payload loaded", name)
		}
		if !strings.Contains(logs.String(), "state corrupt") {
			t.Fatalf("%s: corruption not logged: %q", name, logs.String())
		}
	}
}

func TestLoadRepairsCounters(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	s, _ := NewRecordStore(b, "sess")
	payload := `{"version":1,"activeView":{"kind":"channel","name":"#ai-manila"},"messages":[{"id":9,"author":"a","text":"x","channel":"#ai-manila"}],"narrativeStage":2,"nextMessageId":3}`
	_ = b.Put(ctx, s.Key(), []byte(payload))
	r, ok := s.Load(ctx)
	if !ok {
		t.Fatalf("valid payload rejected")
	}
	if r.NextMessageID != 10 {
		t.Fatalf("next id=%d", r.NextMessageID)
	}
	if r.Completed == nil || r.Signals == nil || r.DirectMsgs == nil {
		t.Fatalf("collections not normalized")
	}
}

func TestRecordKeyIsSessionScoped(t *testing.T) {
	if RecordKey("abc") != "abc:progression.v1" {
		t.Fatalf("key=%s", RecordKey("abc"))
	}
	if _, err := NewRecordStore(NewMemoryBackend(), " "); err == nil {
		t.Fatalf("expected error for blank session")
	}
}

func TestSessionSurvivesStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()
	b, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, _ := NewRecordStore(b, "sess")
	if err := s.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}
	b.Close()

	b, err = OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	s, _ = NewRecordStore(b, "sess")
	r, ok := s.Load(ctx)
	if !ok || r.NarrativeStage != 5 || !r.Completed[engine.PuzzlePins] {
		t.Fatalf("reloaded=%+v ok=%v", r, ok)
	}
}
