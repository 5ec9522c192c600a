package otel

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEmitWritesValidJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindPoolRequest, Level: LevelInfo, Comp: "ui", Gen: 3, Strategy: "random", Mode: "fill"})
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["kind"] != "pool.request" {
		t.Errorf("expected kind=pool.request, got %v", decoded["kind"])
	}
	if decoded["gen"] != float64(3) {
		t.Errorf("expected gen=3, got %v", decoded["gen"])
	}
	if decoded["strategy"] != "random" {
		t.Errorf("expected strategy=random, got %v", decoded["strategy"])
	}
}

func TestEmitSetsTimeAndSessionID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", ev.Time, before, after)
	}
	if ev.SessionID != l.SessionID() {
		t.Errorf("session_id = %q, want %q", ev.SessionID, l.SessionID())
	}
	if len(ev.SessionID) != 16 {
		t.Errorf("session_id should be 16 hex chars, got %d: %q", len(ev.SessionID), ev.SessionID)
	}
}

func TestDurToMs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindPoolApplied, Dur: 1500 * time.Millisecond})
	l.Close()

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if durMs, _ := decoded["dur_ms"].(float64); durMs != 1500 {
		t.Errorf("expected dur_ms=1500, got %v", decoded["dur_ms"])
	}
}

func TestOmitempty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := strings.TrimSpace(buf.String())
	for _, field := range []string{"dur_ms", "count", "gen", "strategy", "mode", "card_id", "query", "err", "msg", "extra"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("expected field %q to be omitted, but found in: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindLedgerRecord, Comp: "test"})
		}()
	}
	wg.Wait()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 lines, got %d", len(lines))
	}
}

func TestNilAndNullLogger(t *testing.T) {
	l := NewNullLogger()
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	var nilLogger *Logger
	nilLogger.Emit(Event{Kind: KindStartup})
	nilLogger.Close()
}

func TestCloseIdempotentAndDropsAfterClose(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindStartup, Msg: "start"})
	l.Emit(Event{Kind: KindShutdown, Msg: "stop"})
	l.Close()
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after Close, got %d", len(lines))
	}

	l.Emit(Event{Kind: KindPoolStale})
	if l.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1 after emitting on a closed logger", l.Dropped())
	}
}

func TestDropCounter(t *testing.T) {
	bw := &blockingWriter{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	l := NewLogger(bw)

	l.Emit(Event{Kind: KindPoolRequest})
	<-bw.started

	for i := 0; i < writerChanSize+10; i++ {
		l.Emit(Event{Kind: KindPoolRequest})
	}

	if l.Dropped() == 0 {
		t.Error("expected some drops when channel is full, got 0")
	}

	close(bw.block)
	l.Close()
}

type blockingWriter struct {
	started chan struct{}
	block   chan struct{}
	once    sync.Once
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
		<-w.block
	})
	return len(p), nil
}

func TestConvenienceHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Info(KindStartup, "main", "starting")
	l.Warn(KindPoolStale, "ui", "gen 2 superseded")
	l.Error(KindLedgerClear, "ledger", errForTest("service down"))
	l.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	tests := []struct {
		level string
		kind  string
		comp  string
	}{
		{"info", "sys.startup", "main"},
		{"warn", "pool.stale", "ui"},
		{"error", "ledger.clear", "ledger"},
	}
	for i, tt := range tests {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &decoded); err != nil {
			t.Errorf("line %d: %v", i, err)
			continue
		}
		if decoded["level"] != tt.level || decoded["kind"] != tt.kind || decoded["comp"] != tt.comp {
			t.Errorf("line %d: got (%v, %v, %v), want (%s, %s, %s)",
				i, decoded["level"], decoded["kind"], decoded["comp"], tt.level, tt.kind, tt.comp)
		}
	}
}

type errForTest string

func (e errForTest) Error() string { return string(e) }
