package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/quasilyte/ptmod"
)

func TestEventQueue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	q := newEventQueue(2)
	q.push(ptmod.Event{Kind: ptmod.EventRow})
	q.push(ptmod.Event{Kind: ptmod.EventSongEnd, Time: 1.5})
	if n := q.drain(logger); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
	if !strings.Contains(buf.String(), "time=1.5") {
		t.Errorf("the song end is not logged:\n%s", buf.String())
	}

	buf.Reset()
	for i := 0; i < 5; i++ {
		q.push(ptmod.Event{Kind: ptmod.EventSongEnd})
	}
	if n := q.drain(logger); n != 2 {
		t.Fatalf("expected 2 queued events, got %d", n)
	}
	if !strings.Contains(buf.String(), "count=3") {
		t.Errorf("the dropped events are not reported:\n%s", buf.String())
	}
	if n := q.drain(logger); n != 0 {
		t.Errorf("expected an empty queue, got %d events", n)
	}
}

func TestRecordToggle(t *testing.T) {
	g := &game{}
	g.toggleRecording()
	if !g.recording {
		t.Fatal("expected the record mode without a MIDI input")
	}
	if !strings.Contains(g.modeLine(), "REC") {
		t.Errorf("the record mode is not shown: %q", g.modeLine())
	}
	g.toggleRecording()
	if g.recording || strings.Contains(g.modeLine(), "REC") {
		t.Errorf("the record mode is still on: %q", g.modeLine())
	}
}
