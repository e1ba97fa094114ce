package ptmod

import (
	"strconv"
	"strings"
	"testing"

	"github.com/quasilyte/ptmod/modfile"
)

// testCell describes a pattern cell in the tracker notation:
// "C-2 01 A0F" is a C-2 note of the sample 1 with a volume slide.
type testCell struct {
	pattern int
	row     int
	channel int
	text    string
}

func parseTestNote(t testing.TB, s string) modfile.Note {
	t.Helper()

	fields := strings.Fields(s)
	if len(fields) != 3 {
		t.Fatalf("bad cell %q: expected 3 fields", s)
	}

	var n modfile.Note
	if fields[0] != "---" {
		note := 0
		for i := 1; i <= NumNotes; i++ {
			if NoteName(i) == fields[0] {
				note = i
				break
			}
		}
		if note == 0 {
			t.Fatalf("bad cell %q: unknown note", s)
		}
		n.Period = uint16(NotePeriod(note, 0))
	}

	sample, err := strconv.ParseUint(fields[1], 16, 8)
	if err != nil {
		t.Fatalf("bad cell %q: %v", s, err)
	}
	n.Sample = uint8(sample)

	effect, err := strconv.ParseUint(fields[2], 16, 16)
	if err != nil || len(fields[2]) != 3 {
		t.Fatalf("bad cell %q: invalid effect", s)
	}
	n.Effect = uint8(effect >> 8)
	n.Param = uint8(effect)

	return n
}

// newTestSong creates a module with these samples:
//
//	1: a looped 32-byte square wave, volume 64
//	2: a 16-byte one-shot ramp, volume 32
//	3: a 1024-byte one-shot saw, volume 48
func newTestSong(t testing.TB, orders []uint8, cells ...testCell) *modfile.Module {
	t.Helper()

	m := modfile.NewModule()
	m.Name = "test"
	m.Orders = orders
	m.Patterns = make([]modfile.Pattern, m.NumUsedPatterns())

	square := make([]int8, 32)
	for i := range square {
		square[i] = 100
		if i >= 16 {
			square[i] = -100
		}
	}
	m.Samples[0] = modfile.Sample{Name: "square", Volume: 64, LoopLength: 32, Data: square}

	ramp := make([]int8, 16)
	for i := range ramp {
		ramp[i] = int8(i*8 - 64)
	}
	m.Samples[1] = modfile.Sample{Name: "ramp", Volume: 32, Data: ramp}

	saw := make([]int8, 1024)
	for i := range saw {
		saw[i] = int8(i)
	}
	m.Samples[2] = modfile.Sample{Name: "saw", Volume: 48, Data: saw}

	for _, c := range cells {
		m.Patterns[c.pattern].Rows[c.row][c.channel] = parseTestNote(t, c.text)
	}
	return m
}

func newTestEngine(t testing.TB, config Config, m *modfile.Module) *Engine {
	t.Helper()
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.LoadModule(m); err != nil {
		t.Fatalf("load module: %v", err)
	}
	return e
}

// runTicks drives the sequencer directly, like render does.
// It returns false if the song ended.
func runTicks(e *Engine, n int) bool {
	for i := 0; i < n; i++ {
		if !e.nextTick() {
			e.finishSong()
			return false
		}
	}
	return true
}

type rowPos struct {
	order   int
	pattern int
	row     int
}

type eventLog struct {
	rows     []rowPos
	notes    []Event
	songEnds int
}

func recordEvents(e *Engine) *eventLog {
	log := &eventLog{}
	e.SetEventHandler(func(ev Event) {
		switch ev.Kind {
		case EventRow:
			order, pattern, row := ev.RowEventData()
			log.rows = append(log.rows, rowPos{order, pattern, row})
		case EventNote:
			log.notes = append(log.notes, ev)
		case EventSongEnd:
			log.songEnds++
		}
	})
	return log
}
