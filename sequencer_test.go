package ptmod

import (
	"errors"
	"io"
	"testing"
)

func TestPatternBreak(t *testing.T) {
	m := newTestSong(t, []uint8{0, 1},
		testCell{0, 10, 0, "--- 00 D20"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	if !runTicks(e, 12*6) {
		t.Fatal("unexpected song end")
	}
	if len(log.rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(log.rows))
	}
	if have := log.rows[10]; have != (rowPos{0, 0, 10}) {
		t.Errorf("row 10: have %+v", have)
	}
	if have := log.rows[11]; have != (rowPos{1, 1, 20}) {
		t.Errorf("after the break: have %+v, want order 1 row 20", have)
	}
}

func TestPatternBreakOutOfRange(t *testing.T) {
	m := newTestSong(t, []uint8{0, 1},
		testCell{0, 0, 0, "--- 00 D70"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	runTicks(e, 2*6)
	if have := log.rows[1]; have != (rowPos{1, 1, 0}) {
		t.Errorf("a break to row 70 should go to row 0, got %+v", have)
	}
}

func TestPositionJumpBeyondEnd(t *testing.T) {
	cells := []testCell{{1, 0, 0, "--- 00 B05"}}

	t.Run("loop", func(t *testing.T) {
		e := newTestEngine(t, Config{Loop: true}, newTestSong(t, []uint8{0, 1}, cells...))
		log := recordEvents(e)
		e.Play()
		if !runTicks(e, (64+3)*6) {
			t.Fatal("a looped song should never end")
		}
		for _, row := range log.rows[64:] {
			if row != (rowPos{1, 1, 0}) {
				t.Fatalf("the jump should be clamped to the last order, got %+v", row)
			}
		}
	})

	t.Run("no loop", func(t *testing.T) {
		e := newTestEngine(t, Config{}, newTestSong(t, []uint8{0, 1}, cells...))
		log := recordEvents(e)
		e.Play()
		if runTicks(e, (64+3)*6) {
			t.Fatal("expected the song to end")
		}
		if log.songEnds != 1 {
			t.Errorf("expected 1 song end event, got %d", log.songEnds)
		}
		if len(log.rows) != 65 {
			t.Errorf("expected 65 rows, got %d", len(log.rows))
		}
	})
}

func TestPositionJumpWithBreak(t *testing.T) {
	m := newTestSong(t, []uint8{0, 1, 2},
		testCell{0, 0, 0, "--- 00 B02"},
		testCell{0, 0, 1, "--- 00 D05"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	runTicks(e, 2*6)
	if have := log.rows[1]; have != (rowPos{2, 2, 5}) {
		t.Errorf("have %+v, want order 2 row 5", have)
	}
}

func TestSongEnd(t *testing.T) {
	m := newTestSong(t, []uint8{0},
		testCell{0, 0, 0, "C-2 01 000"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	buf := make([]byte, 4096)
	reads := 0
	for {
		n, err := e.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if n != len(buf) {
			t.Fatalf("short read without an error: %d", n)
		}
		reads++
		if reads > 1000 {
			t.Fatal("the song never ends")
		}
	}

	if log.songEnds != 1 {
		t.Errorf("expected 1 song end event, got %d", log.songEnds)
	}
	if len(log.rows) != 64 {
		t.Errorf("expected 64 rows, got %d", len(log.rows))
	}
	if n, err := e.Read(buf); n != 0 || err != io.EOF {
		t.Errorf("expected (0, EOF) after the end, got (%d, %v)", n, err)
	}
}

func TestSeekBackKeepsPlaying(t *testing.T) {
	e := newTestEngine(t, Config{}, newTestSong(t, []uint8{0, 1, 2}))
	log := recordEvents(e)
	e.Play()

	if !runTicks(e, 96*6) {
		t.Fatal("unexpected song end")
	}
	if err := e.SetPosition(0, 0); err != nil {
		t.Fatal(err)
	}
	log.rows = log.rows[:0]
	if !runTicks(e, 70*6) {
		t.Fatalf("the song ended after %d rows", len(log.rows))
	}
	if log.songEnds != 0 {
		t.Errorf("expected no song end events, got %d", log.songEnds)
	}
	if have := log.rows[64]; have != (rowPos{1, 1, 0}) {
		t.Errorf("have %+v, want order 1 row 0", have)
	}
}

func TestShrinkSongKeepsPlaying(t *testing.T) {
	e := newTestEngine(t, Config{}, newTestSong(t, []uint8{0, 1, 2}))
	log := recordEvents(e)
	e.Play()

	if !runTicks(e, 140*6) {
		t.Fatal("unexpected song end")
	}
	// The cursor is moved to the start of the new last order.
	if err := e.SetSongLength(2); err != nil {
		t.Fatal(err)
	}
	log.rows = log.rows[:0]
	if !runTicks(e, 10*6) {
		t.Fatal("unexpected song end")
	}
	if have := log.rows[0]; have != (rowPos{1, 1, 0}) {
		t.Errorf("have %+v, want order 1 row 0", have)
	}
}

func TestSongRevisitEnds(t *testing.T) {
	m := newTestSong(t, []uint8{0, 1},
		testCell{1, 3, 0, "--- 00 B00"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	if runTicks(e, 200*6) {
		t.Fatal("expected the song to end on a backward jump")
	}
	if len(log.rows) != 64+4 {
		t.Errorf("expected %d rows, got %d", 64+4, len(log.rows))
	}
}

func TestSongLoop(t *testing.T) {
	m := newTestSong(t, []uint8{0, 1})
	e := newTestEngine(t, Config{Loop: true}, m)
	log := recordEvents(e)
	e.Play()

	if !runTicks(e, 130*6) {
		t.Fatal("unexpected song end")
	}
	if have := log.rows[128]; have != (rowPos{0, 0, 0}) {
		t.Errorf("expected a wrap to the first order, got %+v", have)
	}
	if log.songEnds != 0 {
		t.Errorf("unexpected song end events")
	}
}

func TestPlayPatternMode(t *testing.T) {
	m := newTestSong(t, []uint8{0, 1},
		testCell{1, 4, 0, "--- 00 D10"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	if err := e.PlayPattern(1, 2); err != nil {
		t.Fatal(err)
	}

	if !runTicks(e, 4*6) {
		t.Fatal("pattern mode should never end")
	}
	for i, row := range log.rows {
		if row.pattern != 1 {
			t.Fatalf("row %d: unexpected pattern %d", i, row.pattern)
		}
	}
	if have := log.rows[3].row; have != 10 {
		t.Errorf("a break should only change the row in the pattern mode, got row %d", have)
	}
}

func TestPatternDelay(t *testing.T) {
	m := newTestSong(t, []uint8{0},
		testCell{0, 0, 0, "--- 00 EE2"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	for tick := 1; tick <= 19; tick++ {
		runTicks(e, 1)
		want := 1
		if tick == 19 {
			want = 2
		}
		if len(log.rows) != want {
			t.Fatalf("tick %d: expected %d rows, got %d", tick, want, len(log.rows))
		}
	}
}

func TestPatternLoop(t *testing.T) {
	m := newTestSong(t, []uint8{0},
		testCell{0, 0, 2, "--- 00 E60"},
		testCell{0, 2, 2, "--- 00 E62"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	runTicks(e, 10*6)
	want := []int{0, 1, 2, 0, 1, 2, 0, 1, 2, 3}
	for i, row := range log.rows {
		if row.row != want[i] {
			t.Fatalf("row %d: have %d, want %d", i, row.row, want[i])
		}
	}
}

func TestSetSpeedCommands(t *testing.T) {
	m := newTestSong(t, []uint8{0},
		testCell{0, 0, 0, "--- 00 F03"},
		testCell{0, 1, 0, "--- 00 F96"},
	)
	e := newTestEngine(t, Config{}, m)
	log := recordEvents(e)
	e.Play()

	runTicks(e, 4)
	if len(log.rows) != 2 {
		t.Fatalf("expected the second row after 3 ticks, got %d rows", len(log.rows))
	}
	if e.speed != 3 || e.tempo != 150 {
		t.Errorf("expected speed=3 tempo=150, got speed=%d tempo=%d", e.speed, e.tempo)
	}
}

func TestSetSpeedVBlank(t *testing.T) {
	m := newTestSong(t, []uint8{0},
		testCell{0, 0, 0, "--- 00 F40"},
	)
	e := newTestEngine(t, Config{TempoMode: TempoVBlank}, m)
	e.Play()
	runTicks(e, 1)
	if e.speed != 0x40 {
		t.Errorf("expected speed 64 in VBlank mode, got %d", e.speed)
	}
	if e.tempo != defaultTempo {
		t.Errorf("tempo should not change in VBlank mode, got %d", e.tempo)
	}
}

func TestStopCommand(t *testing.T) {
	m := newTestSong(t, []uint8{0},
		testCell{0, 0, 0, "C-2 01 000"},
		testCell{0, 1, 0, "--- 00 F00"},
	)

	t.Run("no loop", func(t *testing.T) {
		e := newTestEngine(t, Config{}, m)
		log := recordEvents(e)
		e.Play()
		if runTicks(e, 7) {
			t.Fatal("expected F00 to stop the song")
		}
		if log.songEnds != 1 || !e.ended {
			t.Errorf("expected the song to be over")
		}
	})

	t.Run("loop", func(t *testing.T) {
		e := newTestEngine(t, Config{Loop: true}, m)
		e.Play()
		buf := make([]int16, 2*44100)
		n, err := e.Fill(buf)
		if err != nil || n != 44100 {
			t.Fatalf("looped engine should keep rendering: n=%d err=%v", n, err)
		}
		if s := e.Snapshot(); s.Playing {
			t.Errorf("expected F00 to stop the playback")
		}
	})
}

func TestFramesPerTickAccumulation(t *testing.T) {
	e := newTestEngine(t, Config{}, newTestSong(t, []uint8{0}))
	const numTicks = 1000
	total := 0
	for i := 0; i < numTicks; i++ {
		e.scheduleTick()
		total += e.framesLeft
	}
	if want := int(numTicks * e.framesPerTick >> 32); total != want {
		t.Errorf("have %d frames, want %d", total, want)
	}
}
