package ptmod

import (
	"sync"
	"testing"
)

// TestConcurrentControl runs the control operations and snapshots
// while another goroutine renders the audio.
// The race detector is the main oracle here:
// go test -race -run TestConcurrentControl -count=1
func TestConcurrentControl(t *testing.T) {
	e := newTestEngine(t, Config{Loop: true}, newMusicSong(t))
	notes := 0
	e.SetEventHandler(func(ev Event) {
		if ev.Kind == EventNote {
			notes++
		}
	})
	e.Play()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	started := make(chan struct{})
	var stopOnce sync.Once
	shutdown := func() {
		stopOnce.Do(func() { close(stop) })
		wg.Wait()
	}
	defer shutdown()

	fills := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if fills == 0 {
				close(started)
			}
		}()
		buf := make([]int16, 512)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := e.Fill(buf); err != nil {
				t.Errorf("fill: %v", err)
				return
			}
			fills++
			if fills == 1 {
				close(started)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 1024)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := e.Read(buf); err != nil {
				t.Errorf("read: %v", err)
				return
			}
		}
	}()

	<-started
	for i := 0; i < 2000; i++ {
		if err := e.SetTempo(100 + i%100); err != nil {
			t.Fatal(err)
		}
		if err := e.Jam(i%NumChannels, 1+i%3, 1+i%NumNotes); err != nil {
			t.Fatal(err)
		}
		if err := e.SetCell(0, i%NumRows, i%NumChannels, parseTestNote(t, "C-2 02 A01")); err != nil {
			t.Fatal(err)
		}
		e.SetLEDFilter(i%2 == 0)
		e.Update(func(tx *Tx) {
			tx.SetStereoSeparation(i % 101)
			if err := tx.SetChannelMuted(3, i%7 == 0); err != nil {
				t.Error(err)
			}
		})
		s := e.Snapshot()
		if s.Tempo < minTempo || s.Tempo > maxTempo {
			t.Fatalf("bad tempo in a snapshot: %d", s.Tempo)
		}
		_ = e.SongInfo()
	}
	shutdown()

	if fills == 0 {
		t.Error("the audio goroutine did not render anything")
	}
	e.Update(func(tx *Tx) {
		if notes == 0 {
			t.Error("expected some note events")
		}
	})
}
