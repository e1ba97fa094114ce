package main

import (
	"log/slog"
	"sync/atomic"

	"github.com/quasilyte/ptmod"
)

// eventQueue moves the engine events from the audio thread to the game loop.
//
// The engine calls the handler with its lock held, so push never blocks
// and never logs. The events are logged by drain instead.
type eventQueue struct {
	events  chan ptmod.Event
	dropped atomic.Uint64
}

func newEventQueue(size int) *eventQueue {
	return &eventQueue{events: make(chan ptmod.Event, size)}
}

// push is the engine event handler.
func (q *eventQueue) push(ev ptmod.Event) {
	if ev.Kind != ptmod.EventSongEnd {
		return
	}
	select {
	case q.events <- ev:
	default:
		q.dropped.Add(1)
	}
}

// drain logs the queued events and returns their number.
func (q *eventQueue) drain(logger *slog.Logger) int {
	n := 0
	for {
		select {
		case ev := <-q.events:
			n++
			logger.Debug("song end", "time", ev.Time)
		default:
			if dropped := q.dropped.Swap(0); dropped != 0 {
				logger.Warn("engine events are dropped", "count", dropped)
			}
			return n
		}
	}
}
