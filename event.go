package ptmod

// EventKind is an event tag that should be used to differentiate between different event types.
// See Event docs for more info.
type EventKind int

const (
	// EventUnknown is a sentinel value.
	// You should never receive an event of this kind.
	EventUnknown EventKind = iota

	// EventRow is emitted every time the replayer starts a new row.
	// Repeated rows (EEx pattern delay) do not produce this event.
	//
	// Use Event.RowEventData to get the event data.
	EventRow

	// EventNote is emitted every time a channel triggers a note.
	// This includes the delayed (EDx) and retriggered (E9x) notes.
	//
	// Use Event.NoteEventData to get the event data.
	EventNote

	// EventSongEnd is emitted when the playback stops by itself:
	// the song is over or an F00 command was executed.
	EventSongEnd
)

func (k EventKind) String() string {
	switch k {
	case EventRow:
		return "row"
	case EventNote:
		return "note"
	case EventSongEnd:
		return "song end"
	default:
		return "unknown"
	}
}

// Event holds a single Engine event data.
// This object is an argument to the Engine.SetEventHandler function.
//
// To handle the event correctly, you must first check its kind.
// For an event of kind EventNote there is a NoteEventData method that
// will return the associated data. For EventRow there is a RowEventData.
//
// Every event has a Time value. This is a moment when this event happened in
// relation to the stream start (in seconds).
// The events are produced while rendering the audio, so they arrive
// ahead of the moment the sound is actually heard.
type Event struct {
	Kind EventKind

	// Channel is an event channel ID (0..3).
	// Channel-independent events have it set to -1.
	Channel int

	// Time represents the playback offset in seconds.
	Time float64

	value uint64
}

// RowEventData returns the event data if e.Kind=EventRow.
// The return values are: order position, pattern, row.
func (e Event) RowEventData() (order, pattern, row int) {
	return int(e.value & 0xff), int((e.value >> 8) & 0xff), int((e.value >> 16) & 0xff)
}

// NoteEventData returns the event data if e.Kind=EventNote.
// The return values are: note (1..36), sample (1..31), volume (0..64).
func (e Event) NoteEventData() (note, sample, volume int) {
	return int(e.value & 0xff), int((e.value >> 8) & 0xff), int((e.value >> 16) & 0xff)
}

func makeEventValue(a, b, c int) uint64 {
	return uint64(a&0xff) | uint64(b&0xff)<<8 | uint64(c&0xff)<<16
}
