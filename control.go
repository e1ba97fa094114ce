package ptmod

import (
	"fmt"

	"github.com/quasilyte/ptmod/modfile"
)

// Tx gives access to the engine control operations
// while the engine lock is held.
//
// A Tx is only valid inside the Engine.Update callback.
type Tx struct {
	e *Engine
}

// Update runs f with the engine lock held.
//
// All changes made through tx are applied between two rendered buffers.
// f must not call any of the Engine methods directly.
func (e *Engine) Update(f func(tx *Tx)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tx := Tx{e: e}
	f(&tx)
}

func (e *Engine) locked() (*Tx, func()) {
	e.mu.Lock()
	return &Tx{e: e}, e.mu.Unlock
}

// Play starts the song from the first row of the current order.
// If the song was over, it starts from the beginning.
func (tx *Tx) Play() {
	e := tx.e
	order := e.order
	if e.ended {
		order = 0
	}
	e.start(order, 0, PlaySong)
}

// PlayFrom starts the song from the given order position and row.
func (tx *Tx) PlayFrom(order, row int) error {
	if err := tx.checkPosition(order, row); err != nil {
		return err
	}
	tx.e.start(order, row, PlaySong)
	return nil
}

// PlayPattern loops over a single pattern, starting from the given row.
func (tx *Tx) PlayPattern(pattern, row int) error {
	if pattern < 0 || pattern >= MaxPatterns {
		return fmt.Errorf("%w: pattern %d", ErrOutOfRange, pattern)
	}
	if row < 0 || row >= NumRows {
		return fmt.Errorf("%w: row %d", ErrOutOfRange, row)
	}
	e := tx.e
	e.pattern = pattern
	e.start(e.order, row, PlayPattern)
	return nil
}

// Stop silences all channels and pauses the sequencer.
// The position is kept.
func (tx *Tx) Stop() {
	tx.e.stop()
}

// Restart plays the song from the very beginning.
func (tx *Tx) Restart() {
	tx.e.start(0, 0, PlaySong)
}

// SetPosition moves the playback cursor without changing the play state.
// The new row is played on the next tick.
func (tx *Tx) SetPosition(order, row int) error {
	if err := tx.checkPosition(order, row); err != nil {
		return err
	}
	e := tx.e
	e.ended = false
	e.moveCursor(order, row)
	e.framesLeft = 0
	return nil
}

func (tx *Tx) checkPosition(order, row int) error {
	if order < 0 || order >= tx.e.module.songLength {
		return fmt.Errorf("%w: order %d (song length is %d)", ErrOutOfRange, order, tx.e.module.songLength)
	}
	if row < 0 || row >= NumRows {
		return fmt.Errorf("%w: row %d", ErrOutOfRange, row)
	}
	return nil
}

// SetSpeed sets the number of ticks per row (1..31).
func (tx *Tx) SetSpeed(speed int) error {
	if speed < 1 || speed > maxSpeed {
		return fmt.Errorf("%w: speed %d", ErrOutOfRange, speed)
	}
	tx.e.speed = speed
	return nil
}

// SetTempo sets the CIA timer BPM (32..255).
// The new tick duration is used starting from the next tick.
func (tx *Tx) SetTempo(bpm int) error {
	if bpm < minTempo || bpm > maxTempo {
		return fmt.Errorf("%w: tempo %d", ErrOutOfRange, bpm)
	}
	tx.e.setTempo(bpm)
	return nil
}

func (tx *Tx) SetTempoMode(mode TempoMode) {
	e := tx.e
	e.settings.tempoMode = mode
	e.setTempo(e.tempo)
}

// SetLooping enables the song looping.
// When looping is enabled, Read never returns EOF.
func (tx *Tx) SetLooping(loop bool) {
	tx.e.settings.loop = loop
}

func (tx *Tx) SetFilterModel(model FilterModel) {
	tx.e.mixer.model = model
}

func (tx *Tx) SetLEDFilter(on bool) {
	tx.e.mixer.setLED(on)
}

// SetStereoSeparation sets the separation percentage.
// The value is clamped in [0, 100].
func (tx *Tx) SetStereoSeparation(percent int) {
	tx.e.mixer.setSeparation(percent)
}

func (tx *Tx) SetChannelMuted(channel int, muted bool) error {
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, channel)
	}
	tx.e.voices[channel].muted = muted
	return nil
}

// SetCell replaces a pattern cell.
// Patterns beyond the current pattern count are allocated implicitly.
func (tx *Tx) SetCell(pattern, row, channel int, n modfile.Note) error {
	e := tx.e
	if pattern < 0 || pattern >= MaxPatterns {
		return fmt.Errorf("%w: pattern %d", ErrOutOfRange, pattern)
	}
	if row < 0 || row >= NumRows {
		return fmt.Errorf("%w: row %d", ErrOutOfRange, row)
	}
	if channel < 0 || channel >= NumChannels {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, channel)
	}
	if n.Sample > NumSamples {
		return fmt.Errorf("%w: sample %d", ErrOutOfRange, n.Sample)
	}
	e.module.patterns[pattern].row(row)[channel] = compileNote(n)
	e.module.numPatterns = max(e.module.numPatterns, pattern+1)
	e.modified = true
	return nil
}

// Cell returns a pattern cell.
func (tx *Tx) Cell(pattern, row, channel int) (modfile.Note, error) {
	if pattern < 0 || pattern >= MaxPatterns || row < 0 || row >= NumRows || channel < 0 || channel >= NumChannels {
		return modfile.Note{}, fmt.Errorf("%w: cell %d:%d:%d", ErrOutOfRange, pattern, row, channel)
	}
	return decompileCell(tx.e.module.patterns[pattern].row(row)[channel]), nil
}

// SetOrder assigns a pattern to the order list position.
// The position must be inside the max song length (128),
// use SetSongLength to make it a part of the song.
func (tx *Tx) SetOrder(pos, pattern int) error {
	e := tx.e
	if pos < 0 || pos >= MaxOrders {
		return fmt.Errorf("%w: order position %d", ErrOutOfRange, pos)
	}
	if pattern < 0 || pattern >= MaxPatterns {
		return fmt.Errorf("%w: pattern %d", ErrOutOfRange, pattern)
	}
	e.module.orders[pos] = uint8(pattern)
	e.module.numPatterns = max(e.module.numPatterns, pattern+1)
	if pos == e.order && e.playMode == PlaySong {
		e.pattern = pattern
	}
	e.modified = true
	return nil
}

func (tx *Tx) SetSongLength(n int) error {
	e := tx.e
	if n < 1 || n > MaxOrders {
		return fmt.Errorf("%w: song length %d", ErrOutOfRange, n)
	}
	e.module.songLength = n
	if e.order >= n {
		e.moveCursor(n-1, 0)
	}
	e.modified = true
	return nil
}

// ReplaceSample assigns new data to the sample slot (1..31).
// The channels that are playing this sample are silenced.
func (tx *Tx) ReplaceSample(index int, s *modfile.Sample) error {
	if index < 1 || index > NumSamples {
		return fmt.Errorf("%w: sample %d", ErrOutOfRange, index)
	}
	if err := validateSample(s); err != nil {
		return err
	}
	e := tx.e
	e.silenceSlot(uint8(index))
	compileSample(&e.module.samples[index], s)
	e.modified = true
	return nil
}

// ClearSample makes the sample slot (1..31) empty.
func (tx *Tx) ClearSample(index int) error {
	return tx.ReplaceSample(index, &modfile.Sample{})
}

// RestoreSample brings back the sample slot (1..31) contents
// the way they were when the module was loaded.
// The channels that are playing this sample are silenced.
func (tx *Tx) RestoreSample(index int) error {
	if index < 1 || index > NumSamples {
		return fmt.Errorf("%w: sample %d", ErrOutOfRange, index)
	}
	e := tx.e
	e.silenceSlot(uint8(index))
	e.module.samples[index] = e.module.loadedSamples[index]
	e.modified = true
	return nil
}

// Sample returns a copy of the sample slot (1..31) contents.
func (tx *Tx) Sample(index int) (*modfile.Sample, error) {
	if index < 1 || index > NumSamples {
		return nil, fmt.Errorf("%w: sample %d", ErrOutOfRange, index)
	}
	return exportSample(&tx.e.module.samples[index]), nil
}

func (tx *Tx) SetModified(modified bool) {
	tx.e.modified = modified
}

func (tx *Tx) Modified() bool {
	return tx.e.modified
}

func (e *Engine) silenceSlot(slot uint8) {
	for i := range e.voices {
		if e.voices[i].paula.usesSlot(slot) {
			e.voices[i].paula.stop()
		}
	}
}

func exportSample(s *sampleSlot) *modfile.Sample {
	dst := &modfile.Sample{
		Name:       s.name,
		Finetune:   s.finetune,
		Volume:     s.volume,
		LoopStart:  s.loopStart,
		LoopLength: s.loopLength,
	}
	if len(s.data) != 0 {
		dst.Data = make([]int8, len(s.data))
		copy(dst.Data, s.data)
	}
	return dst
}

// ExportModule converts the current song back to the file representation.
// This is how the edited songs can be saved with modfile.Encode.
func (tx *Tx) ExportModule() *modfile.Module {
	m := tx.e.module
	dst := &modfile.Module{
		Name:     m.name,
		Format:   modfile.FormatMK,
		Orders:   append([]uint8(nil), m.orders[:m.songLength]...),
		Patterns: make([]modfile.Pattern, max(m.numPatterns, 1)),
	}
	for i := range m.samples[1:] {
		dst.Samples[i] = *exportSample(&m.samples[i+1])
	}
	for i := range dst.Patterns {
		for row := 0; row < NumRows; row++ {
			for ch, c := range m.patterns[i].row(row) {
				dst.Patterns[i].Rows[row][ch] = decompileCell(c)
			}
		}
	}
	return dst
}

// The Engine methods below are the single-operation shortcuts
// for the Tx methods with the same name.

func (e *Engine) Play() {
	tx, unlock := e.locked()
	defer unlock()
	tx.Play()
}

func (e *Engine) PlayFrom(order, row int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.PlayFrom(order, row)
}

func (e *Engine) PlayPattern(pattern, row int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.PlayPattern(pattern, row)
}

func (e *Engine) Stop() {
	tx, unlock := e.locked()
	defer unlock()
	tx.Stop()
}

func (e *Engine) Restart() {
	tx, unlock := e.locked()
	defer unlock()
	tx.Restart()
}

func (e *Engine) SetPosition(order, row int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetPosition(order, row)
}

func (e *Engine) SetSpeed(speed int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetSpeed(speed)
}

func (e *Engine) SetTempo(bpm int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetTempo(bpm)
}

func (e *Engine) SetTempoMode(mode TempoMode) {
	tx, unlock := e.locked()
	defer unlock()
	tx.SetTempoMode(mode)
}

func (e *Engine) SetLooping(loop bool) {
	tx, unlock := e.locked()
	defer unlock()
	tx.SetLooping(loop)
}

func (e *Engine) SetFilterModel(model FilterModel) {
	tx, unlock := e.locked()
	defer unlock()
	tx.SetFilterModel(model)
}

func (e *Engine) SetLEDFilter(on bool) {
	tx, unlock := e.locked()
	defer unlock()
	tx.SetLEDFilter(on)
}

func (e *Engine) SetStereoSeparation(percent int) {
	tx, unlock := e.locked()
	defer unlock()
	tx.SetStereoSeparation(percent)
}

func (e *Engine) SetChannelMuted(channel int, muted bool) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetChannelMuted(channel, muted)
}

func (e *Engine) SetCell(pattern, row, channel int, n modfile.Note) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetCell(pattern, row, channel, n)
}

func (e *Engine) Cell(pattern, row, channel int) (modfile.Note, error) {
	tx, unlock := e.locked()
	defer unlock()
	return tx.Cell(pattern, row, channel)
}

func (e *Engine) SetOrder(pos, pattern int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetOrder(pos, pattern)
}

func (e *Engine) SetSongLength(n int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.SetSongLength(n)
}

func (e *Engine) ReplaceSample(index int, s *modfile.Sample) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.ReplaceSample(index, s)
}

func (e *Engine) ClearSample(index int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.ClearSample(index)
}

func (e *Engine) RestoreSample(index int) error {
	tx, unlock := e.locked()
	defer unlock()
	return tx.RestoreSample(index)
}

func (e *Engine) Sample(index int) (*modfile.Sample, error) {
	tx, unlock := e.locked()
	defer unlock()
	return tx.Sample(index)
}

func (e *Engine) ExportModule() *modfile.Module {
	tx, unlock := e.locked()
	defer unlock()
	return tx.ExportModule()
}

func (e *Engine) SetModified(modified bool) {
	tx, unlock := e.locked()
	defer unlock()
	tx.SetModified(modified)
}

func (e *Engine) Modified() bool {
	tx, unlock := e.locked()
	defer unlock()
	return tx.Modified()
}
