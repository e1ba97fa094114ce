package ptmod

// nextTick advances the playback cursor by one tick.
// It returns false when the song is over.
func (e *Engine) nextTick() bool {
	e.tick++
	if e.tick < e.speed {
		e.applyTickEffects()
		return true
	}

	e.tick = 0
	if e.patternDelay > 0 {
		// The row is repeated: the notes are not triggered again,
		// but the effects keep running.
		e.patternDelay--
		e.applyTickEffects()
		return true
	}

	if !e.nextRow() {
		return false
	}
	e.playRow()

	if e.stopRequested {
		e.stopRequested = false
		return false
	}
	return true
}

func (e *Engine) nextRow() bool {
	if e.rowPending {
		e.rowPending = false
		e.enterRow(e.order, e.row)
		return true
	}

	row := e.row + 1
	if e.loopJump {
		e.loopJump = false
		row = e.loopJumpRow
	}
	if row < NumRows && !e.posJump {
		e.enterRow(e.order, row)
		return true
	}
	return e.nextOrder()
}

func (e *Engine) nextOrder() bool {
	row := e.breakRow
	jumpOrder := e.jumpOrder
	e.clearJumps()

	if e.playMode == PlayPattern {
		e.enterRow(e.order, row)
		return true
	}

	order := e.order + 1
	switch {
	case jumpOrder >= 0:
		order = jumpOrder
		if order >= e.module.songLength {
			if !e.settings.loop {
				return false
			}
			order = e.module.songLength - 1
		}
	case order >= e.module.songLength:
		if !e.settings.loop {
			return false
		}
		order = 0
	}

	if e.visited[order]&(1<<row) != 0 {
		if !e.settings.loop {
			return false
		}
		// Looped songs are allowed to repeat themselves.
		e.visited = [MaxOrders]uint64{}
	}

	e.enterRow(order, row)
	return true
}

func (e *Engine) enterRow(order, row int) {
	e.order = order
	e.row = row
	if e.playMode == PlaySong {
		e.pattern = int(e.module.orders[order])
		e.visited[order] |= 1 << row
	}

	e.emit(Event{
		Kind:    EventRow,
		Channel: -1,
		value:   makeEventValue(order, e.pattern, row),
	})
}

func (e *Engine) playRow() {
	cells := e.module.patterns[e.pattern].row(e.row)
	for i := range e.voices {
		e.playCell(&e.voices[i], cells[i])
	}
}

func (e *Engine) applyTickEffects() {
	for i := range e.voices {
		v := &e.voices[i]
		v.outPeriod = v.period
		v.outVolume = v.volume
		if v.funkSpeed != 0 {
			e.updateFunk(v)
		}
		if !v.effect.IsEmpty() {
			e.applyTickEffect(v)
		}
		e.updatePaula(v)
	}
}

func (e *Engine) updatePaula(v *voice) {
	v.paula.setPeriod(v.outPeriod, e.config.SampleRate)
	v.paula.volume = clamp(v.outVolume, 0, 64)
}
