package ptmod

const (
	// Main crystal oscillator of PAL Amiga systems.
	palCrystalHz = 28375160

	// Paula and the color clock run at 1/8 of the crystal frequency.
	paulaClockHz = palCrystalHz / 8

	ciaClockHz = float64(paulaClockHz) / 5

	// Nominal frame rate of the PAL video modes (~49.92Hz).
	vblankHz = float64(paulaClockHz) / (313 * 227)

	// ciaTempoDivider converts the BPM into a CIA timer period.
	ciaTempoDivider = 1773447

	// Period range reachable by the slides.
	minPeriod = 113
	maxPeriod = 856

	// Paula cannot fetch samples faster than this.
	paulaMinPeriod = 113

	// NumNotes is the number of notes in the period table (C-1..B-3).
	NumNotes = 36
)

// periodTable is indexed by the finetune nibble (0..7, then -8..-1).
var periodTable = [16][NumNotes]uint16{
	{ // 0
		856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480, 453,
		428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240, 226,
		214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120, 113,
	},
	{ // 1
		850, 802, 757, 715, 674, 637, 601, 567, 535, 505, 477, 450,
		425, 401, 379, 357, 337, 318, 300, 284, 268, 253, 239, 225,
		213, 201, 189, 179, 169, 159, 150, 142, 134, 126, 119, 113,
	},
	{ // 2
		844, 796, 752, 709, 670, 632, 597, 563, 532, 502, 474, 447,
		422, 398, 376, 355, 335, 316, 298, 282, 266, 251, 237, 224,
		211, 199, 188, 177, 167, 158, 149, 141, 133, 125, 118, 112,
	},
	{ // 3
		838, 791, 746, 704, 665, 628, 592, 559, 528, 498, 470, 444,
		419, 395, 373, 352, 332, 314, 296, 280, 264, 249, 235, 222,
		209, 198, 187, 176, 166, 157, 148, 140, 132, 125, 118, 111,
	},
	{ // 4
		832, 785, 741, 699, 660, 623, 588, 555, 524, 495, 467, 441,
		416, 392, 370, 350, 330, 312, 294, 278, 262, 247, 233, 220,
		208, 196, 185, 175, 165, 156, 147, 139, 131, 124, 117, 110,
	},
	{ // 5
		826, 779, 736, 694, 655, 619, 584, 551, 520, 491, 463, 437,
		413, 390, 368, 347, 328, 309, 292, 276, 260, 245, 232, 219,
		206, 195, 184, 174, 164, 155, 146, 138, 130, 123, 116, 109,
	},
	{ // 6
		820, 774, 730, 689, 651, 614, 580, 547, 516, 487, 460, 434,
		410, 387, 365, 345, 325, 307, 290, 274, 258, 244, 230, 217,
		205, 193, 183, 172, 163, 154, 145, 137, 129, 122, 115, 109,
	},
	{ // 7
		814, 768, 725, 684, 646, 610, 575, 543, 513, 484, 457, 431,
		407, 384, 363, 342, 323, 305, 288, 272, 256, 242, 228, 216,
		204, 192, 181, 171, 161, 152, 144, 136, 128, 121, 114, 108,
	},
	{ // -8
		907, 856, 808, 762, 720, 678, 640, 604, 570, 538, 508, 480,
		453, 428, 404, 381, 360, 339, 320, 302, 285, 269, 254, 240,
		226, 214, 202, 190, 180, 170, 160, 151, 143, 135, 127, 120,
	},
	{ // -7
		900, 850, 802, 757, 715, 675, 636, 601, 567, 535, 505, 477,
		450, 425, 401, 379, 357, 337, 318, 300, 284, 268, 253, 238,
		225, 212, 200, 189, 179, 169, 159, 150, 142, 134, 126, 119,
	},
	{ // -6
		894, 844, 796, 752, 709, 670, 632, 597, 563, 532, 502, 474,
		447, 422, 398, 376, 355, 335, 316, 298, 282, 266, 251, 237,
		223, 211, 199, 188, 177, 167, 158, 149, 141, 133, 125, 118,
	},
	{ // -5
		887, 838, 791, 746, 704, 665, 628, 592, 559, 528, 498, 470,
		444, 419, 395, 373, 352, 332, 314, 296, 280, 264, 249, 235,
		222, 209, 198, 187, 176, 166, 157, 148, 140, 132, 125, 118,
	},
	{ // -4
		881, 832, 785, 741, 699, 660, 623, 588, 555, 524, 494, 467,
		441, 416, 392, 370, 350, 330, 312, 294, 278, 262, 247, 233,
		220, 208, 196, 185, 175, 165, 156, 147, 139, 131, 123, 117,
	},
	{ // -3
		875, 826, 779, 736, 694, 655, 619, 584, 551, 520, 491, 463,
		437, 413, 390, 368, 347, 328, 309, 292, 276, 260, 245, 232,
		219, 206, 195, 184, 174, 164, 155, 146, 138, 130, 123, 116,
	},
	{ // -2
		868, 820, 774, 730, 689, 651, 614, 580, 547, 516, 487, 460,
		434, 410, 387, 365, 345, 325, 307, 290, 274, 258, 244, 230,
		217, 205, 193, 183, 172, 163, 154, 145, 137, 129, 122, 115,
	},
	{ // -1
		862, 814, 768, 725, 684, 646, 610, 575, 543, 513, 484, 457,
		431, 407, 384, 363, 342, 323, 305, 288, 272, 256, 242, 228,
		216, 203, 192, 181, 171, 161, 152, 144, 136, 128, 121, 114,
	},
}

// vibratoTable is the first half of the ProTracker sine wave.
var vibratoTable = [32]uint8{
	0, 24, 49, 74, 97, 120, 141, 161, 180, 197, 212, 224, 235, 244, 250, 253,
	255, 253, 250, 244, 235, 224, 212, 197, 180, 161, 141, 120, 97, 74, 49, 24,
}

// funkTable maps the EFx speed to the invert loop counter increment.
var funkTable = [16]uint8{
	0, 5, 6, 7, 8, 10, 11, 13, 16, 19, 22, 26, 32, 43, 64, 128,
}

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

func finetuneRow(finetune int8) *[NumNotes]uint16 {
	return &periodTable[uint8(finetune)&0x0F]
}

// noteIndex returns the table index of the first entry that is not
// higher than the period, which is how ProTracker looks periods up.
func noteIndex(row *[NumNotes]uint16, period int) int {
	for i, p := range row {
		if period >= int(p) {
			return i
		}
	}
	return NumNotes - 1
}

func noteFromPeriod(period uint16) uint8 {
	if period == 0 {
		return 0
	}
	return uint8(noteIndex(&periodTable[0], int(period)) + 1)
}

func notePeriod(note uint8, finetune int8) int {
	if note == 0 || note > NumNotes {
		return 0
	}
	return int(finetuneRow(finetune)[note-1])
}

// NotePeriod returns the Amiga period of the note (1..36)
// for the given finetune (-8..7). It returns 0 for an invalid note.
func NotePeriod(note, finetune int) int {
	if note < 1 || note > NumNotes {
		return 0
	}
	return notePeriod(uint8(note), int8(finetune))
}

// PeriodToNote returns the note (1..36) that matches the period best.
// It returns 0 for a zero period.
func PeriodToNote(period int) int {
	if period <= 0 {
		return 0
	}
	if period > 0xFFF {
		period = 0xFFF
	}
	return int(noteFromPeriod(uint16(period)))
}

// NoteName formats a note like "C#2"; "---" is returned for 0.
func NoteName(note int) string {
	if note < 1 || note > NumNotes {
		return "---"
	}
	note--
	return noteNames[note%12] + string(rune('1'+note/12))
}

// periodDelta returns a 32.32 fixed-point sample step
// for a Paula channel playing at the given period.
func periodDelta(period int, sampleRate uint) uint64 {
	if period <= 0 {
		return 0
	}
	if period < paulaMinPeriod {
		period = paulaMinPeriod
	}
	return (uint64(paulaClockHz) << 32) / (uint64(period) * uint64(sampleRate))
}

// PeriodFrequency returns the sample playback rate (in Hz) for the period.
func PeriodFrequency(period int) float64 {
	if period <= 0 {
		return 0
	}
	return float64(paulaClockHz) / float64(period)
}
