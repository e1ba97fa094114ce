package modfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Encode writes the module in the 31-sample "M.K." format.
//
// Odd sample lengths are padded with a zero byte,
// the file format stores all lengths in 16-bit words.
func Encode(w io.Writer, m *Module) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validate module: %w", err)
	}
	numPatterns := m.NumUsedPatterns()
	if numPatterns > len(m.Patterns) {
		return errors.New("order list refers to missing patterns")
	}

	bw := bufio.NewWriter(w)
	e := encoder{w: bw}

	e.writeString(m.Name, titleLength)
	for i := range m.Samples {
		e.writeSampleHeader(&m.Samples[i])
	}

	e.writeByte(uint8(len(m.Orders)))
	e.writeByte(127)
	var orders [MaxOrders]uint8
	copy(orders[:], m.Orders)
	e.write(orders[:])
	e.write([]byte("M.K."))

	var cell [4]byte
	for i := 0; i < numPatterns; i++ {
		pat := &m.Patterns[i]
		for row := range pat.Rows {
			for _, n := range pat.Rows[row] {
				cell[0] = (n.Sample & 0xF0) | uint8(n.Period>>8)&0x0F
				cell[1] = uint8(n.Period)
				cell[2] = (n.Sample << 4) | (n.Effect & 0x0F)
				cell[3] = n.Param
				e.write(cell[:])
			}
		}
	}

	for i := range m.Samples {
		s := &m.Samples[i]
		for _, v := range s.Data {
			e.writeByte(uint8(v))
		}
		if len(s.Data)%2 != 0 {
			e.writeByte(0)
		}
	}

	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) writeByte(b uint8) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *encoder) writeWord(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	e.write(buf[:])
}

func (e *encoder) writeString(s string, l int) {
	buf := make([]byte, l)
	copy(buf, s)
	e.write(buf)
}

func (e *encoder) writeSampleHeader(s *Sample) {
	e.writeString(s.Name, 22)
	e.writeWord(uint16((len(s.Data) + 1) / 2))
	e.writeByte(encodeFinetune(s.Finetune))
	e.writeByte(s.Volume)
	if s.LoopLength == 0 {
		e.writeWord(0)
		e.writeWord(1)
		return
	}
	e.writeWord(uint16(s.LoopStart / 2))
	e.writeWord(uint16(s.LoopLength / 2))
}
