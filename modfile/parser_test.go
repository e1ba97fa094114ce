package modfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestModule() *Module {
	m := NewModule()
	m.Name = "test song"
	m.Orders = []uint8{0, 1, 0}
	m.Patterns = make([]Pattern, 2)
	m.Patterns[0].Rows[0][0] = Note{Period: 428, Sample: 1, Effect: 0xC, Param: 0x20}
	m.Patterns[0].Rows[10][3] = Note{Effect: 0xD, Param: 0x20}
	m.Patterns[1].Rows[63][1] = Note{Period: 113, Sample: 17, Effect: 0xE, Param: 0xD3}

	m.Samples[0] = Sample{
		Name:       "square",
		Finetune:   -3,
		Volume:     48,
		LoopStart:  4,
		LoopLength: 8,
		Data:       []int8{0, 0, 0, 0, 127, 127, 127, 127, -128, -128, -128, -128},
	}
	m.Samples[16] = Sample{
		Name:   "one-shot",
		Volume: 64,
		Data:   []int8{1, 2, 3, 4, 5, 6},
	}
	return m
}

func encodeTestModule(t *testing.T, m *Module) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeParse(t *testing.T) {
	src := newTestModule()
	data := encodeTestModule(t, src)

	p := NewParser(ParserConfig{NeedStrings: true})
	m, err := p.ParseFromBytes(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if m.Name != src.Name {
		t.Errorf("name: have %q, want %q", m.Name, src.Name)
	}
	if m.Format != FormatMK {
		t.Errorf("format: have %v, want %v", m.Format, FormatMK)
	}
	if !bytes.Equal(m.Orders, src.Orders) {
		t.Errorf("orders: have %v, want %v", m.Orders, src.Orders)
	}
	if len(m.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(m.Patterns))
	}
	for i := range src.Patterns {
		if m.Patterns[i] != src.Patterns[i] {
			t.Errorf("pattern %d differs after the round trip", i)
		}
	}

	s := m.Samples[0]
	if s.Name != "square" || s.Finetune != -3 || s.Volume != 48 || s.LoopStart != 4 || s.LoopLength != 8 {
		t.Errorf("sample 1 header mismatch: %+v", s)
	}
	if len(s.Data) != 12 || s.Data[4] != 127 || s.Data[8] != -128 {
		t.Errorf("sample 1 data mismatch: %v", s.Data)
	}
	oneShot := m.Samples[16]
	if oneShot.IsLooped() {
		t.Errorf("sample 17 should not be looped")
	}
	if oneShot.Length() != 6 {
		t.Errorf("sample 17 length: have %d, want 6", oneShot.Length())
	}
}

func TestParseWithoutStrings(t *testing.T) {
	data := encodeTestModule(t, newTestModule())
	p := NewParser(ParserConfig{})
	m, err := p.ParseFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "" || m.Samples[0].Name != "" {
		t.Errorf("expected empty strings, got %q and %q", m.Name, m.Samples[0].Name)
	}
}

func TestParserReuse(t *testing.T) {
	data := encodeTestModule(t, newTestModule())
	p := NewParser(ParserConfig{})
	for i := 0; i < 3; i++ {
		m, err := p.ParseFromBytes(data)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(m.Patterns) != 2 || len(m.Orders) != 3 {
			t.Fatalf("run %d: unexpected sizes: %d patterns, %d orders", i, len(m.Patterns), len(m.Orders))
		}
		if m.Samples[0].Data[4] != 127 {
			t.Fatalf("run %d: sample data was not decoded", i)
		}
	}
}

func TestParseTruncatedSampleData(t *testing.T) {
	data := encodeTestModule(t, newTestModule())
	data = data[:len(data)-3]
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	s := m.Samples[16]
	if len(s.Data) != 6 {
		t.Fatalf("expected the declared length to be kept, got %d", len(s.Data))
	}
	if s.Data[0] != 1 || s.Data[5] != 0 {
		t.Errorf("unexpected data: %v", s.Data)
	}
}

func TestParseSoundTracker(t *testing.T) {
	data := make([]byte, stkPatternsOffset+patternSize)
	copy(data, "stk song")
	data[stkOrdersOffset] = 1
	// Sample 1: 4 bytes long, volume 64.
	hdr := data[titleLength:]
	hdr[22], hdr[23] = 0, 2
	hdr[25] = 64
	data = append(data, 10, 20, 30, 40)

	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if m.Format != FormatSTK {
		t.Errorf("format: have %v, want %v", m.Format, FormatSTK)
	}
	if m.Name != "stk song" {
		t.Errorf("name: have %q", m.Name)
	}
	if got := m.Samples[0].Data; len(got) != 4 || got[3] != 40 {
		t.Errorf("sample data: %v", got)
	}
	if m.Samples[15].Length() != 0 {
		t.Errorf("samples 16..31 should be empty")
	}
}

func TestParseErrors(t *testing.T) {
	valid := encodeTestModule(t, newTestModule())

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   string
	}{
		{
			name:   "tiny",
			mutate: func(b []byte) []byte { return b[:100] },
			want:   "file is too small",
		},
		{
			name: "channels",
			mutate: func(b []byte) []byte {
				copy(b[formatTagOffset:], "8CHN")
				return b
			},
			want: "unsupported channel count",
		},
		{
			name: "patterns",
			mutate: func(b []byte) []byte {
				b[formatTagOffset-MaxOrders+100] = 120
				return b
			},
			want: "too many patterns",
		},
		{
			name:   "truncated patterns",
			mutate: func(b []byte) []byte { return b[:formatTagOffset+4+100] },
			want:   "unexpected EOF while reading pattern data",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := test.mutate(append([]byte(nil), valid...))
			_, err := Parse(bytes.NewReader(data))
			if err == nil {
				t.Fatal("expected an error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected a *ParseError, got %T", err)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not contain %q", err.Error(), test.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	m := newTestModule()
	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Orders = append(m.Orders, 5)
	if err := m.Validate(); err == nil {
		t.Error("expected a missing pattern error")
	}

	m = newTestModule()
	m.Samples[0].LoopLength = 100
	if err := m.Validate(); err == nil {
		t.Error("expected a loop bounds error")
	}

	m = newTestModule()
	m.Samples[3].Data = make([]int8, MaxSampleLength+1)
	if err := m.Validate(); err == nil {
		t.Error("expected a sample length error")
	}
}

func TestFinetuneNibbles(t *testing.T) {
	for v := int8(-8); v <= 7; v++ {
		if got := decodeFinetune(encodeFinetune(v)); got != v {
			t.Errorf("finetune %d decoded as %d", v, got)
		}
	}
}
