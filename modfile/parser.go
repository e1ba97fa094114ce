package modfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	titleLength       = 20
	sampleHeaderSize  = 30
	patternSize       = NumRows * NumChannels * 4
	formatTagOffset   = 1080
	stkOrdersOffset   = titleLength + 15*sampleHeaderSize
	stkPatternsOffset = stkOrdersOffset + 2 + MaxOrders
)

type parser struct {
	// Data holds the module file input data bytes.
	data []byte

	// Offset is our current position inside the data.
	offset int

	// Module holds the results of parsing.
	module Module

	samplePool slabPool[int8]

	numSamples  int
	numPatterns int

	// sampleLengths holds the lengths stored in the file;
	// they can be longer than the accepted sample length.
	sampleLengths [NumSamples]int

	config ParserConfig

	// These fields below are needed for better error reporting.
	stage         string
	stageIndex    int
	subStage      string
	subStageIndex int
}

func newParser(config ParserConfig) *parser {
	p := &parser{
		config: config,
	}
	initSlabPool(&p.samplePool, 128*1024, 8)
	return p
}

func (p *parser) Parse(data []byte) error {
	p.data = data
	p.reset()
	return p.parse()
}

func (p *parser) reset() {
	p.offset = 0
	p.samplePool.Reset()

	patterns := p.module.Patterns[:0]
	orders := p.module.Orders[:0]
	p.module = Module{
		Patterns: patterns,
		Orders:   orders,
	}
}

func (p *parser) startStage(name string) {
	p.stage = name
	p.stageIndex = -1
	p.subStage = ""
	p.subStageIndex = -1
}

func (p *parser) startSubStage(name string) {
	p.subStage = name
	p.subStageIndex = -1
}

func (p *parser) formatStage() string {
	var b strings.Builder
	b.Grow(len(p.stage) + len(p.subStage) + 16)
	b.WriteString(p.stage)
	if p.stageIndex >= 0 {
		fmt.Fprintf(&b, "[%d]", p.stageIndex)
	}
	if p.subStage != "" {
		b.WriteByte('.')
		b.WriteString(p.subStage)
		if p.subStageIndex >= 0 {
			fmt.Fprintf(&b, "[%d]", p.subStageIndex)
		}
	}
	return b.String()
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Stage:   p.formatStage(),
		Offset:  p.offset,
	}
}

func (p *parser) dataBytesRemaining() int {
	return len(p.data) - p.offset
}

func (p *parser) read(l int, what string) []byte {
	if p.dataBytesRemaining() < l {
		panic(p.errorf("unexpected EOF while reading %s", what))
	}
	b := p.data[p.offset : p.offset+l]
	p.offset += l
	return b
}

func (p *parser) skip(l int, what string) {
	p.read(l, what)
}

func (p *parser) readOptionalString(l int, what string) string {
	if !p.config.NeedStrings {
		p.skip(l, what)
		return ""
	}
	return convertCstring(p.read(l, what))
}

func (p *parser) readWord(what string) uint16 {
	return binary.BigEndian.Uint16(p.read(2, what))
}

func (p *parser) readByte(what string) uint8 {
	return p.read(1, what)[0]
}

func (p *parser) parse() (err error) {
	defer func() {
		rv := recover()
		if rv != nil {
			if panicErr, ok := rv.(*ParseError); ok {
				err = panicErr
			} else {
				panic(rv)
			}
		}
	}()

	p.parseModule()

	return err // See the deferred call above
}

func (p *parser) parseModule() {
	p.startStage("header")
	p.detectFormat()

	p.module.Name = p.readOptionalString(titleLength, "module name")

	p.startStage("sample")
	for i := 0; i < p.numSamples; i++ {
		p.stageIndex = i
		p.startSubStage("header")
		p.sampleLengths[i] = p.parseSampleHeader(&p.module.Samples[i])
	}

	p.startStage("orders")
	p.parseOrders()

	if p.module.Format != FormatSTK {
		p.skip(4, "format tag")
	}

	p.startStage("pattern")
	for i := 0; i < p.numPatterns; i++ {
		p.stageIndex = i
		p.module.Patterns = append(p.module.Patterns, Pattern{})
		p.parsePattern(&p.module.Patterns[i])
	}

	p.startStage("sample")
	for i := 0; i < p.numSamples; i++ {
		p.stageIndex = i
		p.startSubStage("data")
		p.parseSampleData(&p.module.Samples[i], p.sampleLengths[i])
	}
}

func (p *parser) detectFormat() {
	p.numSamples = NumSamples
	if len(p.data) >= formatTagOffset+4 {
		tag := p.data[formatTagOffset : formatTagOffset+4]
		switch string(tag) {
		case "M.K.", "M!K!":
			p.module.Format = FormatMK
			return
		case "FLT4":
			p.module.Format = FormatFLT
			return
		case "4CHN":
			p.module.Format = FormatFT2
			return
		case "N.T.":
			p.module.Format = FormatNT
			return
		case "M&K!", "FEST":
			p.module.Format = FormatHMNT
			return
		case "FLT8", "2CHN", "6CHN", "8CHN", "CD81", "OKTA":
			p.offset = formatTagOffset
			panic(p.errorf("unsupported channel count (%q)", tag))
		}
		if isPrintableTag(tag) && (strings.HasSuffix(string(tag), "CH") || strings.HasSuffix(string(tag), "CN")) {
			p.offset = formatTagOffset
			panic(p.errorf("unsupported channel count (%q)", tag))
		}
	}

	// No tag: a 15-sample Ultimate SoundTracker module.
	if len(p.data) < stkPatternsOffset {
		panic(p.errorf("file is too small to be a module: %d bytes", len(p.data)))
	}
	songLength := p.data[stkOrdersOffset]
	if songLength == 0 || songLength > MaxOrders {
		p.offset = stkOrdersOffset
		panic(p.errorf("unknown module format"))
	}
	p.module.Format = FormatSTK
	p.numSamples = 15
}

func (p *parser) parseSampleHeader(s *Sample) (fileLength int) {
	s.Name = p.readOptionalString(22, "sample name")
	fileLength = int(p.readWord("sample length")) * 2
	length := fileLength
	s.Finetune = decodeFinetune(p.readByte("sample finetune"))
	volume := p.readByte("sample volume")
	if volume > 64 {
		volume = 64
	}
	s.Volume = volume

	loopStart := int(p.readWord("sample loop start"))
	if p.module.Format != FormatSTK {
		// Ultimate SoundTracker stores the loop start in bytes.
		loopStart *= 2
	}
	loopLength := int(p.readWord("sample loop length")) * 2

	if length > MaxSampleLength {
		length = MaxSampleLength
	}
	// A 2-byte loop is how the trackers encode "no loop".
	if loopLength <= 2 || loopStart >= length {
		loopStart = 0
		loopLength = 0
	}
	if loopStart+loopLength > length {
		loopLength = length - loopStart
	}

	s.LoopStart = loopStart
	s.LoopLength = loopLength

	return fileLength
}

func (p *parser) parseOrders() {
	songLength := int(p.readByte("song length"))
	if songLength == 0 || songLength > MaxOrders {
		panic(p.errorf("invalid song length value: %d", songLength))
	}
	restart := int(p.readByte("restart position"))
	if p.module.Format == FormatNT && restart < songLength {
		p.module.RestartPosition = restart
	}

	table := p.read(MaxOrders, "pattern order table")

	// Like ProTracker, count all 128 entries, not only the used ones.
	numPatterns := 0
	for _, pat := range table {
		if int(pat)+1 > numPatterns {
			numPatterns = int(pat) + 1
		}
	}
	if numPatterns > MaxPatterns {
		panic(p.errorf("too many patterns: %d (max %d)", numPatterns, MaxPatterns))
	}
	p.numPatterns = numPatterns

	p.module.Orders = append(p.module.Orders, table[:songLength]...)
}

func (p *parser) parsePattern(pat *Pattern) {
	data := p.read(patternSize, "pattern data")
	for row := 0; row < NumRows; row++ {
		for ch := 0; ch < NumChannels; ch++ {
			b := data[(row*NumChannels+ch)*4:]
			pat.Rows[row][ch] = Note{
				Period: uint16(b[0]&0x0F)<<8 | uint16(b[1]),
				Sample: (b[0] & 0xF0) | (b[2] >> 4),
				Effect: b[2] & 0x0F,
				Param:  b[3],
			}
		}
	}
}

func (p *parser) parseSampleData(s *Sample, fileLength int) {
	length := fileLength
	if length > MaxSampleLength {
		length = MaxSampleLength
	}
	if length == 0 {
		s.Data = nil
		return
	}

	// Some files are truncated; read what is available
	// and keep the rest silent.
	n := length
	if n > p.dataBytesRemaining() {
		n = p.dataBytesRemaining()
	}
	data := p.samplePool.MakeSlice(length)
	for i, b := range p.data[p.offset : p.offset+n] {
		data[i] = int8(b)
	}
	s.Data = data

	skip := fileLength
	if skip > p.dataBytesRemaining() {
		skip = p.dataBytesRemaining()
	}
	p.offset += skip
}
