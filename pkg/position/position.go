// Package position maps between byte offsets and line/column places in a
// source text.
package position

import (
	"fmt"
	"sort"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"gitlab.com/tozd/go/errors"
)

// Place is a 1-based line and column. Columns count bytes.
type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// ID returns a unique identifier for this position based on offset and text
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) End() int {
	return p.Offset + len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// HasRangeOverlapWith reports whether the two positions share any byte. A
// zero-length position overlaps a range it touches.
func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	startOffset := start.Offset
	endOffset := start.End()

	posOffset := p.Offset
	posEndOffset := p.End()

	if p.Length() == 0 {
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if start.Length() == 0 {
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	return startOffset < posEndOffset && endOffset > posOffset
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

type RawPositionArray []RawPosition

func (me RawPositionArray) ToStrings() []string {
	var texts []string
	for _, pos := range me {
		texts = append(texts, pos.String())
	}
	return texts
}

// Mapper converts offsets of one immutable text. Build it once per text
// revision.
type Mapper struct {
	text  []byte
	lines []int // offset of the first byte of each line
}

func NewMapper(text []byte) *Mapper {
	lines := []int{0}
	for i, c := range text {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Mapper{text: text, lines: lines}
}

// LineCount returns the number of lines; a trailing newline starts an
// empty last line.
func (m *Mapper) LineCount() int { return len(m.lines) }

func (m *Mapper) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(m.text) {
		return len(m.text)
	}
	return offset
}

// line returns the 0-based line holding offset.
func (m *Mapper) line(offset int) int {
	return sort.Search(len(m.lines), func(i int) bool { return m.lines[i] > offset }) - 1
}

// LineCol returns the 1-based line and byte column of offset. Offsets
// outside the text are clamped.
func (m *Mapper) LineCol(offset int) (line, col int) {
	offset = m.clamp(offset)
	l := m.line(offset)
	return l + 1, offset - m.lines[l] + 1
}

// Place is LineCol as a Place.
func (m *Mapper) Place(offset int) Place {
	l, c := m.LineCol(offset)
	return Place{Line: l, Character: c}
}

// Range returns the places of a position's first byte and end.
func (m *Mapper) Range(p RawPosition) Range {
	return Range{Start: m.Place(p.Offset), End: m.Place(p.End())}
}

// Offset converts a 1-based line and byte column back to an offset.
func (m *Mapper) Offset(line, col int) (int, error) {
	if line < 1 || line > len(m.lines) {
		return 0, errors.Errorf("line %d out of range [1, %d]", line, len(m.lines))
	}
	start, end := m.lineBounds(line - 1)
	off := start + col - 1
	if col < 1 || off > end {
		return 0, errors.Errorf("column %d out of range on line %d", col, line)
	}
	return off, nil
}

// lineBounds returns the offsets of the first byte and of the newline (or
// end of text) of a 0-based line.
func (m *Mapper) lineBounds(l int) (int, int) {
	start := m.lines[l]
	end := len(m.text)
	if l+1 < len(m.lines) {
		end = m.lines[l+1] - 1
	}
	if end > start && m.text[end-1] == '\r' {
		end--
	}
	return start, end
}

// LineText returns the text of the line holding offset, without its line
// terminator.
func (m *Mapper) LineText(offset int) string {
	start, end := m.lineBounds(m.line(m.clamp(offset)))
	return string(m.text[start:end])
}

// LineStart returns the offset of the first byte of the line holding offset.
func (m *Mapper) LineStart(offset int) int {
	return m.lines[m.line(m.clamp(offset))]
}

// DisplayColumn returns the 1-based column of offset counted in grapheme
// clusters, the unit editors move the cursor by.
func (m *Mapper) DisplayColumn(offset int) int {
	offset = m.clamp(offset)
	start := m.LineStart(offset)
	return graphemes(m.text[start:offset]) + 1
}

func graphemes(b []byte) int {
	n := 0
	for len(b) > 0 {
		adv, _, err := textseg.ScanGraphemeClusters(b, true)
		if err != nil || adv <= 0 {
			return n + len(b)
		}
		b = b[adv:]
		n++
	}
	return n
}
