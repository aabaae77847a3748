package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/position"
)

func TestMapperLineCol(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{
			name:     "empty text",
			text:     "",
			offset:   0,
			wantLine: 1,
			wantCol:  1,
		},
		{
			name:     "single line, middle position",
			text:     "Hello, World!",
			offset:   7,
			wantLine: 1,
			wantCol:  8,
		},
		{
			name:     "multiple lines, second line",
			text:     "Hello\nWorld\nTest zzz",
			offset:   8,
			wantLine: 2,
			wantCol:  3,
		},
		{
			name:     "newline belongs to its line",
			text:     "ab\ncd",
			offset:   2,
			wantLine: 1,
			wantCol:  3,
		},
		{
			name:     "past the end clamps",
			text:     "ab\ncd",
			offset:   99,
			wantLine: 2,
			wantCol:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := position.NewMapper([]byte(tt.text))
			line, col := m.LineCol(tt.offset)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestMapperOffsetRoundTrip(t *testing.T) {
	text := []byte("package p\n\nfunc f() {\n\treturn\n}\n")
	m := position.NewMapper(text)
	for off := 0; off <= len(text); off++ {
		line, col := m.LineCol(off)
		got, err := m.Offset(line, col)
		require.NoError(t, err)
		assert.Equal(t, off, got)
	}

	_, err := m.Offset(0, 1)
	assert.Error(t, err)
	_, err = m.Offset(1, 50)
	assert.Error(t, err)
}

func TestMapperLineText(t *testing.T) {
	m := position.NewMapper([]byte("first\r\nsecond\nthird"))
	assert.Equal(t, "first", m.LineText(2))
	assert.Equal(t, "second", m.LineText(9))
	assert.Equal(t, "third", m.LineText(16))
	assert.Equal(t, 3, m.LineCount())
}

func TestDisplayColumnCountsGraphemes(t *testing.T) {
	text := []byte("s := \"éx\" + y")
	m := position.NewMapper(text)
	y := len(text) - 1
	_, byteCol := m.LineCol(y)
	assert.Equal(t, y+1, byteCol)
	assert.Equal(t, y, m.DisplayColumn(y))
}

func TestHasRangeOverlapWith(t *testing.T) {
	tests := []struct {
		name string
		a, b position.RawPosition
		want bool
	}{
		{"overlap", position.NewBasicPosition("abc", 0), position.NewBasicPosition("cd", 2), true},
		{"adjacent", position.NewBasicPosition("ab", 0), position.NewBasicPosition("cd", 2), false},
		{"cursor at end", position.NewBasicPosition("", 2), position.NewBasicPosition("ab", 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.HasRangeOverlapWith(tt.b))
		})
	}
}

func TestPositionsSeenMap(t *testing.T) {
	seen := position.NewPositionsSeenMap()
	p := position.NewBasicPosition("x", 4)
	assert.True(t, seen.AddIfNew(p))
	assert.False(t, seen.AddIfNew(p))
	assert.Equal(t, 1, seen.Len())
	assert.Len(t, seen.PositionsWithText("x"), 1)
}
