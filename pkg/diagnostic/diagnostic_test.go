package diagnostic_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/golens/pkg/diagnostic"
)

type fixedLocator struct{}

// every line is ten bytes wide
func (fixedLocator) LineCol(offset int) (int, int) { return offset/10 + 1, offset%10 + 1 }

func TestGroupAndLocate(t *testing.T) {
	list := []diagnostic.Diagnostic{
		diagnostic.Errorf(25, 3, "expected %s", "';'"),
		{Severity: diagnostic.Warning, Offset: 4, Length: 1, Message: "unused"},
		diagnostic.Errorf(2, 1, "bad"),
	}

	located := diagnostic.Locate("a.go", list, fixedLocator{})
	grouped := diagnostic.Group(located)

	require.Len(t, grouped.Errors, 2)
	assert.Equal(t, "bad", grouped.Errors[0].Message)
	assert.Equal(t, "expected ';'", grouped.Errors[1].Message)
	assert.Equal(t, 3, grouped.Errors[1].Line)
	assert.Equal(t, 6, grouped.Errors[1].Column)
	assert.Equal(t, "a.go", grouped.Errors[1].File)
	require.Len(t, grouped.Warnings, 1)
	assert.Empty(t, grouped.Hints)
}

func TestVSCodeFormatter(t *testing.T) {
	d := diagnostic.Group([]diagnostic.Diagnostic{
		{Severity: diagnostic.Error, File: "a.go", Line: 2, Column: 3, Length: 4, Message: "boom"},
	})

	out, err := diagnostic.NewVSCodeFormatter().Format(d)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, float64(1), decoded[0]["severity"])
	rng := decoded[0]["range"].(map[string]any)
	assert.Equal(t, map[string]any{"line": float64(1), "character": float64(2)}, rng["start"])
	assert.Equal(t, map[string]any{"line": float64(1), "character": float64(6)}, rng["end"])

	_, err = diagnostic.NewVSCodeFormatter().Format(nil)
	assert.Error(t, err)
}
