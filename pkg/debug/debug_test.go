package debug_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/walteh/golens/pkg/debug"
)

func TestGetPackageAndFuncFromFuncName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantPkg  string
		wantFunc string
	}{
		{"plain", "github.com/walteh/golens/pkg/engine.New", "github.com/walteh/golens/pkg/engine", "New"},
		{"method", "github.com/walteh/golens/pkg/engine.(*Engine).Open", "github.com/walteh/golens/pkg/engine", "(*Engine).Open"},
		{"closure", "main.run.func1", "main", "run.func1"},
		{"no_dot", "runtime", "runtime", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := debug.GetPackageAndFuncFromFuncName(tt.in)
			assert.Equal(t, tt.wantPkg, pkg)
			assert.Equal(t, tt.wantFunc, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	got := debug.FormatCaller("github.com/walteh/golens/pkg/cache", "/src/pkg/cache/cache.go", 42, false)
	assert.Equal(t, "github.com/walteh/golens/pkg/cache:cache.go:42", got)
	assert.Equal(t, "x.go", debug.FileNameOfPath("x.go"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := debug.NewLogger(&buf, zerolog.InfoLevel, false)

	log.Debug().Msg("hidden")
	log.Info().Str("file", "/p/a.go").Msg("parsed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "parsed")
	assert.Contains(t, out, "file=/p/a.go")
	assert.Contains(t, out, "INF")
}
