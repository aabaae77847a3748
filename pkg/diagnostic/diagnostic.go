// Package diagnostic holds the messages the engine reports for a source
// unit and the formatters that hand them to editors.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"sort"

	"gitlab.com/tozd/go/errors"
)

// Severity represents the severity level of a diagnostic
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
	Hint    Severity = "hint"
)

// Diagnostic represents a single diagnostic message. Offset and Length
// are byte based; Line and Column are 1-based and filled in by Locate.
type Diagnostic struct {
	Severity Severity
	File     string
	Offset   int
	Length   int
	Line     int
	Column   int
	Message  string
}

// Errorf builds an error diagnostic at the given byte range.
func Errorf(offset, length int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Offset:   offset,
		Length:   length,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Locator maps byte offsets to 1-based line and column numbers.
type Locator interface {
	LineCol(offset int) (line, col int)
}

// Locate fills in File, Line and Column for every diagnostic.
func Locate(file string, diags []Diagnostic, loc Locator) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		d.File = file
		d.Line, d.Column = loc.LineCol(d.Offset)
		out[i] = d
	}
	return out
}

// Diagnostics groups diagnostics by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Hints    []Diagnostic
}

// Group splits a flat list by severity, each group sorted by offset.
func Group(list []Diagnostic) *Diagnostics {
	out := &Diagnostics{}
	for _, d := range list {
		switch d.Severity {
		case Error:
			out.Errors = append(out.Errors, d)
		case Warning:
			out.Warnings = append(out.Warnings, d)
		default:
			out.Hints = append(out.Hints, d)
		}
	}
	for _, g := range [][]Diagnostic{out.Errors, out.Warnings, out.Hints} {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Offset < g[j].Offset })
	}
	return out
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into the editor's JSON shape.
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePlace struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePlace `json:"start"`
	End   vscodePlace `json:"end"`
}

type vscodeDiagnostic struct {
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Source   string      `json:"source,omitempty"`
	Range    vscodeRange `json:"range"`
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	result := []vscodeDiagnostic{}
	add := func(list []Diagnostic, severity int) {
		for _, d := range list {
			// the editor is 0-based; diagnostics stay on one line
			start := vscodePlace{Line: d.Line - 1, Character: d.Column - 1}
			end := vscodePlace{Line: d.Line - 1, Character: d.Column - 1 + d.Length}
			result = append(result, vscodeDiagnostic{
				Severity: severity,
				Message:  d.Message,
				Source:   d.File,
				Range:    vscodeRange{Start: start, End: end},
			})
		}
	}
	add(diagnostics.Errors, 1)
	add(diagnostics.Warnings, 2)
	add(diagnostics.Hints, 4)

	return json.Marshal(result)
}
