// Package providers produces completion items from one source each:
// members of a type, names in scope, keywords and indexed packages.
package providers

// CompletionItem represents a single completion suggestion
type CompletionItem struct {
	Label  string `json:"label" yaml:"label"`
	Kind   string `json:"kind" yaml:"kind"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	// AddImport is the import path to add to the file when the item is
	// accepted.
	AddImport string `json:"addImport,omitempty" yaml:"addImport,omitempty"`
}
