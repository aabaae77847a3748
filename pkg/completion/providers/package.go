package providers

import (
	"github.com/walteh/golens/pkg/cache"
	"github.com/walteh/golens/pkg/scope"
)

// PackageProvider handles completions of packages the file does not
// import yet. Accepting one adds the import.
type PackageProvider struct {
	entries []cache.Entry
}

func NewPackageProvider(entries []cache.Entry) *PackageProvider {
	return &PackageProvider{entries: entries}
}

// GetCompletions skips packages already imported by path and names the
// file already uses for an import.
func (p *PackageProvider) GetCompletions(imports []*scope.Import, match func(string) bool) []CompletionItem {
	paths := map[string]bool{}
	names := map[string]bool{}
	for _, imp := range imports {
		paths[imp.Path] = true
		names[imp.Name] = true
	}
	var items []CompletionItem
	for _, e := range p.entries {
		path := e.Path()
		if paths[path] || names[e.Name] || !match(e.Name) {
			continue
		}
		items = append(items, CompletionItem{
			Label:     e.Name,
			Kind:      "package",
			Detail:    path,
			AddImport: path,
		})
	}
	return items
}
