package providers

import (
	"path/filepath"

	"github.com/walteh/golens/pkg/hover"
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/types"
)

// MemberProvider handles completions after a selector period
type MemberProvider struct {
	resolver *types.Resolver
	dir      string
}

// NewMemberProvider completes members as seen from a file in dir.
// Unexported members of other packages are left out.
func NewMemberProvider(r *types.Resolver, dir string) *MemberProvider {
	return &MemberProvider{resolver: r, dir: dir}
}

// GetCompletions returns the fields and methods of t, or the exported
// members of a package.
func (p *MemberProvider) GetCompletions(t types.Typed, match func(string) bool) []CompletionItem {
	var items []CompletionItem
	for _, sym := range p.resolver.Members(t) {
		if !match(sym.Name) || !p.accessible(sym) {
			continue
		}
		items = append(items, symbolItem(p.resolver, sym))
	}
	return items
}

func (p *MemberProvider) accessible(sym *scope.Symbol) bool {
	return sym.Exported() || sym.File == nil || filepath.Dir(sym.Path()) == p.dir
}

func symbolItem(r *types.Resolver, sym *scope.Symbol) CompletionItem {
	return CompletionItem{
		Label:  sym.Name,
		Kind:   sym.Kind.String(),
		Detail: hover.Describe(r, sym),
	}
}
