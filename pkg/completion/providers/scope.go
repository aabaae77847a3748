package providers

import (
	"github.com/walteh/golens/pkg/scope"
	"github.com/walteh/golens/pkg/types"
)

// ScopeProvider handles completions of names visible at a position
type ScopeProvider struct {
	resolver *types.Resolver
}

func NewScopeProvider(r *types.Resolver) *ScopeProvider {
	return &ScopeProvider{resolver: r}
}

// GetCompletions returns the symbols visible from sc at token pos,
// innermost first.
func (p *ScopeProvider) GetCompletions(sc *scope.Scope, pos int, match func(string) bool) []CompletionItem {
	var items []CompletionItem
	for _, sym := range sc.Visible(pos, p.resolver.Package(sc)) {
		if sym.Name == "_" || !match(sym.Name) {
			continue
		}
		items = append(items, symbolItem(p.resolver, sym))
	}
	return items
}
