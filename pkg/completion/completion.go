// Package completion lists what can be typed at a position.
package completion

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/walteh/golens/pkg/cache"
	"github.com/walteh/golens/pkg/completion/providers"
	"github.com/walteh/golens/pkg/position"
	"github.com/walteh/golens/pkg/source"
	"github.com/walteh/golens/pkg/types"
)

// CompletionItem represents a single completion suggestion
type CompletionItem = providers.CompletionItem

// List is the answer to one completion request. Accepting an item
// replaces Replace with the item's label.
type List struct {
	Replace position.RawPosition
	Items   []CompletionItem
}

// GetCompletions returns the completions at offset of p. After a
// selector period they are the members of the operand; elsewhere they
// are the names in scope, the keywords and the indexed packages not yet
// imported.
func GetCompletions(ctx context.Context, w types.World, p *source.Parsed, offset int, packages []cache.Entry) *List {
	cc := NewCompletionContext(p, offset)
	r := types.NewResolver(w)
	list := &List{Replace: cc.Prefix}

	if cc.IsDotCompletion() {
		t := r.TypeOf(cc.Operand, cc.Scope, cc.Tok)
		if !t.Valid() {
			zerolog.Ctx(ctx).Debug().Int("offset", offset).Msg("selector operand does not resolve")
			return list
		}
		list.Items = providers.NewMemberProvider(r, p.Dir()).GetCompletions(t, cc.Matches)
		sortItems(list.Items)
		return list
	}

	list.Items = append(list.Items, providers.NewScopeProvider(r).GetCompletions(cc.Scope, cc.Tok, cc.Matches)...)
	list.Items = append(list.Items, providers.NewKeywordProvider().GetCompletions(cc.Matches)...)
	list.Items = append(list.Items, providers.NewPackageProvider(packages).GetCompletions(p.Imports(), cc.Matches)...)
	sortItems(list.Items)
	zerolog.Ctx(ctx).Debug().Int("offset", offset).Str("prefix", cc.Prefix.Text).Int("items", len(list.Items)).Msg("completions")
	return list
}

func sortItems(items []CompletionItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
}
