package providers

import "github.com/walteh/golens/pkg/token"

// KeywordProvider handles keyword completions
type KeywordProvider struct{}

func NewKeywordProvider() *KeywordProvider {
	return &KeywordProvider{}
}

func (p *KeywordProvider) GetCompletions(match func(string) bool) []CompletionItem {
	var items []CompletionItem
	for _, kw := range token.Keywords() {
		if match(kw) {
			items = append(items, CompletionItem{Label: kw, Kind: "keyword"})
		}
	}
	return items
}
