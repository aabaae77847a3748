package semtok

import "github.com/walteh/golens/pkg/position"

// Chunk is one batch of highlights of a file revision. The last chunk of
// a completed run has Done set and may be empty.
type Chunk struct {
	Path     string
	Revision int
	// Run identifies the Runner run that produced the chunk.
	Run    string
	Tokens []Token
	Done   bool
}

// Find returns the token covering offset.
func Find(tokens []Token, offset int) (Token, bool) {
	at := position.NewBasicPosition("", offset)
	for _, t := range tokens {
		if t.Range.HasRangeOverlapWith(at) {
			return t, true
		}
	}
	return Token{}, false
}
