package source

import (
	"sync"
)

// Unit is a file the engine tracks. The text and revision change with
// every edit; the path is the unit's identity.
type Unit struct {
	Path string

	mu     sync.RWMutex
	text   []byte
	rev    int
	parsed *Parsed
}

// NewUnit creates a unit at revision 1.
func NewUnit(path string, text []byte) *Unit {
	return &Unit{Path: path, text: text, rev: 1}
}

// Text returns the current text and its revision.
func (u *Unit) Text() ([]byte, int) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.text, u.rev
}

func (u *Unit) Revision() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rev
}

// SetText replaces the text and returns the new revision.
func (u *Unit) SetText(text []byte) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.text = text
	u.rev++
	return u.rev
}

// Parsed returns the latest committed parse, or nil before the first one.
func (u *Unit) Parsed() *Parsed {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.parsed
}

// Commit installs p unless a parse of a newer revision is already in
// place. It reports whether p was installed.
func (u *Unit) Commit(p *Parsed) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if p == nil || p.Revision > u.rev {
		return false
	}
	if u.parsed != nil && u.parsed.Revision > p.Revision {
		return false
	}
	u.parsed = p
	return true
}

// Current reports whether the committed parse matches the current text.
func (u *Unit) Current() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.parsed != nil && u.parsed.Revision == u.rev
}

// Parse parses the current text and commits the result.
func (u *Unit) Parse() *Parsed {
	text, rev := u.Text()
	p := Parse(u.Path, text, rev)
	u.Commit(p)
	return p
}
