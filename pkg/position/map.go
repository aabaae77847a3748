package position

// PositionsSeenMap is a set of positions, used to drop duplicate results.
type PositionsSeenMap struct {
	positions map[RawPosition]RawPosition
}

func NewPositionsSeenMap() *PositionsSeenMap {
	return &PositionsSeenMap{
		positions: make(map[RawPosition]RawPosition),
	}
}

func (me PositionsSeenMap) Add(pos RawPosition) {
	me.positions[pos] = pos
}

func (me PositionsSeenMap) Has(pos RawPosition) bool {
	_, ok := me.positions[pos]
	return ok
}

// AddIfNew adds pos and reports whether it was not present before.
func (me PositionsSeenMap) AddIfNew(pos RawPosition) bool {
	if me.Has(pos) {
		return false
	}
	me.Add(pos)
	return true
}

func (me PositionsSeenMap) Len() int { return len(me.positions) }

func (me PositionsSeenMap) PositionsWithText(text string) RawPositionArray {
	var positions []RawPosition
	for _, pos := range me.positions {
		if pos.Text == text {
			positions = append(positions, pos)
		}
	}
	return positions
}
