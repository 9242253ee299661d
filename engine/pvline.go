package engine

import (
	"strings"

	gm "gannet-engine/gannetmg"
)

// PVLine accumulates the principal variation while the search unwinds.
type PVLine struct {
	Moves []gm.Move
}

// Update sets the line to m followed by the child node's variation.
func (pv *PVLine) Update(m gm.Move, child PVLine) {
	pv.Moves = append(pv.Moves[:0], m)
	pv.Moves = append(pv.Moves, child.Moves...)
}

// Clear drops the stored line, keeping capacity.
func (pv *PVLine) Clear() { pv.Moves = pv.Moves[:0] }

// Clone returns an independent copy of the line.
func (pv PVLine) Clone() PVLine {
	return PVLine{Moves: append([]gm.Move(nil), pv.Moves...)}
}

// BestMove returns the first move of the line, or 0 when empty.
func (pv PVLine) BestMove() gm.Move {
	if len(pv.Moves) == 0 {
		return 0
	}
	return pv.Moves[0]
}

// String renders the line in UCI notation.
func (pv PVLine) String() string {
	parts := make([]string, len(pv.Moves))
	for i, m := range pv.Moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
