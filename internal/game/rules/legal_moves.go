package rules

import "github.com/mitchelldurbincs/GridHeist/internal/game/core"

// Move is one legal step for one entity
type Move struct {
	Entity core.Entity
	To     core.Position
}

// LegalMoveCalculator computes legal moves for a side
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// LegalMoves lists every legal move of the given side. Entities are visited in
// placement order and destinations in row-major neighbor order.
func (lmc *LegalMoveCalculator) LegalMoves(g *core.Grid, side core.Side) []Move {
	var moves []Move
	for _, e := range Movers(g, side) {
		for _, to := range core.ReachablePositions(e, g) {
			moves = append(moves, Move{Entity: e, To: to})
		}
	}
	return moves
}

// HasLegalMove reports whether any entity of the side can move. It stops at the first hit.
func (lmc *LegalMoveCalculator) HasLegalMove(g *core.Grid, side core.Side) bool {
	for _, e := range Movers(g, side) {
		if len(core.ReachablePositions(e, g)) > 0 {
			return true
		}
	}
	return false
}

// Movers returns the live entities of a side in placement order
func Movers(g *core.Grid, side core.Side) []core.Entity {
	var out []core.Entity
	switch side {
	case core.SideRobots:
		for _, r := range g.Robots() {
			out = append(out, r)
		}
	case core.SideIntruders:
		for _, i := range g.Intruders() {
			out = append(out, i)
		}
	}
	return out
}
