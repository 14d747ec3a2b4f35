package core

import "fmt"

// CellKind is the terrain of a cell
type CellKind int

const (
	CellEmpty CellKind = iota
	CellObstacle
	CellExit
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "Empty"
	case CellObstacle:
		return "Obstacle"
	case CellExit:
		return "Exit"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// Cell represents a single square on the grid.
// Occupant is the mobile entity (robot or intruder) standing on the cell, if any.
// Bag is the unclaimed money bag lying on the cell, if any. A bag never blocks
// movement, so a cell may hold both an occupant and a bag.
type Cell struct {
	Pos      Position
	Kind     CellKind
	Occupant Entity
	Bag      *MoneyBag
}

func (c *Cell) IsObstacle() bool { return c.Kind == CellObstacle }
func (c *Cell) IsExit() bool { return c.Kind == CellExit }
func (c *Cell) HasOccupant() bool {
	return c.Occupant != nil
}
func (c *Cell) HasBag() bool { return c.Bag != nil }

// IsFree reports whether nothing stands or lies on the cell and it is not an obstacle
func (c *Cell) IsFree() bool {
	return !c.IsObstacle() && c.Occupant == nil && c.Bag == nil
}

// IsEnterable reports whether a mobile entity may step onto the cell.
// Unclaimed bags do not block.
func (c *Cell) IsEnterable() bool {
	return !c.IsObstacle() && c.Occupant == nil
}
