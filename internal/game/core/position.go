package core

import "fmt"

// Position represents a cell location on the grid as (row, column)
type Position struct {
	Row, Col int
}

// NewPosition creates a new position with the given row and column
func NewPosition(row, col int) Position {
	return Position{Row: row, Col: col}
}

// FromIndex creates a position from a grid array index using row-major ordering
func FromIndex(idx, cols int) Position {
	return Position{
		Row: idx / cols,
		Col: idx % cols,
	}
}

// IsValid checks if the position is within the given bounds
func (p Position) IsValid(rows, cols int) bool {
	return p.Row >= 0 && p.Row < rows && p.Col >= 0 && p.Col < cols
}

// ToIndex converts the position to a grid array index using row-major ordering
func (p Position) ToIndex(cols int) int {
	return p.Row*cols + p.Col
}

// DistanceTo calculates the Manhattan distance to another position
func (p Position) DistanceTo(other Position) int {
	return abs(p.Row-other.Row) + abs(p.Col-other.Col)
}

// ChebyshevTo calculates the king-move distance to another position
func (p Position) ChebyshevTo(other Position) int {
	dr := abs(p.Row - other.Row)
	dc := abs(p.Col - other.Col)
	if dr > dc {
		return dr
	}
	return dc
}

// IsAdjacentTo checks if this position touches another in any of the 8 directions.
// A position is never adjacent to itself.
func (p Position) IsAdjacentTo(other Position) bool {
	return p.ChebyshevTo(other) == 1
}

// Neighbors returns the eight surrounding positions in row-major order:
// top-left, top, top-right, left, right, bottom-left, bottom, bottom-right.
func (p Position) Neighbors() []Position {
	neighbors := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			neighbors = append(neighbors, Position{Row: p.Row + dr, Col: p.Col + dc})
		}
	}
	return neighbors
}

// ValidNeighbors returns only the neighbors that are within the given bounds
func (p Position) ValidNeighbors(rows, cols int) []Position {
	valid := make([]Position, 0, 8)
	for _, n := range p.Neighbors() {
		if n.IsValid(rows, cols) {
			valid = append(valid, n)
		}
	}
	return valid
}

// Add returns a new position that is the sum of this position and another
func (p Position) Add(other Position) Position {
	return Position{
		Row: p.Row + other.Row,
		Col: p.Col + other.Col,
	}
}

// Sub returns a new position that is the difference between this position and another
func (p Position) Sub(other Position) Position {
	return Position{
		Row: p.Row - other.Row,
		Col: p.Col - other.Col,
	}
}

// String returns a string representation of the position
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction represents one of the eight compass directions
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// AllDirections lists every direction in clockwise order starting at North
var AllDirections = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// DirectionVectors provides position offsets for each direction
var DirectionVectors = map[Direction]Position{
	North:     {Row: -1, Col: 0},
	NorthEast: {Row: -1, Col: 1},
	East:      {Row: 0, Col: 1},
	SouthEast: {Row: 1, Col: 1},
	South:     {Row: 1, Col: 0},
	SouthWest: {Row: 1, Col: -1},
	West:      {Row: 0, Col: -1},
	NorthWest: {Row: -1, Col: -1},
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case East:
		return "E"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case West:
		return "W"
	case NorthWest:
		return "NW"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Move returns a new position moved one step in the given direction.
// Unknown directions leave the position unchanged.
func (p Position) Move(direction Direction) Position {
	if offset, ok := DirectionVectors[direction]; ok {
		return p.Add(offset)
	}
	return p
}

// DirectionTo returns the direction from this position to an adjacent position
// Returns -1 if the positions are not adjacent
func (p Position) DirectionTo(other Position) Direction {
	if !p.IsAdjacentTo(other) {
		return -1
	}
	delta := other.Sub(p)
	for _, d := range AllDirections {
		if DirectionVectors[d] == delta {
			return d
		}
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
