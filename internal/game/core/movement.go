package core

// CheckMove validates moving e one step to dest and returns the reason a move
// is illegal, or nil. The rules, in order:
//   - the mover must be a live robot or intruder on this grid
//   - dest must be in bounds
//   - dest must be one of the eight cells around the mover
//   - dest must not be an obstacle nor hold a robot or intruder; bags never block
//   - an intruder may not step next to a live robot
//
// CheckMove never mutates the grid.
func CheckMove(e Entity, dest Position, g *Grid) error {
	if err := g.checkMover(e); err != nil {
		return err
	}
	if !g.IsInBounds(dest) {
		return ErrOutOfBounds
	}
	from, _ := e.Position()
	if !from.IsAdjacentTo(dest) {
		return ErrNotAdjacent
	}
	if !g.cellRef(dest).IsEnterable() {
		return ErrBlocked
	}
	if e.Kind() == KindIntruder && g.HasLiveRobotAdjacent(dest) {
		return ErrZoneOfControl
	}
	return nil
}

// IsLegalMove reports whether CheckMove accepts the move
func IsLegalMove(e Entity, dest Position, g *Grid) bool {
	return CheckMove(e, dest, g) == nil
}

// ReachablePositions lists the legal destinations for e in row-major neighbor order
func ReachablePositions(e Entity, g *Grid) []Position {
	if e == nil {
		return nil
	}
	from, ok := e.Position()
	if !ok {
		return nil
	}
	var reachable []Position
	for _, p := range from.Neighbors() {
		if CheckMove(e, p, g) == nil {
			reachable = append(reachable, p)
		}
	}
	return reachable
}
