package rules

import "github.com/mitchelldurbincs/GridHeist/internal/game/core"

// Capture pairs the capturing robot with its target
type Capture struct {
	Robot    *core.Robot
	Intruder *core.Intruder
}

// FindCapture returns the capture caused by mover having just moved, if any.
// A robot takes the first live intruder around it; an intruder is taken by the
// first live robot around it. Neighbors are scanned in row-major order.
func FindCapture(g *core.Grid, mover core.Entity) (Capture, bool) {
	if mover == nil || !mover.IsLive() {
		return Capture{}, false
	}
	pos, ok := mover.Position()
	if !ok {
		return Capture{}, false
	}

	switch m := mover.(type) {
	case *core.Robot:
		if found := g.NeighborsOfKind(pos, core.IsLiveIntruder); len(found) > 0 {
			return Capture{Robot: m, Intruder: found[0].(*core.Intruder)}, true
		}
	case *core.Intruder:
		if found := g.NeighborsOfKind(pos, core.IsLiveRobot); len(found) > 0 {
			return Capture{Robot: found[0].(*core.Robot), Intruder: m}, true
		}
	}
	return Capture{}, false
}
