package testutil

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// AssertGridConsistent checks the occupancy invariants of g: every occupant
// stands where its cell says, no two live movers share a cell, obstacles stay
// empty, carried bags are off the grid and resolve to their carrier, and no
// intruder is over capacity.
func AssertGridConsistent(t *testing.T, g *core.Grid) bool {
	t.Helper()
	ok := true
	seen := make(map[core.Position]core.Entity)

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			p := core.Position{Row: r, Col: c}
			cell, err := g.CellAt(p)
			if !assert.NoError(t, err) {
				return false
			}
			if cell.IsObstacle() {
				ok = assert.False(t, cell.HasOccupant() || cell.HasBag(), "obstacle %s is not empty", p) && ok
			}
			if cell.Occupant != nil {
				at, onGrid := cell.Occupant.Position()
				ok = assert.True(t, onGrid && at == p, "%s recorded at %s stands on %s",
					core.Describe(cell.Occupant), at, p) && ok
				ok = assert.True(t, cell.Occupant.IsLive(), "dead %s still on %s", core.Describe(cell.Occupant), p) && ok
			}
			if cell.Bag != nil {
				ok = assert.False(t, cell.Bag.IsCarried(), "carried bag %d lies on %s", cell.Bag.ID(), p) && ok
			}
		}
	}

	for _, r := range g.Robots() {
		ok = assertUniquelyPlaced(t, seen, r) && ok
	}
	for _, i := range g.Intruders() {
		ok = assertUniquelyPlaced(t, seen, i) && ok
		ok = assert.LessOrEqual(t, len(i.CarriedBags()), i.Capacity(), "intruder %d over capacity", i.ID()) && ok
		for _, b := range i.CarriedBags() {
			id, carried := b.CarrierID()
			carrier, found := g.IntruderByID(id)
			ok = assert.True(t, carried && found && carrier == i,
				"bag %d held by intruder %d resolves to carrier %d", b.ID(), i.ID(), id) && ok
		}
	}
	for _, b := range g.MoneyBags() {
		_, onGrid := b.Position()
		ok = assert.NotEqual(t, b.IsCarried(), onGrid, "bag %d carried=%v onGrid=%v", b.ID(), b.IsCarried(), onGrid) && ok
	}
	return ok
}

func assertUniquelyPlaced(t *testing.T, seen map[core.Position]core.Entity, e core.Entity) bool {
	t.Helper()
	p, onGrid := e.Position()
	if !assert.True(t, onGrid, "live %s has no position", core.Describe(e)) {
		return false
	}
	if other, taken := seen[p]; taken {
		return assert.Fail(t, "shared cell", "%s and %s both on %s", core.Describe(other), core.Describe(e), p)
	}
	seen[p] = e
	return true
}
