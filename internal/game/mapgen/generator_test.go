package mapgen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
)

// newTestRNG provides a random number generator with a fixed seed for deterministic tests.
func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(12345))
}

func newGrid(t *testing.T, rows, cols int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(rows, cols)
	require.NoError(t, err)
	return g
}

// countKinds tallies terrain and resting entities over the whole grid
func countKinds(t *testing.T, g *core.Grid) Summary {
	t.Helper()
	var s Summary
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			c, err := g.CellAt(core.Position{Row: row, Col: col})
			require.NoError(t, err)
			switch c.Kind {
			case core.CellObstacle:
				s.Obstacles++
				assert.Nil(t, c.Occupant, "nothing stands on an obstacle")
				assert.Nil(t, c.Bag, "nothing lies on an obstacle")
			case core.CellExit:
				s.Exits++
				assert.Nil(t, c.Occupant, "entities do not start on exits")
				assert.Nil(t, c.Bag)
			}
			if c.Occupant != nil {
				assert.Nil(t, c.Bag, "every placement uses its own cell")
				switch c.Occupant.Kind() {
				case core.KindRobot:
					s.Robots++
				case core.KindIntruder:
					s.Intruders++
				}
			}
			if c.Bag != nil {
				s.Bags++
			}
		}
	}
	return s
}

func TestDefaultMapConfig(t *testing.T) {
	config := DefaultMapConfig()

	assert.Equal(t, 15, config.ObstaclePercent)
	assert.Equal(t, 10, config.ExitPercent)
	assert.Equal(t, 2, config.Robots)
	assert.Equal(t, 3, config.Intruders)
	assert.Equal(t, 4, config.Bags)
}

func TestNewGenerator(t *testing.T) {
	rng := newTestRNG()
	generator := NewGenerator(DefaultMapConfig(), rng)

	require.NotNil(t, generator)
	assert.Equal(t, DefaultMapConfig(), generator.config)
	assert.Same(t, rng, generator.rng)
}

func TestNewGenerator_Normalizes(t *testing.T) {
	generator := NewGenerator(MapConfig{
		ObstaclePercent: 140,
		ExitPercent:     -5,
		Robots:          0,
		Intruders:       -2,
		Bags:            0,
	}, newTestRNG())

	assert.Equal(t, MapConfig{ObstaclePercent: 100, ExitPercent: 0, Robots: 1, Intruders: 1, Bags: 1}, generator.config)
}

func TestPopulate(t *testing.T) {
	g := newGrid(t, 10, 10)
	summary, err := NewGenerator(DefaultMapConfig(), newTestRNG()).Populate(g)
	require.NoError(t, err)

	assert.Equal(t, Summary{Obstacles: 15, Exits: 10, Robots: 2, Intruders: 3, Bags: 4}, summary)
	assert.Equal(t, summary, countKinds(t, g))

	assert.Len(t, g.Robots(), 2)
	assert.Len(t, g.Intruders(), 3)
	assert.Len(t, g.MoneyBags(), 4)
	assert.Len(t, g.Exits(), 10)
	assert.False(t, g.IsSealed(), "populating does not end setup")
}

func TestPopulate_Deterministic(t *testing.T) {
	a := newGrid(t, 8, 12)
	b := newGrid(t, 8, 12)

	_, err := NewGenerator(DefaultMapConfig(), newTestRNG()).Populate(a)
	require.NoError(t, err)
	_, err = NewGenerator(DefaultMapConfig(), newTestRNG()).Populate(b)
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String(), "same seed gives the same grid")
}

func TestPopulate_AlwaysOneExit(t *testing.T) {
	config := DefaultMapConfig()
	config.ExitPercent = 0
	g := newGrid(t, 3, 3)

	summary, err := NewGenerator(config, newTestRNG()).Populate(g)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Exits)
	assert.Len(t, g.Exits(), 1)
}

func TestPopulate_CrowdedGrid(t *testing.T) {
	config := MapConfig{ObstaclePercent: 100, ExitPercent: 0, Robots: 3, Intruders: 3, Bags: 3}
	g := newGrid(t, 2, 2)

	summary, err := NewGenerator(config, newTestRNG()).Populate(g)
	require.NoError(t, err, "running out of room is not an error")

	assert.LessOrEqual(t, summary.Obstacles+summary.Exits, 4)
	assert.Equal(t, summary, countKinds(t, g))
	total := summary.Obstacles + summary.Exits + summary.Robots + summary.Intruders + summary.Bags
	assert.LessOrEqual(t, total, 4, "each placement uses a distinct cell")
}

func TestPopulate_SealedGrid(t *testing.T) {
	g := newGrid(t, 4, 4)
	g.Seal()

	summary, err := NewGenerator(DefaultMapConfig(), newTestRNG()).Populate(g)
	assert.ErrorIs(t, err, core.ErrInvalidState)
	assert.Equal(t, Summary{}, summary)
}
