package mapgen

import (
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
)

// MapConfig holds configuration for grid population
type MapConfig struct {
	ObstaclePercent int // share of cells turned into obstacles, 0-100
	ExitPercent     int // share of cells turned into exits, 0-100; at least one exit
	Robots          int
	Intruders       int
	Bags            int
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig() MapConfig {
	return MapConfig{
		ObstaclePercent: 15,
		ExitPercent:     10,
		Robots:          2,
		Intruders:       3,
		Bags:            4,
	}
}

// normalized clamps percentages to 0-100 and counts to at least one
func (c MapConfig) normalized() MapConfig {
	c.ObstaclePercent = clamp(c.ObstaclePercent, 0, 100)
	c.ExitPercent = clamp(c.ExitPercent, 0, 100)
	c.Robots = max(1, c.Robots)
	c.Intruders = max(1, c.Intruders)
	c.Bags = max(1, c.Bags)
	return c
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Summary counts what Populate actually placed. Crowded grids may get fewer
// items than requested.
type Summary struct {
	Obstacles int
	Exits     int
	Robots    int
	Intruders int
	Bags      int
}

// Generator populates grids with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new grid populator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config.normalized(),
		rng:    rng,
	}
}

// Populate places obstacles, exits, robots, intruders and money bags, in that
// order, through the grid's setup API. Every placement uses a distinct cell.
// Placement stops early for a kind when no free cell turns up within the
// attempt budget.
func (g *Generator) Populate(grid *core.Grid) (Summary, error) {
	if grid.IsSealed() {
		return Summary{}, fmt.Errorf("populate sealed grid: %w", core.ErrInvalidState)
	}

	var (
		s   Summary
		err error
	)
	total := grid.Rows() * grid.Cols()

	obstacles := total * g.config.ObstaclePercent / 100
	if s.Obstacles, err = g.placeTerrain(grid, obstacles, grid.PlaceObstacle); err != nil {
		return s, err
	}

	exits := max(1, total*g.config.ExitPercent/100)
	if s.Exits, err = g.placeTerrain(grid, exits, grid.PlaceExit); err != nil {
		return s, err
	}

	if s.Robots, err = g.placeEntities(grid, g.config.Robots, func(p core.Position) error {
		_, err := grid.PlaceRobot(p)
		return err
	}); err != nil {
		return s, err
	}
	if s.Intruders, err = g.placeEntities(grid, g.config.Intruders, func(p core.Position) error {
		_, err := grid.PlaceIntruder(p)
		return err
	}); err != nil {
		return s, err
	}
	if s.Bags, err = g.placeEntities(grid, g.config.Bags, func(p core.Position) error {
		_, err := grid.PlaceMoneyBag(p)
		return err
	}); err != nil {
		return s, err
	}
	return s, nil
}

// placeTerrain draws random cells until want free ones are converted.
// The attempt budget is twice the cell count.
func (g *Generator) placeTerrain(grid *core.Grid, want int, place func(core.Position) error) (int, error) {
	placed := 0
	maxAttempts := grid.Rows() * grid.Cols() * 2

	for attempts := 0; placed < want && attempts < maxAttempts; attempts++ {
		p := g.randomPosition(grid)
		c, err := grid.CellAt(p)
		if err != nil || c.Kind != core.CellEmpty || !c.IsFree() {
			continue
		}
		if err := place(p); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

// placeEntities places want entities on free, non-exit cells. Each entity gets
// its own attempt budget of one cell count.
func (g *Generator) placeEntities(grid *core.Grid, want int, place func(core.Position) error) (int, error) {
	placed := 0
	for i := 0; i < want; i++ {
		p, ok := g.findFreeCell(grid)
		if !ok {
			break
		}
		if err := place(p); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

func (g *Generator) findFreeCell(grid *core.Grid) (core.Position, bool) {
	maxAttempts := grid.Rows() * grid.Cols()

	for attempts := 0; attempts < maxAttempts; attempts++ {
		p := g.randomPosition(grid)
		c, err := grid.CellAt(p)
		if err != nil || !c.IsFree() || c.IsExit() {
			continue
		}
		return p, true
	}
	return core.Position{}, false
}

func (g *Generator) randomPosition(grid *core.Grid) core.Position {
	return core.Position{Row: g.rng.Intn(grid.Rows()), Col: g.rng.Intn(grid.Cols())}
}
