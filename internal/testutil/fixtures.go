package testutil

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
)

// CreateTestGrid creates an empty grid with the given dimensions
func CreateTestGrid(t *testing.T, rows, cols int) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(rows, cols, core.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return g
}

// GridFromLayout builds a grid from one string per row using the same symbols
// as Grid.String: R robot, I intruder, $ money bag, # obstacle, E exit, . empty.
// Spaces are ignored. Entities get ids in row-major order.
func GridFromLayout(t *testing.T, layout ...string) *core.Grid {
	t.Helper()
	require.NotEmpty(t, layout, "layout needs at least one row")

	rows := make([]string, len(layout))
	for i, line := range layout {
		rows[i] = strings.ReplaceAll(line, " ", "")
		require.Len(t, rows[i], len(rows[0]), "row %d has a different width", i)
	}

	g := CreateTestGrid(t, len(rows), len(rows[0]))
	for r, line := range rows {
		for c, ch := range line {
			p := core.Position{Row: r, Col: c}
			var err error
			switch ch {
			case 'R':
				_, err = g.PlaceRobot(p)
			case 'I':
				_, err = g.PlaceIntruder(p)
			case '$':
				_, err = g.PlaceMoneyBag(p)
			case '#':
				err = g.PlaceObstacle(p)
			case 'E':
				err = g.PlaceExit(p)
			case '.':
			default:
				t.Fatalf("unknown layout symbol %q at %s", ch, p)
			}
			require.NoError(t, err, "placing %q at %s", ch, p)
		}
	}
	return g
}

// CreateSimpleTestSetup creates a 5x5 grid with one robot at (0,0), one
// intruder at (2,2), a bag at (2,4) and an exit at (4,4)
func CreateSimpleTestSetup(t *testing.T) *core.Grid {
	t.Helper()
	return GridFromLayout(t,
		"R....",
		".....",
		"..I.$",
		".....",
		"....E",
	)
}
