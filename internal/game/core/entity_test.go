package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSide(t *testing.T) {
	assert.Equal(t, SideIntruders, SideRobots.Opponent())
	assert.Equal(t, SideRobots, SideIntruders.Opponent())
	assert.Equal(t, SideNone, SideNone.Opponent())

	assert.Equal(t, SideRobots, SideOf(NewRobot(0)))
	assert.Equal(t, SideIntruders, SideOf(NewIntruder(0)))
	assert.Equal(t, SideNone, SideOf(NewMoneyBag(0)))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "robot 2", Describe(NewRobot(2)))
	assert.Equal(t, "intruder 0", Describe(NewIntruder(0)))
	assert.Equal(t, "money bag 5", Describe(NewMoneyBag(5)))
	assert.Equal(t, "nil entity", Describe(nil))
}

func TestNewEntitiesAreOffGrid(t *testing.T) {
	for _, e := range []Entity{NewRobot(0), NewIntruder(0), NewMoneyBag(0)} {
		_, ok := e.Position()
		assert.False(t, ok, "%s should not be on a grid", Describe(e))
		assert.True(t, e.IsLive())
	}
	_, carried := NewMoneyBag(0).CarrierID()
	assert.False(t, carried)
}

func TestRobot_Act(t *testing.T) {
	t.Run("captures first intruder in scan order", func(t *testing.T) {
		g := newTestGrid(t, 3, 3)
		r, _ := g.PlaceRobot(Position{1, 1})
		first, _ := g.PlaceIntruder(Position{0, 2})
		second, _ := g.PlaceIntruder(Position{2, 0})

		out := r.Act(g)
		assert.Equal(t, OutcomeCaptured, out.Kind)
		assert.Equal(t, Entity(r), out.Actor)
		assert.Equal(t, Entity(first), out.Target)
		assert.False(t, first.IsLive())
		assert.True(t, second.IsLive())
		assert.Equal(t, 1, r.Captures())
		assertInvariants(t, g)
	})

	t.Run("nothing adjacent", func(t *testing.T) {
		g := newTestGrid(t, 4, 4)
		r, _ := g.PlaceRobot(Position{0, 0})
		_, _ = g.PlaceIntruder(Position{3, 3})

		assert.Equal(t, OutcomeNone, r.Act(g).Kind)
		assert.Zero(t, r.Captures())
	})
}

func TestIntruder_Act(t *testing.T) {
	t.Run("escape beats pickup", func(t *testing.T) {
		g := newTestGrid(t, 3, 3)
		require.NoError(t, g.PlaceExit(Position{1, 1}))
		i, _ := g.PlaceIntruder(Position{1, 1})
		b, _ := g.PlaceMoneyBag(Position{1, 2})

		out := i.Act(g)
		assert.Equal(t, OutcomeEscaped, out.Kind)
		assert.True(t, i.HasEscaped())
		assert.False(t, b.IsCarried())
	})

	t.Run("picks up adjacent bag", func(t *testing.T) {
		g := newTestGrid(t, 3, 3)
		i, _ := g.PlaceIntruder(Position{1, 1})
		b0, _ := g.PlaceMoneyBag(Position{0, 1})
		b1, _ := g.PlaceMoneyBag(Position{2, 2})

		out := i.Act(g)
		assert.Equal(t, OutcomePickedUp, out.Kind)
		assert.Equal(t, Entity(b0), out.Target)
		assert.True(t, b0.IsCarried())
		assert.False(t, b1.IsCarried(), "one pickup per action")
		assert.True(t, g.IsFree(Position{0, 1}))
		assertInvariants(t, g)
	})

	t.Run("prefers bag on own cell", func(t *testing.T) {
		g := newTestGrid(t, 3, 4)
		thief, _ := g.PlaceIntruder(Position{2, 1})
		waiting, _ := g.PlaceIntruder(Position{1, 2})
		under, _ := g.PlaceMoneyBag(Position{2, 2})
		side, _ := g.PlaceMoneyBag(Position{1, 1})
		r, _ := g.PlaceRobot(Position{1, 3})

		_, err := g.MoveEntity(thief, Position{2, 2})
		require.NoError(t, err)
		_, err = g.MoveEntity(thief, Position{2, 3})
		require.NoError(t, err)
		_, err = g.MoveEntity(waiting, Position{2, 2})
		require.NoError(t, err)

		// the captured thief's bag lands back on its origin, under waiting
		require.NoError(t, g.Capture(r, thief))
		c, _ := g.CellAt(Position{2, 2})
		require.Equal(t, under, c.Bag)

		out := waiting.Act(g)
		assert.Equal(t, OutcomePickedUp, out.Kind)
		assert.Equal(t, Entity(under), out.Target)
		assert.False(t, side.IsCarried())
		assertInvariants(t, g)
	})

	t.Run("full intruder ignores bags", func(t *testing.T) {
		g := newTestGrid(t, 3, 3)
		i, _ := g.PlaceIntruder(Position{1, 1})
		b0, _ := g.PlaceMoneyBag(Position{0, 0})
		b1, _ := g.PlaceMoneyBag(Position{0, 1})
		b2, _ := g.PlaceMoneyBag(Position{0, 2})
		require.NoError(t, g.PickUp(i, b0))
		require.NoError(t, g.PickUp(i, b1))

		assert.Equal(t, OutcomeNone, i.Act(g).Kind)
		assert.False(t, b2.IsCarried())
		assert.Len(t, i.CarriedBags(), i.Capacity())
	})

	t.Run("dead intruder does nothing", func(t *testing.T) {
		g := newTestGrid(t, 3, 3)
		i, _ := g.PlaceIntruder(Position{1, 1})
		require.NoError(t, g.RemoveEntity(i))
		assert.Equal(t, Outcome{}, i.Act(g))
	})
}

func TestMoneyBag_ActIsNoop(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	b, _ := g.PlaceMoneyBag(Position{0, 0})
	assert.Equal(t, Outcome{}, b.Act(g))
	pos, ok := b.Position()
	assert.True(t, ok)
	assert.Equal(t, Position{0, 0}, pos)
}
