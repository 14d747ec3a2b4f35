// Package autopilot chooses moves for either side with a behavior tree. It is
// the AI assist used by the demo command; players of a hosted game call
// game.Manager directly.
package autopilot

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridHeist/internal/game"
	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
	"github.com/mitchelldurbincs/GridHeist/internal/game/rules"
)

// DecisionKind tells how a decision is applied
type DecisionKind int

const (
	DecisionMove DecisionKind = iota
	DecisionPass
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionMove:
		return "move"
	case DecisionPass:
		return "pass"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is one chosen action for the side-to-move
type Decision struct {
	Kind   DecisionKind
	Move   rules.Move
	Reason string
}

// blackboard is the state shared by the leaves during one tick
type blackboard struct {
	grid     *core.Grid
	moves    []rules.Move
	decision *Decision
}

// Pilot picks moves with one behavior tree per side
type Pilot struct {
	logger    zerolog.Logger
	bb        *blackboard
	robots    bt.Node
	intruders bt.Node
}

// New builds the robot and intruder trees
func New(logger zerolog.Logger) *Pilot {
	p := &Pilot{
		logger: logger.With().Str("component", "Autopilot").Logger(),
		bb:     &blackboard{},
	}

	p.robots = bt.New(
		bt.Selector,
		p.choose("capture", func(m rules.Move) bool {
			return len(p.bb.grid.NeighborsOfKind(m.To, core.IsLiveIntruder)) > 0
		}),
		p.closest("chase", func() []core.Position { return livePositions(p.bb.grid.Intruders()) }, nil),
		p.choose("patrol", func(rules.Move) bool { return true }),
		p.pass(),
	)

	p.intruders = bt.New(
		bt.Selector,
		bt.New(
			bt.Sequence,
			p.condition(p.shouldLeave),
			p.choose("escape", func(m rules.Move) bool { return p.isExit(m.To) }),
		),
		bt.New(
			bt.Sequence,
			p.condition(p.canCarry),
			p.choose("grab", func(m rules.Move) bool { return p.hasBag(m.To) && p.carrierHasRoom(m) }),
		),
		bt.New(
			bt.Sequence,
			p.condition(p.canCarry),
			p.closest("approach bag", p.bagPositions, p.carrierHasRoom),
		),
		p.closest("head for exit", func() []core.Position { return p.bb.grid.Exits() }, nil),
		p.choose("wander", func(rules.Move) bool { return true }),
		p.pass(),
	)

	return p
}

// Choose ticks the tree of the side-to-move and returns its decision
func (p *Pilot) Choose(m *game.Manager) (Decision, error) {
	var tree bt.Node
	switch side := m.Turn().Side; side {
	case core.SideRobots:
		tree = p.robots
	case core.SideIntruders:
		tree = p.intruders
	default:
		return Decision{}, fmt.Errorf("autopilot for side %s: %w", side, core.ErrWrongSide)
	}

	p.bb.grid = m.Grid()
	p.bb.moves = m.LegalMoves()
	p.bb.decision = nil
	defer func() { *p.bb = blackboard{} }()

	status, err := tree.Tick()
	if err != nil {
		return Decision{}, err
	}
	if status != bt.Success || p.bb.decision == nil {
		return Decision{}, fmt.Errorf("autopilot found no decision: %w", core.ErrInvalidState)
	}
	return *p.bb.decision, nil
}

// Play chooses a decision and applies it to the manager
func (p *Pilot) Play(m *game.Manager) (Decision, error) {
	d, err := p.Choose(m)
	if err != nil {
		return d, err
	}

	switch d.Kind {
	case DecisionPass:
		err = m.Pass()
	default:
		_, err = m.PlayMove(d.Move.Entity, d.Move.To)
	}
	if err != nil {
		return d, err
	}

	ev := p.logger.Debug().Str("decision", d.Kind.String()).Str("reason", d.Reason)
	if d.Kind == DecisionMove {
		ev = ev.Str("entity", core.Describe(d.Move.Entity)).Str("to", d.Move.To.String())
	}
	ev.Msg("Autopilot played")
	return d, nil
}

func (p *Pilot) condition(fn func() bool) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if fn() {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}

// choose succeeds with the first legal move accepted by pred
func (p *Pilot) choose(reason string, pred func(rules.Move) bool) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		for _, m := range p.bb.moves {
			if pred(m) {
				p.bb.decision = &Decision{Kind: DecisionMove, Move: m, Reason: reason}
				return bt.Success, nil
			}
		}
		return bt.Failure, nil
	})
}

// closest succeeds with the legal move that gets an entity strictly nearer to
// one of the targets. The first of equally good moves wins. A nil eligible
// accepts every move.
func (p *Pilot) closest(reason string, targets func() []core.Position, eligible func(rules.Move) bool) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		goals := targets()
		if len(goals) == 0 {
			return bt.Failure, nil
		}

		best, bestGain := -1, 0
		for idx, m := range p.bb.moves {
			if eligible != nil && !eligible(m) {
				continue
			}
			from, _ := m.Entity.Position()
			gain := nearest(from, goals) - nearest(m.To, goals)
			if gain > bestGain {
				best, bestGain = idx, gain
			}
		}
		if best < 0 {
			return bt.Failure, nil
		}
		p.bb.decision = &Decision{Kind: DecisionMove, Move: p.bb.moves[best], Reason: reason}
		return bt.Success, nil
	})
}

func (p *Pilot) pass() bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if len(p.bb.moves) > 0 {
			return bt.Failure, nil
		}
		p.bb.decision = &Decision{Kind: DecisionPass, Reason: "no legal move"}
		return bt.Success, nil
	})
}

// shouldLeave holds once some intruder carries a bag or no bag is left to take
func (p *Pilot) shouldLeave() bool {
	for _, i := range p.bb.grid.Intruders() {
		if len(i.CarriedBags()) > 0 {
			return true
		}
	}
	return len(p.bagPositions()) == 0
}

func (p *Pilot) canCarry() bool {
	for _, i := range p.bb.grid.Intruders() {
		if i.CanCarry() {
			return true
		}
	}
	return false
}

func (p *Pilot) carrierHasRoom(m rules.Move) bool {
	i, ok := m.Entity.(*core.Intruder)
	return ok && i.CanCarry()
}

func (p *Pilot) isExit(pos core.Position) bool {
	c, err := p.bb.grid.CellAt(pos)
	return err == nil && c.IsExit()
}

func (p *Pilot) hasBag(pos core.Position) bool {
	c, err := p.bb.grid.CellAt(pos)
	return err == nil && c.HasBag()
}

func (p *Pilot) bagPositions() []core.Position {
	var out []core.Position
	for _, b := range p.bb.grid.MoneyBags() {
		if b.IsCarried() {
			continue
		}
		if pos, ok := b.Position(); ok {
			out = append(out, pos)
		}
	}
	return out
}

func livePositions(intruders []*core.Intruder) []core.Position {
	out := make([]core.Position, 0, len(intruders))
	for _, i := range intruders {
		if pos, ok := i.Position(); ok && i.IsLive() {
			out = append(out, pos)
		}
	}
	return out
}

// nearest returns the king-move distance from p to the closest goal
func nearest(p core.Position, goals []core.Position) int {
	best := -1
	for _, g := range goals {
		if d := p.ChebyshevTo(g); best < 0 || d < best {
			best = d
		}
	}
	return best
}
