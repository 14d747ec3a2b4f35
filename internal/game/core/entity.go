package core

import "fmt"

// IntruderCapacity is the number of money bags an intruder can carry at once
const IntruderCapacity = 2

// Kind identifies an entity variant
type Kind int

const (
	KindRobot Kind = iota
	KindIntruder
	KindMoneyBag
)

func (k Kind) String() string {
	switch k {
	case KindRobot:
		return "robot"
	case KindIntruder:
		return "intruder"
	case KindMoneyBag:
		return "money bag"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Side is the faction allowed to act during a turn segment
type Side int

const (
	SideNone      Side = 0
	SideRobots    Side = 1
	SideIntruders Side = 2
)

func (s Side) String() string {
	switch s {
	case SideRobots:
		return "robots"
	case SideIntruders:
		return "intruders"
	default:
		return "none"
	}
}

// Opponent returns the other faction
func (s Side) Opponent() Side {
	switch s {
	case SideRobots:
		return SideIntruders
	case SideIntruders:
		return SideRobots
	default:
		return SideNone
	}
}

// Entity is the closed set of things that live on a grid: *Robot, *Intruder and *MoneyBag.
type Entity interface {
	ID() int
	Kind() Kind
	// Position returns the grid position and false when the entity is not on the grid
	Position() (Position, bool)
	IsLive() bool
	// Act performs the entity's automatic per-turn behavior
	Act(g *Grid) Outcome

	base() *entityState
}

type entityState struct {
	id     int
	pos    Position
	onGrid bool
	live   bool
}

func (s *entityState) ID() int { return s.id }
func (s *entityState) Position() (Position, bool) {
	return s.pos, s.onGrid
}
func (s *entityState) IsLive() bool { return s.live }
func (s *entityState) base() *entityState { return s }

func (s *entityState) setPosition(p Position) {
	s.pos = p
	s.onGrid = true
}

func (s *entityState) clearPosition() {
	s.pos = Position{}
	s.onGrid = false
}

// SideOf returns the faction that controls an entity
func SideOf(e Entity) Side {
	switch e.Kind() {
	case KindRobot:
		return SideRobots
	case KindIntruder:
		return SideIntruders
	default:
		return SideNone
	}
}

// Describe returns a short human readable name such as "robot 2"
func Describe(e Entity) string {
	if e == nil {
		return "nil entity"
	}
	return fmt.Sprintf("%s %d", e.Kind(), e.ID())
}

// OutcomeKind classifies what happened during an entity action
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeCaptured
	OutcomeEscaped
	OutcomePickedUp
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCaptured:
		return "captured"
	case OutcomeEscaped:
		return "escaped"
	case OutcomePickedUp:
		return "picked_up"
	default:
		return "none"
	}
}

// Outcome reports the effect of an Act call.
// For captures Actor is the robot and Target the intruder; for pickups Target is the bag.
type Outcome struct {
	Kind   OutcomeKind
	Actor  Entity
	Target Entity
}

// Robot is a guard that captures adjacent intruders
type Robot struct {
	entityState
	captures int
}

// NewRobot creates a live robot that is not yet on a grid
func NewRobot(id int) *Robot {
	return &Robot{entityState: entityState{id: id, live: true}}
}

func (r *Robot) Kind() Kind { return KindRobot }
func (r *Robot) Captures() int { return r.captures }

// Act captures the first live intruder found in the robot's neighborhood scan
func (r *Robot) Act(g *Grid) Outcome {
	if !r.live || !r.onGrid {
		return Outcome{}
	}
	adjacent := g.NeighborsOfKind(r.pos, IsLiveIntruder)
	if len(adjacent) == 0 {
		return Outcome{}
	}
	target := adjacent[0].(*Intruder)
	if err := g.Capture(r, target); err != nil {
		g.logger.Debug().Err(err).Str("robot", Describe(r)).Msg("Robot action failed")
		return Outcome{}
	}
	return Outcome{Kind: OutcomeCaptured, Actor: r, Target: target}
}

// Intruder is a thief that collects money bags and tries to reach an exit
type Intruder struct {
	entityState
	bags    []*MoneyBag
	escaped bool
}

// NewIntruder creates a live intruder that is not yet on a grid
func NewIntruder(id int) *Intruder {
	return &Intruder{
		entityState: entityState{id: id, live: true},
		bags:        make([]*MoneyBag, 0, IntruderCapacity),
	}
}

func (i *Intruder) Kind() Kind { return KindIntruder }
func (i *Intruder) Capacity() int { return IntruderCapacity }
func (i *Intruder) HasEscaped() bool { return i.escaped }
func (i *Intruder) CanCarry() bool { return len(i.bags) < IntruderCapacity }

// CarriedBags returns a copy of the bags currently carried
func (i *Intruder) CarriedBags() []*MoneyBag {
	out := make([]*MoneyBag, len(i.bags))
	copy(out, i.bags)
	return out
}

// Act escapes when standing on an exit; otherwise picks up at most one nearby bag.
// Escaping takes priority over picking up.
func (i *Intruder) Act(g *Grid) Outcome {
	if !i.live || !i.onGrid {
		return Outcome{}
	}
	if cell := g.cellRef(i.pos); cell != nil && cell.IsExit() {
		if err := g.Escape(i); err != nil {
			g.logger.Debug().Err(err).Str("intruder", Describe(i)).Msg("Escape failed")
			return Outcome{}
		}
		return Outcome{Kind: OutcomeEscaped, Actor: i}
	}
	if !i.CanCarry() {
		return Outcome{}
	}

	var candidates []Entity
	if cell := g.cellRef(i.pos); cell != nil && cell.Bag != nil {
		candidates = append(candidates, cell.Bag)
	}
	candidates = append(candidates, g.NeighborsOfKind(i.pos, IsUnclaimedBag)...)
	if len(candidates) == 0 {
		return Outcome{}
	}
	bag := candidates[0].(*MoneyBag)
	if err := g.PickUp(i, bag); err != nil {
		g.logger.Debug().Err(err).Str("intruder", Describe(i)).Msg("Pickup failed")
		return Outcome{}
	}
	return Outcome{Kind: OutcomePickedUp, Actor: i, Target: bag}
}

func (i *Intruder) take(b *MoneyBag) error {
	if !i.CanCarry() {
		return ErrCapacityExceeded
	}
	i.bags = append(i.bags, b)
	b.carried = true
	b.carrierID = i.id
	b.clearPosition()
	return nil
}

// MoneyBag is a passive item. It is never destroyed: it is either lying on the
// grid or carried by an intruder.
type MoneyBag struct {
	entityState
	carried   bool
	carrierID int
	origin    Position
}

// NewMoneyBag creates an unclaimed bag that is not yet on a grid
func NewMoneyBag(id int) *MoneyBag {
	return &MoneyBag{entityState: entityState{id: id, live: true}, carrierID: -1}
}

func (b *MoneyBag) Kind() Kind { return KindMoneyBag }
func (b *MoneyBag) IsCarried() bool { return b.carried }
func (b *MoneyBag) Origin() Position { return b.origin }
func (b *MoneyBag) Act(*Grid) Outcome { return Outcome{} }

// CarrierID returns the id of the carrying intruder, resolved through the grid registry
func (b *MoneyBag) CarrierID() (int, bool) {
	if !b.carried {
		return -1, false
	}
	return b.carrierID, true
}

// returnToOrigin puts the bag back in its original placement state
func (b *MoneyBag) returnToOrigin() {
	b.carried = false
	b.carrierID = -1
	b.setPosition(b.origin)
}

// IsLiveIntruder matches intruders that are still in play
func IsLiveIntruder(e Entity) bool {
	return e != nil && e.Kind() == KindIntruder && e.IsLive()
}

// IsLiveRobot matches robots that are still in play
func IsLiveRobot(e Entity) bool {
	return e != nil && e.Kind() == KindRobot && e.IsLive()
}

// IsUnclaimedBag matches bags lying on the grid
func IsUnclaimedBag(e Entity) bool {
	b, ok := e.(*MoneyBag)
	return ok && !b.carried
}
