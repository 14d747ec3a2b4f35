package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Result is the outcome of a game as judged by the grid
type Result int

const (
	InProgress Result = iota
	RobotsWin
	IntrudersWin
)

func (r Result) String() string {
	switch r {
	case RobotsWin:
		return "RobotsWin"
	case IntrudersWin:
		return "IntrudersWin"
	default:
		return "InProgress"
	}
}

// ListenerID identifies a change listener registered on a grid
type ListenerID int

type listener struct {
	id ListenerID
	fn func()
}

// Option configures a Grid
type Option func(*Grid)

// WithLogger sets the logger used by the grid
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Grid) {
		g.logger = logger.With().Str("component", "Grid").Logger()
	}
}

// Grid owns the cells, the entity registries and the change listeners.
// The cell occupant and bag slots are the source of truth for occupancy;
// the registries only index live entities for iteration.
//
// A Grid performs no locking. Callers must serialize all access.
type Grid struct {
	rows, cols int
	cells      []Cell // length = rows*cols (row-major)

	robots    []*Robot
	intruders []*Intruder
	bags      []*MoneyBag
	exits     []Position

	listeners      []listener
	nextListenerID ListenerID
	notifying      bool
	sealed         bool

	result       Result
	resultFrozen bool

	logger zerolog.Logger
}

// NewGrid creates an empty grid of the given dimensions
func NewGrid(rows, cols int, opts ...Option) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d: %w", rows, cols, ErrOutOfBounds)
	}
	g := &Grid{
		rows:   rows,
		cols:   cols,
		cells:  make([]Cell, rows*cols),
		logger: zerolog.Nop(),
	}
	for i := range g.cells {
		g.cells[i].Pos = FromIndex(i, cols)
		g.cells[i].Kind = CellEmpty
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// IsInBounds checks if a position lies on the grid
func (g *Grid) IsInBounds(p Position) bool {
	return p.IsValid(g.rows, g.cols)
}

// IsFree reports whether p is in bounds, not an obstacle and holds nothing
func (g *Grid) IsFree(p Position) bool {
	c := g.cellRef(p)
	return c != nil && c.IsFree()
}

// CellAt returns a copy of the cell at p
func (g *Grid) CellAt(p Position) (Cell, error) {
	c := g.cellRef(p)
	if c == nil {
		return Cell{}, fmt.Errorf("cell %s: %w", p, ErrOutOfBounds)
	}
	return *c, nil
}

// cellRef safely returns a cell pointer if the position is valid, nil otherwise
func (g *Grid) cellRef(p Position) *Cell {
	if !g.IsInBounds(p) {
		return nil
	}
	return &g.cells[p.ToIndex(g.cols)]
}

// Robots returns the live robots in placement order
func (g *Grid) Robots() []*Robot {
	out := make([]*Robot, len(g.robots))
	copy(out, g.robots)
	return out
}

// Intruders returns the live intruders in placement order
func (g *Grid) Intruders() []*Intruder {
	out := make([]*Intruder, len(g.intruders))
	copy(out, g.intruders)
	return out
}

// MoneyBags returns every bag, carried or not, in placement order
func (g *Grid) MoneyBags() []*MoneyBag {
	out := make([]*MoneyBag, len(g.bags))
	copy(out, g.bags)
	return out
}

// Exits returns the exit positions in placement order
func (g *Grid) Exits() []Position {
	out := make([]Position, len(g.exits))
	copy(out, g.exits)
	return out
}

// IntruderByID resolves an intruder id through the registry
func (g *Grid) IntruderByID(id int) (*Intruder, bool) {
	for _, i := range g.intruders {
		if i.id == id {
			return i, true
		}
	}
	return nil, false
}

// Seal ends the placement phase. Afterwards every Place* call fails with ErrInvalidState.
func (g *Grid) Seal() { g.sealed = true }

// IsSealed reports whether the placement phase is over
func (g *Grid) IsSealed() bool { return g.sealed }

// Subscribe registers fn to be called after every visible state change.
// Listeners run synchronously in registration order and must not mutate the grid.
func (g *Grid) Subscribe(fn func()) ListenerID {
	g.nextListenerID++
	g.listeners = append(g.listeners, listener{id: g.nextListenerID, fn: fn})
	return g.nextListenerID
}

// Unsubscribe removes a listener. It reports whether the listener was registered.
func (g *Grid) Unsubscribe(id ListenerID) bool {
	for i, l := range g.listeners {
		if l.id == id {
			g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Notify calls every listener. Owners of state layered over the grid, such as
// the turn manager, use it after changing that state.
func (g *Grid) Notify() error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	g.notify()
	return nil
}

// IsNotifying reports whether a listener is running
func (g *Grid) IsNotifying() bool { return g.notifying }

func (g *Grid) notify() {
	if len(g.listeners) == 0 {
		return
	}
	snapshot := make([]listener, len(g.listeners))
	copy(snapshot, g.listeners)

	g.notifying = true
	defer func() { g.notifying = false }()
	for _, l := range snapshot {
		l.fn()
	}
}

func (g *Grid) checkMutable() error {
	if g.notifying {
		return ErrReentrantMutation
	}
	return nil
}

func (g *Grid) checkPlaceable() error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if g.sealed {
		return fmt.Errorf("placement after setup: %w", ErrInvalidState)
	}
	return nil
}

// PlaceObstacle turns an empty cell into an obstacle
func (g *Grid) PlaceObstacle(p Position) error {
	return g.placeTerrain(p, CellObstacle)
}

// PlaceExit turns an empty cell into an exit
func (g *Grid) PlaceExit(p Position) error {
	return g.placeTerrain(p, CellExit)
}

func (g *Grid) placeTerrain(p Position, kind CellKind) error {
	if err := g.checkPlaceable(); err != nil {
		return err
	}
	c := g.cellRef(p)
	if c == nil {
		return fmt.Errorf("place %s at %s: %w", kind, p, ErrOutOfBounds)
	}
	if c.Kind != CellEmpty || !c.IsFree() {
		return fmt.Errorf("place %s at %s: %w", kind, p, ErrOccupied)
	}
	c.Kind = kind
	if kind == CellExit {
		g.exits = append(g.exits, p)
	}
	g.logger.Debug().Str("kind", kind.String()).Str("pos", p.String()).Msg("Terrain placed")
	g.notify()
	return nil
}

// PlaceRobot creates a robot with the next free id and places it at p
func (g *Grid) PlaceRobot(p Position) (*Robot, error) {
	r := NewRobot(g.nextID(KindRobot))
	if err := g.Place(r, p); err != nil {
		return nil, err
	}
	return r, nil
}

// PlaceIntruder creates an intruder with the next free id and places it at p
func (g *Grid) PlaceIntruder(p Position) (*Intruder, error) {
	i := NewIntruder(g.nextID(KindIntruder))
	if err := g.Place(i, p); err != nil {
		return nil, err
	}
	return i, nil
}

// PlaceMoneyBag creates a bag with the next free id and places it at p.
// p becomes the bag's origin.
func (g *Grid) PlaceMoneyBag(p Position) (*MoneyBag, error) {
	b := NewMoneyBag(g.nextID(KindMoneyBag))
	if err := g.Place(b, p); err != nil {
		return nil, err
	}
	return b, nil
}

func (g *Grid) nextID(kind Kind) int {
	next := 0
	switch kind {
	case KindRobot:
		for _, r := range g.robots {
			next = max(next, r.id+1)
		}
	case KindIntruder:
		for _, i := range g.intruders {
			next = max(next, i.id+1)
		}
	case KindMoneyBag:
		for _, b := range g.bags {
			next = max(next, b.id+1)
		}
	}
	return next
}

// Place registers e and puts it on the free cell at p
func (g *Grid) Place(e Entity, p Position) error {
	if err := g.checkPlaceable(); err != nil {
		return err
	}
	if e == nil {
		return ErrUnknownEntity
	}
	st := e.base()
	if st.onGrid || g.isRegistered(e) {
		return fmt.Errorf("place %s: already placed: %w", Describe(e), ErrOccupied)
	}
	if !st.live {
		return fmt.Errorf("place %s: entity is no longer live: %w", Describe(e), ErrInvalidState)
	}
	if g.hasID(e.Kind(), e.ID()) {
		return fmt.Errorf("place %s: duplicate id: %w", Describe(e), ErrOccupied)
	}
	c := g.cellRef(p)
	if c == nil {
		return fmt.Errorf("place %s at %s: %w", Describe(e), p, ErrOutOfBounds)
	}
	if !c.IsFree() {
		return fmt.Errorf("place %s at %s: %w", Describe(e), p, ErrOccupied)
	}

	switch v := e.(type) {
	case *Robot:
		c.Occupant = v
		g.robots = append(g.robots, v)
	case *Intruder:
		c.Occupant = v
		g.intruders = append(g.intruders, v)
		g.resultFrozen = false
	case *MoneyBag:
		for _, other := range g.bags {
			if other.origin == p {
				return fmt.Errorf("place %s at %s: origin of %s: %w", Describe(e), p, Describe(other), ErrOccupied)
			}
		}
		v.origin = p
		c.Bag = v
		g.bags = append(g.bags, v)
	}
	st.setPosition(p)

	g.logger.Debug().Str("entity", Describe(e)).Str("pos", p.String()).Msg("Entity placed")
	g.notify()
	return nil
}

func (g *Grid) hasID(kind Kind, id int) bool {
	switch kind {
	case KindRobot:
		for _, r := range g.robots {
			if r.id == id {
				return true
			}
		}
	case KindIntruder:
		for _, i := range g.intruders {
			if i.id == id {
				return true
			}
		}
	case KindMoneyBag:
		for _, b := range g.bags {
			if b.id == id {
				return true
			}
		}
	}
	return false
}

func (g *Grid) isRegistered(e Entity) bool {
	switch v := e.(type) {
	case *Robot:
		for _, r := range g.robots {
			if r == v {
				return true
			}
		}
	case *Intruder:
		for _, i := range g.intruders {
			if i == v {
				return true
			}
		}
	case *MoneyBag:
		for _, b := range g.bags {
			if b == v {
				return true
			}
		}
	}
	return false
}

// NeighborsOfKind returns the entities around p that match pred.
// The eight neighbors are scanned in row-major order (see Position.Neighbors);
// within a cell the occupant is checked before the bag.
func (g *Grid) NeighborsOfKind(p Position, pred func(Entity) bool) []Entity {
	var found []Entity
	for _, n := range p.Neighbors() {
		c := g.cellRef(n)
		if c == nil {
			continue
		}
		if c.Occupant != nil && pred(c.Occupant) {
			found = append(found, c.Occupant)
		}
		if c.Bag != nil && pred(c.Bag) {
			found = append(found, c.Bag)
		}
	}
	return found
}

// HasLiveRobotAdjacent reports whether any live robot touches p
func (g *Grid) HasLiveRobotAdjacent(p Position) bool {
	return len(g.NeighborsOfKind(p, IsLiveRobot)) > 0
}

// MoveEntity relocates a robot or intruder to dest. It enforces only occupancy:
// adjacency and faction rules belong to the movement validator.
// An intruder entering a cell with an unclaimed bag picks it up when it has
// room; the picked bag is returned. No captures are resolved here.
func (g *Grid) MoveEntity(e Entity, dest Position) (*MoneyBag, error) {
	if err := g.checkMutable(); err != nil {
		return nil, err
	}
	if err := g.checkMover(e); err != nil {
		return nil, err
	}
	dst := g.cellRef(dest)
	if dst == nil {
		return nil, fmt.Errorf("move %s to %s: %w", Describe(e), dest, ErrOutOfBounds)
	}
	if !dst.IsEnterable() {
		return nil, fmt.Errorf("move %s to %s: %w", Describe(e), dest, ErrOccupied)
	}

	st := e.base()
	src := g.cellRef(st.pos)
	src.Occupant = nil
	dst.Occupant = e
	st.setPosition(dest)

	var picked *MoneyBag
	if i, ok := e.(*Intruder); ok && dst.Bag != nil && i.CanCarry() {
		picked = dst.Bag
		dst.Bag = nil
		// CanCarry was checked above
		_ = i.take(picked)
	}

	ev := g.logger.Debug().Str("entity", Describe(e)).Str("to", dest.String())
	if picked != nil {
		ev = ev.Str("picked", Describe(picked))
	}
	ev.Msg("Entity moved")
	g.notify()
	return picked, nil
}

func (g *Grid) checkMover(e Entity) error {
	if e == nil {
		return ErrUnknownEntity
	}
	if e.Kind() == KindMoneyBag {
		return fmt.Errorf("%s cannot move: %w", Describe(e), ErrIllegalMove)
	}
	if !e.IsLive() {
		return ErrEntityNotLive
	}
	if !g.isRegistered(e) {
		return ErrUnknownEntity
	}
	if _, ok := e.Position(); !ok {
		return ErrNotOnGrid
	}
	return nil
}

// RemoveEntity takes a robot or intruder off the grid and out of the registry.
// A removed intruder releases every carried bag back to its origin.
func (g *Grid) RemoveEntity(e Entity) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if err := g.checkMover(e); err != nil {
		return err
	}
	g.detach(e, true)
	g.logger.Debug().Str("entity", Describe(e)).Msg("Entity removed")
	g.notify()
	return nil
}

// Capture removes intruder i on behalf of the adjacent robot r.
// The intruder's bags go back to their origins and the robot's capture count grows.
func (g *Grid) Capture(r *Robot, i *Intruder) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if err := g.checkMover(r); err != nil {
		return err
	}
	if err := g.checkMover(i); err != nil {
		return err
	}
	if !r.pos.IsAdjacentTo(i.pos) {
		return fmt.Errorf("capture %s by %s: %w", Describe(i), Describe(r), ErrNotAdjacent)
	}
	g.detach(i, true)
	r.captures++
	g.logger.Debug().Str("robot", Describe(r)).Str("intruder", Describe(i)).Msg("Intruder captured")
	g.notify()
	return nil
}

// Escape removes an intruder standing on an exit. Its bags stay carried and
// count as stolen.
func (g *Grid) Escape(i *Intruder) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if err := g.checkMover(i); err != nil {
		return err
	}
	if c := g.cellRef(i.pos); c == nil || !c.IsExit() {
		return fmt.Errorf("%s is not on an exit: %w", Describe(i), ErrIllegalMove)
	}
	i.escaped = true
	g.detach(i, false)
	g.logger.Debug().Str("intruder", Describe(i)).Int("bags", len(i.bags)).Msg("Intruder escaped")
	g.notify()
	return nil
}

// PickUp lets intruder i take bag b from its own cell or an adjacent one
func (g *Grid) PickUp(i *Intruder, b *MoneyBag) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if err := g.checkMover(i); err != nil {
		return err
	}
	if b == nil || !g.isRegistered(b) {
		return ErrUnknownEntity
	}
	if b.carried {
		return fmt.Errorf("%s is already carried: %w", Describe(b), ErrIllegalMove)
	}
	if b.pos != i.pos && !b.pos.IsAdjacentTo(i.pos) {
		return fmt.Errorf("pick up %s by %s: %w", Describe(b), Describe(i), ErrNotAdjacent)
	}
	if !i.CanCarry() {
		return ErrCapacityExceeded
	}
	c := g.cellRef(b.pos)
	if err := i.take(b); err != nil {
		return err
	}
	c.Bag = nil
	g.logger.Debug().Str("intruder", Describe(i)).Str("bag", Describe(b)).Msg("Bag picked up")
	g.notify()
	return nil
}

// detach clears e's cell, drops it from its registry and marks it not live.
// Releasing sends carried bags back to their origins.
func (g *Grid) detach(e Entity, release bool) {
	st := e.base()
	if c := g.cellRef(st.pos); c != nil && c.Occupant == e {
		c.Occupant = nil
	}
	st.clearPosition()
	st.live = false

	switch v := e.(type) {
	case *Robot:
		g.robots = removeFrom(g.robots, v)
	case *Intruder:
		if release {
			g.releaseBags(v)
		}
		g.intruders = removeFrom(g.intruders, v)
		if len(g.intruders) == 0 && !g.resultFrozen {
			g.result = g.judge()
			g.resultFrozen = true
			g.logger.Debug().Str("result", g.result.String()).Msg("Result frozen")
		}
	}
}

func (g *Grid) releaseBags(i *Intruder) {
	for _, b := range i.bags {
		b.returnToOrigin()
		if c := g.cellRef(b.origin); c != nil {
			c.Bag = b
		}
	}
	i.bags = i.bags[:0]
}

func removeFrom[T comparable](list []T, item T) []T {
	for idx, v := range list {
		if v == item {
			return append(list[:idx], list[idx+1:]...)
		}
	}
	return list
}

func (g *Grid) judge() Result {
	for _, b := range g.bags {
		if b.carried {
			return IntrudersWin
		}
	}
	return RobotsWin
}

// IsGameOver reports whether no live intruder remains
func (g *Grid) IsGameOver() bool {
	return len(g.intruders) == 0
}

// ResultSummary returns InProgress while intruders remain. Once the last one is
// gone the result is the one judged at that instant: IntrudersWin when at least
// one bag was carried, RobotsWin otherwise.
func (g *Grid) ResultSummary() Result {
	if !g.IsGameOver() {
		return InProgress
	}
	if g.resultFrozen {
		return g.result
	}
	return g.judge()
}

// CarriedBagCount returns how many bags are currently off the grid
func (g *Grid) CarriedBagCount() int {
	n := 0
	for _, b := range g.bags {
		if b.carried {
			n++
		}
	}
	return n
}

// String renders the grid: R robot, I intruder, $ bag, # obstacle, E exit, . empty
func (g *Grid) String() string {
	var sb strings.Builder

	sb.WriteString("   ")
	for c := 0; c < g.cols; c++ {
		sb.WriteString(fmt.Sprintf("%2d", c%100))
	}
	sb.WriteString("\n")

	for r := 0; r < g.rows; r++ {
		sb.WriteString(fmt.Sprintf("%2d ", r%100))
		for c := 0; c < g.cols; c++ {
			cell := &g.cells[Position{Row: r, Col: c}.ToIndex(g.cols)]
			symbol := "."
			switch {
			case cell.Occupant != nil && cell.Occupant.Kind() == KindRobot:
				symbol = "R"
			case cell.Occupant != nil:
				symbol = "I"
			case cell.Bag != nil:
				symbol = "$"
			case cell.IsObstacle():
				symbol = "#"
			case cell.IsExit():
				symbol = "E"
			}
			sb.WriteString(" " + symbol)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
