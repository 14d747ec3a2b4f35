package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
	"github.com/mitchelldurbincs/GridHeist/internal/game/events"
	"github.com/mitchelldurbincs/GridHeist/internal/game/rules"
	"github.com/mitchelldurbincs/GridHeist/internal/game/states"
)

// GameConfig holds the collaborators of a Manager
type GameConfig struct {
	// GameID defaults to a random UUID
	GameID string
	Logger zerolog.Logger
	// EventBus is created when nil
	EventBus *events.EventBus
	// FirstSide defaults to core.SideRobots
	FirstSide core.Side
}

// TurnState is the turn bookkeeping of one game
type TurnState struct {
	Side        core.Side
	TurnsPlayed int
	Captures    int
	Escapes     int
}

// Manager sequences the turns of one game over a grid. It performs no locking:
// callers serialize access, see session.Session.Do.
type Manager struct {
	grid         *core.Grid
	turn         TurnState
	stateMachine *states.StateMachine
	eventBus     *events.EventBus
	winCondition *rules.WinConditionChecker
	legalMoves   *rules.LegalMoveCalculator
	gameID       string
	logger       zerolog.Logger
	selected     core.Entity
}

// NewManager wraps grid in a game that is still being configured
func NewManager(grid *core.Grid, cfg GameConfig) (*Manager, error) {
	if grid == nil {
		return nil, fmt.Errorf("new manager: nil grid: %w", core.ErrInvalidState)
	}
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus()
	}
	switch cfg.FirstSide {
	case core.SideRobots, core.SideIntruders:
	case core.SideNone:
		cfg.FirstSide = core.SideRobots
	default:
		return nil, fmt.Errorf("new manager: unknown first side %d: %w", cfg.FirstSide, core.ErrInvalidState)
	}

	logger := cfg.Logger.With().Str("component", "GameManager").Str("game_id", cfg.GameID).Logger()
	gameContext := states.NewGameContext(cfg.GameID, cfg.Logger)

	return &Manager{
		grid:         grid,
		turn:         TurnState{Side: cfg.FirstSide},
		stateMachine: states.NewStateMachine(gameContext, cfg.EventBus),
		eventBus:     cfg.EventBus,
		winCondition: rules.NewWinConditionChecker(cfg.Logger),
		legalMoves:   rules.NewLegalMoveCalculator(),
		gameID:       cfg.GameID,
		logger:       logger,
	}, nil
}

func (m *Manager) GameID() string { return m.gameID }
func (m *Manager) Grid() *core.Grid { return m.grid }
func (m *Manager) EventBus() *events.EventBus { return m.eventBus }
func (m *Manager) Phase() states.GamePhase { return m.stateMachine.CurrentPhase() }
func (m *Manager) Turn() TurnState { return m.turn }
func (m *Manager) Result() core.Result { return m.grid.ResultSummary() }
func (m *Manager) History() []states.Transition { return m.stateMachine.GetHistory() }

// Elapsed returns the play time since Start, excluding pauses
func (m *Manager) Elapsed() time.Duration {
	return m.stateMachine.GetContext().GetElapsedTime()
}

// Start ends the placement phase. Both sides need at least one entity.
func (m *Manager) Start() error {
	if err := m.checkReentry("start"); err != nil {
		return err
	}
	if m.Phase() != states.PhaseConfiguring {
		return fmt.Errorf("start game in phase %s: %w", m.Phase(), core.ErrInvalidState)
	}
	robots, intruders := len(m.grid.Robots()), len(m.grid.Intruders())
	if robots == 0 || intruders == 0 {
		return fmt.Errorf("start game with %d robots and %d intruders: %w", robots, intruders, core.ErrInvalidState)
	}

	ctx := m.stateMachine.GetContext()
	ctx.Robots, ctx.Intruders = robots, intruders
	if err := m.stateMachine.TransitionTo(states.PhaseInProgress, "setup complete"); err != nil {
		return err
	}
	m.grid.Seal()

	m.eventBus.Publish(events.NewGameStartedEvent(m.gameID, m.grid.Rows(), m.grid.Cols(),
		robots, intruders, len(m.grid.MoneyBags()), m.turn.Side))
	m.logger.Info().
		Int("rows", m.grid.Rows()).
		Int("cols", m.grid.Cols()).
		Int("robots", robots).
		Int("intruders", intruders).
		Str("first_side", m.turn.Side.String()).
		Msg("Game started")
	m.notify()
	return nil
}

// Pause suspends move acceptance
func (m *Manager) Pause() error {
	return m.changePhase(states.PhasePaused, "pause requested")
}

// Resume restores move acceptance after Pause
func (m *Manager) Resume() error {
	return m.changePhase(states.PhaseInProgress, "resume requested")
}

func (m *Manager) changePhase(phase states.GamePhase, reason string) error {
	if err := m.checkReentry(reason); err != nil {
		return err
	}
	if err := m.stateMachine.TransitionTo(phase, reason); err != nil {
		return err
	}
	m.notify()
	return nil
}

// checkReentry rejects manager operations started from a grid listener
func (m *Manager) checkReentry(op string) error {
	if m.grid.IsNotifying() {
		return fmt.Errorf("%s from a change listener: %w", op, core.ErrReentrantMutation)
	}
	return nil
}

// notify tells the grid listeners that turn state changed
func (m *Manager) notify() {
	if err := m.grid.Notify(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to notify listeners")
	}
}

// PlayMove moves e one step to dest for the side-to-move. On success it
// resolves the capture caused by the mover, lets an intruder that reached an
// exit escape, and advances the turn. A rejected move changes nothing and the
// returned error names the kind of rejection.
func (m *Manager) PlayMove(e core.Entity, dest core.Position) (bool, error) {
	if err := m.checkReentry("move"); err != nil {
		return false, err
	}
	if e == nil {
		return false, core.ErrUnknownEntity
	}
	if err := m.checkMove(e, dest); err != nil {
		m.logger.Warn().Err(err).Msg("Move rejected")
		return false, err
	}

	from, _ := e.Position()
	picked, err := m.grid.MoveEntity(e, dest)
	if err != nil {
		return false, core.NewMoveError(e, dest, err)
	}
	m.eventBus.Publish(events.NewMoveExecutedEvent(m.gameID, e, from, dest, m.turn.TurnsPlayed+1))
	m.logger.Debug().
		Str("entity", core.Describe(e)).
		Str("from", from.String()).
		Str("to", dest.String()).
		Msg("Move executed")

	if picked != nil {
		m.publishPickup(picked, dest)
	}
	if c, ok := rules.FindCapture(m.grid, e); ok {
		m.capture(c.Robot, c.Intruder)
	}
	if i, ok := e.(*core.Intruder); ok && i.IsLive() {
		m.tryEscape(i)
	}

	m.advance(false)
	return true, nil
}

// PlayDirection moves e one step in direction d
func (m *Manager) PlayDirection(e core.Entity, d core.Direction) (bool, error) {
	if e == nil {
		return false, core.ErrUnknownEntity
	}
	from, ok := e.Position()
	if !ok {
		return false, core.NewMoveError(e, from, core.ErrNotOnGrid)
	}
	return m.PlayMove(e, from.Move(d))
}

func (m *Manager) checkMove(e core.Entity, dest core.Position) error {
	if phase := m.Phase(); !phase.CanReceiveMoves() {
		return core.NewMoveError(e, dest, fmt.Errorf("game is %s: %w", phase, core.ErrInvalidState))
	}
	if side := core.SideOf(e); side != m.turn.Side {
		return core.NewMoveError(e, dest, fmt.Errorf("%s to move: %w", m.turn.Side, core.ErrWrongSide))
	}
	return core.NewMoveError(e, dest, core.CheckMove(e, dest, m.grid))
}

// AutoTurn runs the automatic action of every live entity of the side-to-move,
// in placement order, then advances the turn. Entities do not move.
func (m *Manager) AutoTurn() ([]core.Outcome, error) {
	if err := m.checkReentry("auto turn"); err != nil {
		return nil, err
	}
	if phase := m.Phase(); !phase.CanReceiveMoves() {
		return nil, fmt.Errorf("auto turn while %s: %w", phase, core.ErrInvalidState)
	}

	var outcomes []core.Outcome
	for _, e := range rules.Movers(m.grid, m.turn.Side) {
		if !e.IsLive() {
			continue
		}
		pos, _ := e.Position()
		var (
			targetAt core.Position
			released int
		)
		if m.turn.Side == core.SideRobots {
			if targets := m.grid.NeighborsOfKind(pos, core.IsLiveIntruder); len(targets) > 0 {
				target := targets[0].(*core.Intruder)
				targetAt, _ = target.Position()
				released = len(target.CarriedBags())
			}
		}

		out := e.Act(m.grid)
		switch out.Kind {
		case core.OutcomeCaptured:
			m.turn.Captures++
			m.publishCapture(out.Actor.(*core.Robot), out.Target.(*core.Intruder), targetAt, released)
		case core.OutcomeEscaped:
			m.turn.Escapes++
			m.publishEscape(out.Actor.(*core.Intruder), pos)
		case core.OutcomePickedUp:
			m.publishPickup(out.Target.(*core.MoneyBag), pos)
		default:
			continue
		}
		outcomes = append(outcomes, out)
	}

	m.advance(false)
	return outcomes, nil
}

// Pass gives the turn away. It is only allowed when the side-to-move has no legal move.
func (m *Manager) Pass() error {
	if err := m.checkReentry("pass"); err != nil {
		return err
	}
	if phase := m.Phase(); !phase.CanReceiveMoves() {
		return fmt.Errorf("pass while %s: %w", phase, core.ErrInvalidState)
	}
	if m.HasLegalMove() {
		return fmt.Errorf("%s still have a legal move: %w", m.turn.Side, core.ErrIllegalMove)
	}
	m.logger.Info().Str("side", m.turn.Side.String()).Msg("Side passes")
	m.advance(true)
	return nil
}

// HasLegalMove reports whether the side-to-move can move at all
func (m *Manager) HasLegalMove() bool {
	return m.legalMoves.HasLegalMove(m.grid, m.turn.Side)
}

// LegalMoves lists every legal move of the side-to-move
func (m *Manager) LegalMoves() []rules.Move {
	return m.legalMoves.LegalMoves(m.grid, m.turn.Side)
}

// IsLegalMove reports whether e may step to dest, ignoring whose turn it is
func (m *Manager) IsLegalMove(e core.Entity, dest core.Position) bool {
	return core.IsLegalMove(e, dest, m.grid)
}

// ReachablePositions lists the legal destinations of e
func (m *Manager) ReachablePositions(e core.Entity) []core.Position {
	return core.ReachablePositions(e, m.grid)
}

// SelectEntity marks a live robot or intruder as selected, replacing any previous selection
func (m *Manager) SelectEntity(e core.Entity) error {
	if e == nil {
		return core.ErrUnknownEntity
	}
	if e.Kind() == core.KindMoneyBag {
		return fmt.Errorf("select %s: %w", core.Describe(e), core.ErrIllegalMove)
	}
	if !e.IsLive() {
		return fmt.Errorf("select %s: %w", core.Describe(e), core.ErrEntityNotLive)
	}
	if !m.isOnThisGrid(e) {
		return fmt.Errorf("select %s: %w", core.Describe(e), core.ErrUnknownEntity)
	}
	m.selected = e
	return nil
}

// DeselectEntity clears the selection
func (m *Manager) DeselectEntity() {
	m.selected = nil
}

// Selected returns the selected entity while it is still live
func (m *Manager) Selected() (core.Entity, bool) {
	if m.selected == nil || !m.selected.IsLive() {
		return nil, false
	}
	return m.selected, true
}

func (m *Manager) isOnThisGrid(e core.Entity) bool {
	pos, ok := e.Position()
	if !ok {
		return false
	}
	c, err := m.grid.CellAt(pos)
	return err == nil && c.Occupant == e
}

func (m *Manager) capture(r *core.Robot, i *core.Intruder) {
	at, _ := i.Position()
	released := len(i.CarriedBags())
	if err := m.grid.Capture(r, i); err != nil {
		m.logger.Error().Err(err).Msg("Capture failed")
		return
	}
	m.turn.Captures++
	m.publishCapture(r, i, at, released)
}

func (m *Manager) tryEscape(i *core.Intruder) {
	pos, _ := i.Position()
	c, err := m.grid.CellAt(pos)
	if err != nil || !c.IsExit() {
		return
	}
	if err := m.grid.Escape(i); err != nil {
		m.logger.Error().Err(err).Msg("Escape failed")
		return
	}
	m.turn.Escapes++
	m.publishEscape(i, pos)
}

func (m *Manager) publishCapture(r *core.Robot, i *core.Intruder, at core.Position, released int) {
	m.eventBus.Publish(events.NewIntruderCapturedEvent(m.gameID, r.ID(), i.ID(), at, released, m.turn.TurnsPlayed+1))
	m.logger.Info().
		Str("robot", core.Describe(r)).
		Str("intruder", core.Describe(i)).
		Int("bags_released", released).
		Msg("Intruder captured")
}

func (m *Manager) publishEscape(i *core.Intruder, exit core.Position) {
	bags := len(i.CarriedBags())
	m.eventBus.Publish(events.NewIntruderEscapedEvent(m.gameID, i.ID(), exit, bags, m.turn.TurnsPlayed+1))
	m.logger.Info().
		Str("intruder", core.Describe(i)).
		Str("exit", exit.String()).
		Int("bags", bags).
		Msg("Intruder escaped")
}

// publishPickup reports a bag taken at at by its carrier
func (m *Manager) publishPickup(b *core.MoneyBag, at core.Position) {
	id, _ := b.CarrierID()
	i, ok := m.grid.IntruderByID(id)
	if !ok {
		m.logger.Error().Str("bag", core.Describe(b)).Msg("Picked up bag has no live carrier")
		return
	}
	m.eventBus.Publish(events.NewBagPickedUpEvent(m.gameID, i, b, at, m.turn.TurnsPlayed+1))
	m.logger.Debug().
		Str("intruder", core.Describe(i)).
		Str("bag", core.Describe(b)).
		Msg("Bag picked up")
}

// advance counts the turn, then finishes the game or hands the move to the
// other side. Listeners are notified once the new turn state is in place.
func (m *Manager) advance(passed bool) {
	defer m.notify()

	m.turn.TurnsPlayed++
	m.stateMachine.GetContext().TurnsPlayed = m.turn.TurnsPlayed
	side := m.turn.Side

	if over, result := m.winCondition.CheckGameOver(m.grid); over {
		m.eventBus.Publish(events.NewTurnEndedEvent(m.gameID, m.turn.TurnsPlayed, side, core.SideNone, passed))
		m.finish(result)
		return
	}

	m.turn.Side = side.Opponent()
	m.eventBus.Publish(events.NewTurnEndedEvent(m.gameID, m.turn.TurnsPlayed, side, m.turn.Side, passed))
}

func (m *Manager) finish(result core.Result) {
	ctx := m.stateMachine.GetContext()
	ctx.Result = result.String()
	ctx.Robots, ctx.Intruders = len(m.grid.Robots()), 0

	if err := m.stateMachine.TransitionTo(states.PhaseFinished, "no live intruder left"); err != nil {
		m.logger.Error().Err(err).Msg("Failed to finish game")
		return
	}

	m.eventBus.Publish(events.NewGameEndedEvent(m.gameID, result, ctx.GetElapsedTime(),
		m.turn.TurnsPlayed, m.turn.Captures, m.turn.Escapes, m.grid.CarriedBagCount()))
	m.logger.Info().
		Str("result", result.String()).
		Int("turns", m.turn.TurnsPlayed).
		Int("captures", m.turn.Captures).
		Int("escapes", m.turn.Escapes).
		Msg("Game finished")
}
