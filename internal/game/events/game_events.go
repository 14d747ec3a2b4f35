package events

import (
	"time"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted      = "game.started"
	TypeGameEnded        = "game.ended"
	TypeTurnEnded        = "turn.ended"
	TypeMoveExecuted     = "move.executed"
	TypeBagPickedUp      = "bag.picked_up"
	TypeIntruderCaptured = "intruder.captured"
	TypeIntruderEscaped  = "intruder.escaped"
	TypeStateTransition  = "state.transition"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// GameStartedEvent is published when a game leaves setup
type GameStartedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	Rows      int
	Cols      int
	Robots    int
	Intruders int
	Bags      int
	FirstSide string
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, rows, cols, robots, intruders, bags int, first core.Side) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		Metadata:  EventMetadata{Side: first.String()},
		Rows:      rows,
		Cols:      cols,
		Robots:    robots,
		Intruders: intruders,
		Bags:      bags,
		FirstSide: first.String(),
	}
}

// GameEndedEvent is published once, when the last intruder leaves play
type GameEndedEvent struct {
	BaseEvent
	Metadata   EventMetadata
	Result     string
	Duration   time.Duration
	FinalTurn  int
	Captures   int
	Escapes    int
	BagsStolen int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, result core.Result, duration time.Duration, finalTurn, captures, escapes, bagsStolen int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent:  newBase(TypeGameEnded, gameID),
		Metadata:   EventMetadata{Turn: finalTurn},
		Result:     result.String(),
		Duration:   duration,
		FinalTurn:  finalTurn,
		Captures:   captures,
		Escapes:    escapes,
		BagsStolen: bagsStolen,
	}
}

// TurnEndedEvent is published each time the side-to-move flips
type TurnEndedEvent struct {
	BaseEvent
	Metadata   EventMetadata
	TurnNumber int
	Side       string
	NextSide   string
	Passed     bool
}

// NewTurnEndedEvent creates a new TurnEndedEvent
func NewTurnEndedEvent(gameID string, turn int, side, next core.Side, passed bool) *TurnEndedEvent {
	return &TurnEndedEvent{
		BaseEvent:  newBase(TypeTurnEnded, gameID),
		Metadata:   EventMetadata{Side: side.String(), Turn: turn},
		TurnNumber: turn,
		Side:       side.String(),
		NextSide:   next.String(),
		Passed:     passed,
	}
}

// MoveExecutedEvent is published when a robot or intruder completes a step
type MoveExecutedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Entity   string
	From     core.Position
	To       core.Position
}

// NewMoveExecutedEvent creates a new MoveExecutedEvent
func NewMoveExecutedEvent(gameID string, entity core.Entity, from, to core.Position, turn int) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent: newBase(TypeMoveExecuted, gameID),
		Metadata:  EventMetadata{Side: core.SideOf(entity).String(), Turn: turn},
		Entity:    core.Describe(entity),
		From:      from,
		To:        to,
	}
}

// BagPickedUpEvent is published when an intruder takes a money bag
type BagPickedUpEvent struct {
	BaseEvent
	Metadata   EventMetadata
	IntruderID int
	BagID      int
	At         core.Position
	Carried    int
}

// NewBagPickedUpEvent creates a new BagPickedUpEvent
func NewBagPickedUpEvent(gameID string, intruder *core.Intruder, bag *core.MoneyBag, at core.Position, turn int) *BagPickedUpEvent {
	return &BagPickedUpEvent{
		BaseEvent:  newBase(TypeBagPickedUp, gameID),
		Metadata:   EventMetadata{Side: core.SideIntruders.String(), Turn: turn},
		IntruderID: intruder.ID(),
		BagID:      bag.ID(),
		At:         at,
		Carried:    len(intruder.CarriedBags()),
	}
}

// IntruderCapturedEvent is published when a robot removes an adjacent intruder
type IntruderCapturedEvent struct {
	BaseEvent
	Metadata     EventMetadata
	RobotID      int
	IntruderID   int
	At           core.Position
	BagsReleased int
}

// NewIntruderCapturedEvent creates a new IntruderCapturedEvent
func NewIntruderCapturedEvent(gameID string, robotID, intruderID int, at core.Position, released, turn int) *IntruderCapturedEvent {
	return &IntruderCapturedEvent{
		BaseEvent:    newBase(TypeIntruderCaptured, gameID),
		Metadata:     EventMetadata{Side: core.SideRobots.String(), Turn: turn},
		RobotID:      robotID,
		IntruderID:   intruderID,
		At:           at,
		BagsReleased: released,
	}
}

// IntruderEscapedEvent is published when an intruder leaves through an exit
type IntruderEscapedEvent struct {
	BaseEvent
	Metadata    EventMetadata
	IntruderID  int
	Exit        core.Position
	BagsCarried int
}

// NewIntruderEscapedEvent creates a new IntruderEscapedEvent
func NewIntruderEscapedEvent(gameID string, intruderID int, exit core.Position, bags, turn int) *IntruderEscapedEvent {
	return &IntruderEscapedEvent{
		BaseEvent:   newBase(TypeIntruderEscaped, gameID),
		Metadata:    EventMetadata{Side: core.SideIntruders.String(), Turn: turn},
		IntruderID:  intruderID,
		Exit:        exit,
		BagsCarried: bags,
	}
}

// StateTransitionEvent is published when the game state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
