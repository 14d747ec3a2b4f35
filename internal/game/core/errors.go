package core

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds       = errors.New("position out of bounds")
	ErrOccupied          = errors.New("cell is not free")
	ErrIllegalMove       = errors.New("illegal move")
	ErrWrongSide         = errors.New("not this side's turn")
	ErrInvalidState      = errors.New("operation not allowed in current game state")
	ErrCapacityExceeded  = errors.New("intruder carrying capacity exceeded")
	ErrNotOnGrid         = errors.New("entity is not on the grid")
	ErrUnknownEntity     = errors.New("entity is not registered on this grid")
	ErrReentrantMutation = errors.New("grid mutation from inside a change listener")
	ErrNotAdjacent       = fmt.Errorf("%w: destination is not adjacent", ErrIllegalMove)
	ErrBlocked           = fmt.Errorf("%w: destination is blocked", ErrIllegalMove)
	ErrZoneOfControl     = fmt.Errorf("%w: destination is next to a robot", ErrIllegalMove)
	ErrEntityNotLive     = fmt.Errorf("%w: entity is no longer live", ErrIllegalMove)
)

// MoveError describes a rejected move for a specific entity
type MoveError struct {
	Entity string
	From   Position
	To     Position
	Err    error
}

// NewMoveError wraps err with the mover and the attempted destination.
// A nil err yields nil.
func NewMoveError(e Entity, to Position, err error) error {
	if err == nil {
		return nil
	}
	from, _ := e.Position()
	return &MoveError{Entity: Describe(e), From: from, To: to, Err: err}
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s: move from %s to %s: %v", e.Entity, e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
