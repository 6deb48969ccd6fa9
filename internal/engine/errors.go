package engine

import "errors"

// Validation rejections leave the record untouched and are reported to the
// caller. ErrInvariant marks a transition that would corrupt the record and
// must never be persisted.
var (
	ErrWrongStatus      = errors.New("game is not in the required status")
	ErrRoomFull         = errors.New("room is full")
	ErrDuplicatePlayer  = errors.New("player already in the room")
	ErrNotAdmin         = errors.New("only the admin can do that")
	ErrNotEnoughPlayers = errors.New("at least 2 players required to start")
	ErrWrongTurn        = errors.New("not this player's turn")
	ErrJudgmentPending  = errors.New("a judgment is already pending")
	ErrStaleEvent       = errors.New("event is stale for the current state")
	ErrInvariant        = errors.New("game state invariant violated")
)
