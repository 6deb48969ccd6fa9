package service

import (
	"errors"

	"questionsbattle/internal/engine"
)

// ErrorCode maps an error to a short stable code for transport replies
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "not_found"
	case errors.Is(err, ErrRoomExists):
		return "room_exists"
	case errors.Is(err, engine.ErrRoomFull):
		return "room_full"
	case errors.Is(err, engine.ErrDuplicatePlayer):
		return "duplicate_player"
	case errors.Is(err, engine.ErrWrongStatus):
		return "wrong_status"
	case errors.Is(err, engine.ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, engine.ErrWrongTurn):
		return "wrong_turn"
	case errors.Is(err, engine.ErrJudgmentPending):
		return "judgment_pending"
	case errors.Is(err, engine.ErrStaleEvent):
		return "stale_event"
	default:
		return "internal"
	}
}
