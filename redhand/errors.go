package redhand

import "errors"

var (
	ErrInvalidPhase     = errors.New("operation not allowed in current phase")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrInvalidName      = errors.New("invalid player name")
	ErrPlayerNotFound   = errors.New("player not found")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
