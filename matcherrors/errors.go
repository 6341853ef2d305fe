package matcherrors

import "errors"

// Game sentinel errors. Used by both game and ws packages
// to avoid circular imports.
var (
	ErrInvalidPlayers   = errors.New("players must be 1 or 2")
	ErrInvalidCardCount = errors.New("card count must be positive")
	ErrNameTooLong      = errors.New("player name too long")
	ErrEngineClosed     = errors.New("engine closed")
	ErrNoGame           = errors.New("no game has been set up")
)
