package services

import "errors"

// Failure taxonomy. Callers match with errors.Is; messages carry the detail.
var (
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrInsufficientTeams   = errors.New("insufficient teams")
	ErrStoreFailure        = errors.New("store failure")
	ErrValidation          = errors.New("validation failure")
	ErrGeneration          = errors.New("rule generation failure")
	ErrMatchNotFound       = errors.New("match not found")
	ErrPlayerNotFound      = errors.New("player not found")
)
