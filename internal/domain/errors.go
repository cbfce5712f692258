package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrNoLegalMove       = errors.New("no legal move left")
	ErrGameFinished      = errors.New("game is already finished")
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnexpectedMessage = errors.New("unexpected message type")
	ErrInvalidPlayer     = errors.New("invalid player")
)
