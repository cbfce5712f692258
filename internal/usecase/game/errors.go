package game

import (
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/pkg/errors"
)

var (
	errNotYourTurn      = errors.New("it is the engine's turn")
	errMalformedPayload = errors.New("malformed payload")
)

// isRejection reports whether err is a refused request that the client is
// told about while the game goes on.
func isRejection(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidMove,
		domain.ErrGameFinished,
		domain.ErrNoLegalMove,
		domain.ErrInvalidPlayer,
		domain.ErrUnexpectedMessage,
		errNotYourTurn,
		errMalformedPayload,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
