// Package arena is the match lifecycle and move-arbitration core: it owns
// the live match store and matchmaking queue, validates and applies moves,
// and fans out state changes to registered connections.
package arena

import "github.com/park285/chess-arena/internal/domain"

type staticErr string

func (e staticErr) Error() string { return string(e) }

// Participant-facing failures. The message catalog maps each error to the
// text carried by the error notification; the protocol does not distinguish
// categories beyond the message.
const (
	ErrBadRequest            = staticErr("bad_request")
	ErrGameNotFound          = staticErr("game_not_found")
	ErrNotYourTurn           = staticErr("not_your_turn")
	ErrInvalidMove           = staticErr("invalid_move")
	ErrChallengeNotFound     = staticErr("challenge_not_found")
	ErrSelfJoin              = staticErr("self_join")
	ErrChallengesUnavailable = staticErr("challenges_unavailable")
)

// MessageKey returns the catalog key for a participant-facing error.
func MessageKey(err error) string {
	switch err {
	case ErrBadRequest:
		return "error.bad_request"
	case ErrGameNotFound:
		return "error.game_not_found"
	case ErrNotYourTurn:
		return "error.not_your_turn"
	case ErrInvalidMove:
		return "error.invalid_move"
	case ErrChallengeNotFound:
		return "error.challenge_not_found"
	case ErrSelfJoin:
		return "error.self_join"
	case ErrChallengesUnavailable:
		return "error.challenges_unavailable"
	default:
		return "error.bad_request"
	}
}

// CreateRequest carries the validated fields of a create_game command.
type CreateRequest struct {
	OpponentKind   domain.OpponentKind
	PreferredColor string // "white", "black" or "random"; bot matches only
	Mode           string
	TimeControl    string
	Difficulty     string // bot matches only
}
