// Package engine wraps the chess rules library behind the narrow contract
// the arbitrator consumes: move legality, resulting position, and terminal
// status. Positions travel as FEN strings and are only ever produced here.
package engine

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chess-arena/internal/domain"
)

type staticErr string

func (e staticErr) Error() string { return string(e) }

// ErrIllegalMove reports a move the rules reject in the given position.
const ErrIllegalMove = staticErr("illegal move")

// MoveResult describes one successfully applied move.
type MoveResult struct {
	FEN         string
	UCI         string
	SAN         string
	IsCheck     bool
	IsCheckmate bool
	IsDraw      bool
	Winner      domain.Side // set only when IsCheckmate
}

// Candidate is one legal move in a position, annotated for move selection.
type Candidate struct {
	UCI string
	SAN string
}

// NewGameFEN returns the standard starting position.
func NewGameFEN() string {
	return nchess.NewGame().FEN()
}

// SideToMove derives the side to move from the position. Callers must not
// cache the result; the position is the single source of truth.
func SideToMove(fen string) (domain.Side, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return "", err
	}
	if game.Position().Turn() == nchess.White {
		return domain.SideWhite, nil
	}
	return domain.SideBlack, nil
}

// ValidateAndApply checks the candidate move against the position and, when
// legal, returns the resulting position with derived status flags. The input
// position is never mutated; on ErrIllegalMove nothing was applied.
func ValidateAndApply(fen, from, to, promotion string) (*MoveResult, error) {
	uci := moveUCI(from, to, promotion)
	if uci == "" {
		return nil, ErrIllegalMove
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	pos := game.Position()

	mv, derr := nchess.UCINotation{}.Decode(pos, uci)
	if derr != nil {
		return nil, ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := game.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
		return nil, ErrIllegalMove
	}

	res := &MoveResult{
		FEN:     game.FEN(),
		UCI:     uci,
		SAN:     san,
		IsCheck: strings.Contains(san, "+") || strings.Contains(san, "#"),
	}
	switch game.Outcome() {
	case nchess.WhiteWon:
		res.IsCheckmate = true
		res.Winner = domain.SideWhite
	case nchess.BlackWon:
		res.IsCheckmate = true
		res.Winner = domain.SideBlack
	case nchess.Draw:
		res.IsDraw = true
	}
	return res, nil
}

// LegalMoves enumerates the legal moves in the position with their SAN
// annotations. Used by the automated opponent for candidate selection.
func LegalMoves(fen string) ([]Candidate, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	pos := game.Position()
	valid := game.ValidMoves()
	out := make([]Candidate, 0, len(valid))
	for i := range valid {
		mv := valid[i]
		out = append(out, Candidate{
			UCI: mv.String(),
			SAN: nchess.AlgebraicNotation{}.Encode(pos, &mv),
		})
	}
	return out, nil
}

// SplitUCI breaks a UCI move string into from/to/promotion parts.
func SplitUCI(uci string) (from, to, promotion string, err error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) < 4 || len(uci) > 5 {
		return "", "", "", fmt.Errorf("malformed uci move %q", uci)
	}
	return uci[:2], uci[2:4], uci[4:], nil
}

func moveUCI(from, to, promotion string) string {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	promotion = strings.ToLower(strings.TrimSpace(promotion))
	if len(from) != 2 || len(to) != 2 {
		return ""
	}
	if promotion != "" {
		// accept both "q" and "queen" spellings
		promotion = promotion[:1]
	}
	return from + to + promotion
}

func gameFromFEN(fen string) (*nchess.Game, error) {
	if strings.TrimSpace(fen) == "" {
		return nchess.NewGame(), nil
	}
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return nchess.NewGame(option), nil
}
