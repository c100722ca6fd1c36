package domain

import (
	"strings"
	"time"
)

// BotIdentity is the sentinel participant identity for the automated
// opponent. It never corresponds to a live connection.
const BotIdentity = "#bot"

// Side identifies one of the two roles in a match. White moves first.
type Side string

const (
	SideWhite Side = "white"
	SideBlack Side = "black"
)

func (s Side) Opponent() Side {
	if s == SideWhite {
		return SideBlack
	}
	return SideWhite
}

// Phase is the lifecycle state of a match.
type Phase string

const (
	PhaseAwaitingOpponent Phase = "awaiting_opponent"
	PhaseInProgress       Phase = "in_progress"
	PhaseConcluded        Phase = "concluded"
)

// Result classifies how a concluded match ended.
type Result string

const (
	ResultCheckmate   Result = "checkmate"
	ResultDraw        Result = "draw"
	ResultResignation Result = "resignation"
	ResultAbandonment Result = "abandonment"
)

// OpponentKind selects the pairing mode at match creation.
type OpponentKind string

const (
	OpponentBot           OpponentKind = "automated"
	OpponentOpenQueue     OpponentKind = "openQueue"
	OpponentChallengeLink OpponentKind = "challengeLink"
)

// Match is the live state of one game. The FEN is mutated only with
// values produced by the position engine, never hand-constructed.
type Match struct {
	ID          string    `json:"id"`
	FEN         string    `json:"fen"`
	MovesUCI    []string  `json:"moves_uci"`
	MovesSAN    []string  `json:"moves_san"`
	Phase       Phase     `json:"phase"`
	Mode        string    `json:"mode"`
	TimeControl string    `json:"time_control"`
	Difficulty  string    `json:"difficulty"`
	WhiteID     string    `json:"white_id"`
	BlackID     string    `json:"black_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Result      Result    `json:"result,omitempty"`
	Winner      Side      `json:"winner,omitempty"`
}

// SideOf returns the side bound to identity, or "" if identity is not a
// participant.
func (m *Match) SideOf(identity string) Side {
	switch strings.TrimSpace(identity) {
	case "":
		return ""
	case m.WhiteID:
		return SideWhite
	case m.BlackID:
		return SideBlack
	}
	return ""
}

// IdentityOf returns the participant identity bound to side.
func (m *Match) IdentityOf(side Side) string {
	if side == SideWhite {
		return m.WhiteID
	}
	return m.BlackID
}

// VacantSide returns the unassigned side of an awaiting-opponent match.
func (m *Match) VacantSide() Side {
	if m.WhiteID == "" {
		return SideWhite
	}
	return SideBlack
}

// HasBot reports whether the automated-opponent sentinel holds a side.
func (m *Match) HasBot() bool {
	return m.WhiteID == BotIdentity || m.BlackID == BotIdentity
}

// PendingChallenge is a match-to-be awaiting a specific second participant
// via a shareable token. The token doubles as its identifier.
type PendingChallenge struct {
	Token       string    `json:"token"`
	CreatorID   string    `json:"creator_id"`
	Mode        string    `json:"mode"`
	TimeControl string    `json:"time_control"`
	CreatedAt   time.Time `json:"created_at"`
}
