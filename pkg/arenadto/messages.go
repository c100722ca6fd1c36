// Package arenadto defines the wire protocol spoken over the live channel.
// Every message carries a type discriminator; unused fields are omitted.
package arenadto

// Inbound command types.
const (
	TypeCreateGame    = "create_game"
	TypeJoinChallenge = "join_challenge"
	TypeMakeMove      = "make_move"
	TypeResign        = "resign"
	TypeResetGame     = "reset_game"
)

// Outbound notification types.
const (
	TypeIdentity             = "identity"
	TypeGameCreated          = "game_created"
	TypeChallengeCreated     = "challenge_created"
	TypeGameStarted          = "game_started"
	TypeMoveMade             = "move_made"
	TypeGameReset            = "game_reset"
	TypeGameOver             = "game_over"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeError                = "error"
)

// Command is one inbound message from a participant.
type Command struct {
	Type string `json:"type"`

	// create_game
	OpponentType   string `json:"opponentType,omitempty"`
	PreferredColor string `json:"preferredColor,omitempty"`
	Mode           string `json:"mode,omitempty"`
	TimeControl    string `json:"timeControl,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`

	// join_challenge
	Token string `json:"token,omitempty"`

	// make_move / resign / reset_game
	MatchID   string `json:"matchId,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

// Notification is one outbound message to a participant connection.
type Notification struct {
	Type     string `json:"type"`
	MatchID  string `json:"matchId,omitempty"`
	Identity string `json:"identity,omitempty"`

	Position string `json:"position,omitempty"`
	Side     string `json:"side,omitempty"`
	JoinLink string `json:"joinLink,omitempty"`

	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	SideToMove  string `json:"sideToMove,omitempty"`
	IsCheck     bool   `json:"isCheck,omitempty"`
	IsCheckmate bool   `json:"isCheckmate,omitempty"`
	IsDraw      bool   `json:"isDraw,omitempty"`

	Result  string `json:"result,omitempty"`
	Winner  string `json:"winner,omitempty"`
	Message string `json:"message,omitempty"`
}

// MatchSummary is one row of the awaiting-opponent listing endpoint.
type MatchSummary struct {
	MatchID     string `json:"matchId"`
	Mode        string `json:"mode"`
	TimeControl string `json:"timeControl,omitempty"`
	CreatedAt   string `json:"createdAt"`
}
