// Package archive is the durable write-behind store for match and move
// records. The live match never depends on it: failures are logged by the
// caller and play continues in memory.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/chess-arena/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveMatch upserts the match snapshot. Concluded matches additionally get
// a generated PGN transcript.
func (r *Repository) SaveMatch(ctx context.Context, m *domain.Match) error {
	if r == nil || r.db == nil || m == nil {
		return nil
	}

	pgn := ""
	if m.Phase == domain.PhaseConcluded {
		pgn = buildPGN(m)
	}
	movesUCIRaw, _ := json.Marshal(m.MovesUCI)
	movesSANRaw, _ := json.Marshal(m.MovesSAN)

	q := `INSERT INTO matches (
	    match_id, fen, phase, white_id, black_id,
	    mode, time_control, difficulty,
	    result, winner, moves_uci, moves_san, pgn,
	    created_at, updated_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
	  ) ON CONFLICT (match_id) DO UPDATE SET
	    fen=EXCLUDED.fen,
	    phase=EXCLUDED.phase,
	    white_id=EXCLUDED.white_id,
	    black_id=EXCLUDED.black_id,
	    mode=EXCLUDED.mode,
	    time_control=EXCLUDED.time_control,
	    difficulty=EXCLUDED.difficulty,
	    result=EXCLUDED.result,
	    winner=EXCLUDED.winner,
	    moves_uci=EXCLUDED.moves_uci,
	    moves_san=EXCLUDED.moves_san,
	    pgn=EXCLUDED.pgn,
	    updated_at=EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.FEN, string(m.Phase), m.WhiteID, m.BlackID,
		m.Mode, m.TimeControl, m.Difficulty,
		string(m.Result), string(m.Winner), string(movesUCIRaw), string(movesSANRaw), pgn,
		m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// SaveMove appends one move record. seq is the insertion order within the
// match, starting at 1.
func (r *Repository) SaveMove(ctx context.Context, matchID string, seq int, moverID, from, to, promotion string) error {
	if r == nil || r.db == nil {
		return nil
	}
	q := `INSERT INTO match_moves (match_id, seq, mover_id, move_from, move_to, promotion, played_at)
	  VALUES ($1,$2,$3,$4,$5,$6,$7)
	  ON CONFLICT (match_id, seq) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, matchID, seq, moverID, from, to, promotion, time.Now())
	return err
}

func mapResultToPGN(m *domain.Match) string {
	switch m.Result {
	case domain.ResultDraw:
		return "1/2-1/2"
	case "":
		return "*"
	}
	switch m.Winner {
	case domain.SideWhite:
		return "1-0"
	case domain.SideBlack:
		return "0-1"
	}
	return "*"
}

func buildPGN(m *domain.Match) string {
	if m == nil {
		return ""
	}
	pgnResult := mapResultToPGN(m)
	var b strings.Builder
	date := m.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"Arena\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(m.WhiteID)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(m.BlackID)))
	if strings.TrimSpace(m.TimeControl) != "" {
		b.WriteString(fmt.Sprintf("[TimeControl \"%s\"]\n", sanitizePGN(m.TimeControl)))
	}
	if m.Result != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(string(m.Result))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult))

	for i := 0; i < len(m.MovesSAN); i += 2 {
		turn := (i / 2) + 1
		b.WriteString(fmt.Sprintf("%d. %s", turn, strings.TrimSpace(m.MovesSAN[i])))
		if i+1 < len(m.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(m.MovesSAN[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
