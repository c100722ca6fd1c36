// Package bot produces moves for the automated opponent. The arbitrator
// consumes it as a black box: position in, move out.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/park285/chess-arena/internal/engine"
)

// Move is a proposed move in from/to/promotion form.
type Move struct {
	From      string
	To        string
	Promotion string
}

// Proposer generates a move for the side to play in the given position.
// A nil move with a nil error means the proposer has nothing to offer.
type Proposer interface {
	ProposeMove(ctx context.Context, fen, difficulty string) (*Move, error)
}

const (
	defaultDifficulty = "level3"
	mateScore         = 1000
	promoScore        = 12
	captureScore      = 8
	checkScore        = 6
)

// LocalProposer selects among legal moves with difficulty-weighted scoring.
// Low levels play close to uniformly random; high levels strongly prefer
// mates, promotions, captures and checks.
type LocalProposer struct {
	randMu sync.Mutex
	rand   *rand.Rand
}

func NewLocalProposer() *LocalProposer {
	return &LocalProposer{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *LocalProposer) SetRandomSeed(seed int64) {
	p.randMu.Lock()
	p.rand = rand.New(rand.NewSource(seed))
	p.randMu.Unlock()
}

func (p *LocalProposer) ProposeMove(_ context.Context, fen, difficulty string) (*Move, error) {
	cands, err := engine.LegalMoves(fen)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	factor := difficultyFactor(difficulty)
	weights := make([]int, len(cands))
	total := 0
	for i, c := range cands {
		w := 1 + int(float64(scoreSAN(c.SAN))*factor)
		weights[i] = w
		total += w
	}

	// A mating move is never passed over at the top level.
	if factor >= 1 {
		for _, c := range cands {
			if strings.Contains(c.SAN, "#") {
				return splitCandidate(c)
			}
		}
	}

	roll := p.roll(total)
	cumulative := 0
	chosen := cands[len(cands)-1]
	for i, c := range cands {
		cumulative += weights[i]
		if roll < cumulative {
			chosen = c
			break
		}
	}
	return splitCandidate(chosen)
}

func (p *LocalProposer) roll(total int) int {
	if total <= 0 {
		return 0
	}
	p.randMu.Lock()
	defer p.randMu.Unlock()
	return p.rand.Intn(total)
}

func splitCandidate(c engine.Candidate) (*Move, error) {
	from, to, promo, err := engine.SplitUCI(c.UCI)
	if err != nil {
		return nil, fmt.Errorf("proposer produced unusable move %q: %w", c.UCI, err)
	}
	return &Move{From: from, To: to, Promotion: promo}, nil
}

func scoreSAN(san string) int {
	score := 0
	if strings.Contains(san, "#") {
		score += mateScore
	}
	if strings.Contains(san, "=") {
		score += promoScore
	}
	if strings.Contains(san, "x") {
		score += captureScore
	}
	if strings.Contains(san, "+") {
		score += checkScore
	}
	return score
}

// difficultyFactor maps level1..level8 onto 0..1. Unknown names get the
// default level's factor.
func difficultyFactor(name string) float64 {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = defaultDifficulty
	}
	var n int
	if _, err := fmt.Sscanf(name, "level%d", &n); err != nil || n < 1 || n > 8 {
		n = 3
	}
	return float64(n-1) / 7
}
