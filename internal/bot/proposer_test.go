package bot

import (
	"context"
	"testing"

	"github.com/park285/chess-arena/internal/engine"
)

func TestProposeMoveIsLegal(t *testing.T) {
	p := NewLocalProposer()
	p.SetRandomSeed(42)
	fen := engine.NewGameFEN()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		mv, err := p.ProposeMove(ctx, fen, "level1")
		if err != nil {
			t.Fatalf("ProposeMove: %v", err)
		}
		if mv == nil {
			t.Fatalf("expected a move in the starting position")
		}
		if _, err := engine.ValidateAndApply(fen, mv.From, mv.To, mv.Promotion); err != nil {
			t.Fatalf("proposed move %s%s not legal: %v", mv.From, mv.To, err)
		}
	}
}

func TestProposeMoveTakesMateAtTopLevel(t *testing.T) {
	p := NewLocalProposer()
	p.SetRandomSeed(7)
	// Back-rank mate available: Ra8#.
	fen := "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"

	mv, err := p.ProposeMove(context.Background(), fen, "level8")
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if mv == nil {
		t.Fatalf("expected a move")
	}
	res, err := engine.ValidateAndApply(fen, mv.From, mv.To, mv.Promotion)
	if err != nil {
		t.Fatalf("proposed move illegal: %v", err)
	}
	if !res.IsCheckmate {
		t.Fatalf("level8 should deliver mate, proposed %s%s", mv.From, mv.To)
	}
}

func TestProposeMoveNoMovesReturnsNil(t *testing.T) {
	// Stalemate: black to move, no legal moves.
	fen := "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	p := NewLocalProposer()
	mv, err := p.ProposeMove(context.Background(), fen, "level3")
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if mv != nil {
		t.Fatalf("expected no move in stalemate, got %+v", mv)
	}
}

func TestDifficultyFactorBounds(t *testing.T) {
	if f := difficultyFactor("level1"); f != 0 {
		t.Fatalf("level1 factor = %v, want 0", f)
	}
	if f := difficultyFactor("level8"); f != 1 {
		t.Fatalf("level8 factor = %v, want 1", f)
	}
	if f := difficultyFactor("bogus"); f != difficultyFactor("level3") {
		t.Fatalf("unknown difficulty should fall back to level3")
	}
}
