package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/engine"
	"github.com/park285/chess-arena/internal/obslog"
)

const (
	engineReadyTimeout = 4 * time.Second
	engineMoveTimeMS   = 400
)

// EngineProposer drives an external UCI engine process. The session is
// restarted transparently on protocol or process failure; one search runs
// at a time.
type EngineProposer struct {
	binaryPath string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	lastLvl int // skill level applied to the running session
}

func NewEngineProposer(binaryPath string) *EngineProposer {
	return &EngineProposer{binaryPath: strings.TrimSpace(binaryPath), lastLvl: -1}
}

func (p *EngineProposer) ProposeMove(ctx context.Context, fen, difficulty string) (*Move, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	skill := skillLevel(difficulty)
	if err := p.ensureSession(ctx, skill); err != nil {
		return nil, err
	}

	best, err := p.search(ctx, fen)
	if err != nil {
		// one restart before giving up; engines do die mid-search
		p.teardown()
		if rerr := p.ensureSession(ctx, skill); rerr != nil {
			return nil, err
		}
		best, err = p.search(ctx, fen)
		if err != nil {
			p.teardown()
			return nil, err
		}
	}
	if best == "" || best == "(none)" || best == "0000" {
		return nil, nil
	}
	from, to, promo, err := engine.SplitUCI(best)
	if err != nil {
		return nil, fmt.Errorf("engine returned unparseable move %q: %w", best, err)
	}
	return &Move{From: from, To: to, Promotion: promo}, nil
}

func (p *EngineProposer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardown()
	return nil
}

func (p *EngineProposer) ensureSession(ctx context.Context, skill int) error {
	if p.cmd != nil {
		if skill != p.lastLvl {
			if err := p.send(fmt.Sprintf("setoption name Skill Level value %d\n", skill)); err == nil {
				p.lastLvl = skill
				return nil
			}
			p.teardown()
		} else {
			return nil
		}
	}

	cmd := exec.Command(p.binaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return fmt.Errorf("start engine: %w", err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = bufio.NewReader(stdoutPipe)

	initCtx, cancel := context.WithTimeout(ctx, engineReadyTimeout)
	defer cancel()

	if err := p.send("uci\n"); err != nil {
		p.teardown()
		return err
	}
	if err := p.awaitToken(initCtx, "uciok"); err != nil {
		p.teardown()
		return fmt.Errorf("wait uciok: %w", err)
	}
	opts := []string{
		"setoption name Threads value 1\n",
		"setoption name Hash value 64\n",
		fmt.Sprintf("setoption name Skill Level value %d\n", skill),
		"setoption name Move Overhead value 100\n",
	}
	for _, o := range opts {
		if err := p.send(o); err != nil {
			p.teardown()
			return fmt.Errorf("apply options: %w", err)
		}
	}
	if err := p.send("isready\n"); err != nil {
		p.teardown()
		return err
	}
	if err := p.awaitToken(initCtx, "readyok"); err != nil {
		p.teardown()
		return fmt.Errorf("wait readyok: %w", err)
	}
	p.lastLvl = skill
	obslog.L().Info("engine session started", zap.String("binary", p.binaryPath), zap.Int("skill", skill))
	return nil
}

func (p *EngineProposer) search(ctx context.Context, fen string) (string, error) {
	posCmd := "position startpos\n"
	if strings.TrimSpace(fen) != "" {
		posCmd = "position fen " + strings.TrimSpace(fen) + "\n"
	}
	if err := p.send(posCmd); err != nil {
		return "", fmt.Errorf("send position: %w", err)
	}
	if err := p.send(fmt.Sprintf("go movetime %d\n", engineMoveTimeMS)); err != nil {
		return "", fmt.Errorf("send go: %w", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, engineMoveTimeMS*time.Millisecond+engineReadyTimeout)
	defer cancel()

	for {
		line, err := p.readLine(searchCtx)
		if err != nil {
			return "", fmt.Errorf("read line: %w", err)
		}
		if strings.HasPrefix(line, "bestmove") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				return parts[1], nil
			}
			return "", nil
		}
	}
}

func (p *EngineProposer) teardown() {
	if p.stdin != nil {
		_ = p.stdin.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
	p.cmd = nil
	p.stdin = nil
	p.stdout = nil
	p.lastLvl = -1
}

func (p *EngineProposer) send(msg string) error {
	if p.stdin == nil {
		return fmt.Errorf("engine session not running")
	}
	_, err := io.WriteString(p.stdin, msg)
	return err
}

func (p *EngineProposer) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := p.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

func (p *EngineProposer) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

// skillLevel maps the participant-facing difficulty to the engine's 0-20
// skill knob.
func skillLevel(difficulty string) int {
	f := difficultyFactor(difficulty)
	lvl := int(f * 20)
	if lvl < 0 {
		lvl = 0
	}
	if lvl > 20 {
		lvl = 20
	}
	return lvl
}
