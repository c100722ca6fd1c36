package arena

import (
	"context"
	cryptorand "crypto/rand"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/archive"
	"github.com/park285/chess-arena/internal/bot"
	"github.com/park285/chess-arena/internal/domain"
	"github.com/park285/chess-arena/internal/engine"
	"github.com/park285/chess-arena/internal/msgcat"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/registry"
	"github.com/park285/chess-arena/internal/webhook"
	"github.com/park285/chess-arena/pkg/arenadto"
)

const botMoveTimeout = 10 * time.Second

// pendingMeta mirrors a live challenge token in memory so the sweep and
// the disconnect path can act on tokens without a Redis round trip.
type pendingMeta struct {
	creatorID string
	deadline  time.Time
}

// Deps bundles everything the manager needs. Challenges, Archive and
// Webhook may be nil; the corresponding features degrade gracefully.
type Deps struct {
	Registry   *registry.Registry
	Proposer   bot.Proposer
	Challenges *ChallengeStore
	Archive    *archive.Repository
	Webhook    *webhook.Client
	Catalog    *msgcat.Catalog

	QueueTTL     time.Duration
	ChallengeTTL time.Duration
	SweepEvery   time.Duration

	PublicBaseURL      string
	DefaultDifficulty  string
	DefaultTimeControl string
}

// Manager is the single arbitration point for all match state. Every
// lifecycle transition and every move runs under one mutex, which is what
// makes turn order and pairing races impossible by construction.
type Manager struct {
	mu      sync.Mutex
	store   *matchStore
	queue   *openQueue
	pending map[string]pendingMeta // token -> creator + deadline

	reg        *registry.Registry
	proposer   bot.Proposer
	challenges *ChallengeStore
	archive    *archive.Repository
	webhook    *webhook.Client
	cat        *msgcat.Catalog

	queueTTL     time.Duration
	challengeTTL time.Duration
	sweepEvery   time.Duration

	publicBaseURL      string
	defaultDifficulty  string
	defaultTimeControl string

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewManager(deps Deps) *Manager {
	m := &Manager{
		store:              newMatchStore(),
		queue:              newOpenQueue(),
		pending:            make(map[string]pendingMeta),
		reg:                deps.Registry,
		proposer:           deps.Proposer,
		challenges:         deps.Challenges,
		archive:            deps.Archive,
		webhook:            deps.Webhook,
		cat:                deps.Catalog,
		queueTTL:           deps.QueueTTL,
		challengeTTL:       deps.ChallengeTTL,
		sweepEvery:         deps.SweepEvery,
		publicBaseURL:      deps.PublicBaseURL,
		defaultDifficulty:  deps.DefaultDifficulty,
		defaultTimeControl: deps.DefaultTimeControl,
		rand:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if m.queueTTL <= 0 {
		m.queueTTL = 5 * time.Minute
	}
	if m.challengeTTL <= 0 {
		m.challengeTTL = time.Hour
	}
	if m.sweepEvery <= 0 {
		m.sweepEvery = time.Minute
	}
	if m.defaultDifficulty == "" {
		m.defaultDifficulty = "level3"
	}
	if m.defaultTimeControl == "" {
		m.defaultTimeControl = "none"
	}
	if m.reg != nil {
		m.reg.SetUnreachableHandler(m.Disconnect)
	}
	return m
}

// Run drives the periodic sweep until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.sweepOnce(now)
		}
	}
}

// CreateMatch handles a create_game command. Depending on the opponent
// kind it either starts a bot match immediately, pairs or enqueues on the
// open queue, or mints a challenge link.
func (m *Manager) CreateMatch(ctx context.Context, identity string, req CreateRequest) error {
	if identity == "" || identity == domain.BotIdentity {
		return ErrBadRequest
	}
	mode := req.Mode
	if mode == "" {
		mode = "standard"
	}
	timeControl := req.TimeControl
	if timeControl == "" {
		timeControl = m.defaultTimeControl
	}

	switch req.OpponentKind {
	case domain.OpponentBot:
		return m.createBotMatch(identity, req, mode, timeControl)
	case domain.OpponentOpenQueue:
		return m.createOrPairQueueMatch(identity, mode, timeControl)
	case domain.OpponentChallengeLink:
		return m.createChallenge(ctx, identity, mode, timeControl)
	default:
		return ErrBadRequest
	}
}

func (m *Manager) createBotMatch(identity string, req CreateRequest, mode, timeControl string) error {
	// requester defaults to the first-moving side
	side := domain.SideWhite
	switch req.PreferredColor {
	case "", "white":
	case "black":
		side = domain.SideBlack
	case "random":
		side = m.randomSide()
	default:
		return ErrBadRequest
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = m.defaultDifficulty
	}

	now := time.Now()
	match := &domain.Match{
		ID:          uuid.NewString(),
		FEN:         engine.NewGameFEN(),
		Phase:       domain.PhaseInProgress,
		Mode:        mode,
		TimeControl: timeControl,
		Difficulty:  difficulty,
		WhiteID:     identity,
		BlackID:     domain.BotIdentity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if side == domain.SideBlack {
		match.WhiteID, match.BlackID = domain.BotIdentity, identity
	}

	m.mu.Lock()
	m.store.put(match)
	m.mu.Unlock()

	m.notifyIdentity(identity, arenadto.Notification{
		Type:       arenadto.TypeGameStarted,
		MatchID:    match.ID,
		Position:   match.FEN,
		Side:       string(side),
		SideToMove: string(domain.SideWhite),
	})
	m.persistMatchAsync(match)

	if side == domain.SideBlack {
		go m.botTurn(match.ID, match.FEN, difficulty)
	}
	return nil
}

func (m *Manager) createOrPairQueueMatch(identity, mode, timeControl string) error {
	m.mu.Lock()
	if found := m.queue.findCompatible(mode, identity); found != nil {
		m.queue.remove(found.ID)
		joinerSide := found.VacantSide()
		if joinerSide == domain.SideWhite {
			found.WhiteID = identity
		} else {
			found.BlackID = identity
		}
		found.Phase = domain.PhaseInProgress
		found.UpdatedAt = time.Now()
		snapshot := *found
		m.mu.Unlock()

		m.announceStart(&snapshot)
		m.persistMatchAsync(&snapshot)
		return nil
	}

	now := time.Now()
	side := m.randomSide()
	match := &domain.Match{
		ID:          uuid.NewString(),
		FEN:         engine.NewGameFEN(),
		Phase:       domain.PhaseAwaitingOpponent,
		Mode:        mode,
		TimeControl: timeControl,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if side == domain.SideWhite {
		match.WhiteID = identity
	} else {
		match.BlackID = identity
	}
	m.store.put(match)
	m.queue.enqueue(match)
	m.mu.Unlock()

	m.notifyIdentity(identity, arenadto.Notification{
		Type:     arenadto.TypeGameCreated,
		MatchID:  match.ID,
		Position: match.FEN,
		Side:     string(side),
		Message:  m.text("notice.waiting_for_opponent", nil),
	})
	return nil
}

func (m *Manager) createChallenge(ctx context.Context, identity, mode, timeControl string) error {
	if m.challenges == nil {
		return ErrChallengesUnavailable
	}
	ch, err := m.challenges.Create(ctx, identity, mode, timeControl)
	if err != nil {
		obslog.L().Warn("challenge create failed", zap.Error(err))
		return ErrChallengesUnavailable
	}

	m.mu.Lock()
	m.pending[ch.Token] = pendingMeta{creatorID: identity, deadline: ch.CreatedAt.Add(m.challengeTTL)}
	m.mu.Unlock()

	m.notifyIdentity(identity, arenadto.Notification{
		Type:     arenadto.TypeChallengeCreated,
		JoinLink: m.joinLink(ch.Token),
	})
	return nil
}

func (m *Manager) joinLink(token string) string {
	if m.publicBaseURL == "" {
		return token
	}
	return m.publicBaseURL + "/join/" + token
}

// JoinChallenge consumes a challenge token and starts the match between
// the token's creator and the claimant.
func (m *Manager) JoinChallenge(ctx context.Context, identity, token string) error {
	if identity == "" || identity == domain.BotIdentity {
		return ErrBadRequest
	}
	if m.challenges == nil {
		return ErrChallengesUnavailable
	}
	ch, err := m.challenges.Claim(ctx, token, identity)
	if err != nil {
		return err
	}

	now := time.Now()
	creatorSide := m.randomSide()
	match := &domain.Match{
		ID:          uuid.NewString(),
		FEN:         engine.NewGameFEN(),
		Phase:       domain.PhaseInProgress,
		Mode:        ch.Mode,
		TimeControl: ch.TimeControl,
		WhiteID:     ch.CreatorID,
		BlackID:     identity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if creatorSide == domain.SideBlack {
		match.WhiteID, match.BlackID = identity, ch.CreatorID
	}

	m.mu.Lock()
	delete(m.pending, ch.Token)
	m.store.put(match)
	snapshot := *match
	m.mu.Unlock()

	m.announceStart(&snapshot)
	m.persistMatchAsync(&snapshot)
	return nil
}

// MakeMove validates and applies one move for identity. The caller side
// and turn are checked before the move touches the position.
func (m *Manager) MakeMove(ctx context.Context, identity, matchID, from, to, promotion string) error {
	m.mu.Lock()
	match := m.store.get(matchID)
	if match == nil {
		m.mu.Unlock()
		return ErrGameNotFound
	}
	side := match.SideOf(identity)
	if side == "" {
		m.mu.Unlock()
		return ErrGameNotFound
	}
	if match.Phase != domain.PhaseInProgress {
		m.mu.Unlock()
		return ErrNotYourTurn
	}
	turn, err := engine.SideToMove(match.FEN)
	if err != nil {
		m.mu.Unlock()
		obslog.L().Error("stored position unreadable", zap.String("match_id", matchID), zap.Error(err))
		return ErrBadRequest
	}
	if turn != side {
		m.mu.Unlock()
		return ErrNotYourTurn
	}
	err = m.applyMoveLocked(match, identity, from, to, promotion)
	m.mu.Unlock()
	return err
}

// applyMoveLocked applies a turn-checked move, fans out the result and
// schedules the bot reply or the conclusion. Caller holds m.mu.
func (m *Manager) applyMoveLocked(match *domain.Match, moverID, from, to, promotion string) error {
	res, err := engine.ValidateAndApply(match.FEN, from, to, promotion)
	if err != nil {
		if err == engine.ErrIllegalMove {
			return ErrInvalidMove
		}
		return ErrBadRequest
	}

	match.FEN = res.FEN
	match.MovesUCI = append(match.MovesUCI, res.UCI)
	match.MovesSAN = append(match.MovesSAN, res.SAN)
	match.UpdatedAt = time.Now()
	seq := len(match.MovesUCI)

	next, _ := engine.SideToMove(match.FEN)
	note := arenadto.Notification{
		Type:        arenadto.TypeMoveMade,
		MatchID:     match.ID,
		From:        from,
		To:          to,
		Position:    match.FEN,
		SideToMove:  string(next),
		IsCheck:     res.IsCheck,
		IsCheckmate: res.IsCheckmate,
		IsDraw:      res.IsDraw,
	}
	m.notifyIdentity(match.WhiteID, note)
	m.notifyIdentity(match.BlackID, note)
	m.persistMoveAsync(match.ID, seq, moverID, from, to, promotion)

	switch {
	case res.IsCheckmate:
		m.concludeLocked(match, domain.ResultCheckmate, res.Winner)
	case res.IsDraw:
		m.concludeLocked(match, domain.ResultDraw, "")
	default:
		m.persistMatchAsync(match)
		if match.IdentityOf(next) == domain.BotIdentity {
			go m.botTurn(match.ID, match.FEN, match.Difficulty)
		}
	}
	return nil
}

// botTurn produces and plays the automated opponent's reply. It runs off
// the arbitration lock; the position is re-checked before applying because
// a reset or conclusion may have raced the proposal.
func (m *Manager) botTurn(matchID, fen, difficulty string) {
	ctx, cancel := context.WithTimeout(context.Background(), botMoveTimeout)
	mv, err := m.proposer.ProposeMove(ctx, fen, difficulty)
	cancel()
	if err != nil || mv == nil {
		if err != nil {
			obslog.L().Warn("bot proposal failed, falling back to random legal move",
				zap.String("match_id", matchID), zap.Error(err))
		}
		mv = m.randomLegalMove(fen)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	match := m.store.get(matchID)
	if match == nil || match.Phase != domain.PhaseInProgress {
		return
	}
	if match.FEN != fen {
		// position changed under us (reset); replay against the new state
		turn, err := engine.SideToMove(match.FEN)
		if err == nil && match.IdentityOf(turn) == domain.BotIdentity {
			go m.botTurn(match.ID, match.FEN, match.Difficulty)
		}
		return
	}
	if mv == nil {
		// nothing playable at all: the bot forfeits
		botSide := match.SideOf(domain.BotIdentity)
		m.concludeLocked(match, domain.ResultAbandonment, botSide.Opponent())
		return
	}
	if err := m.applyMoveLocked(match, domain.BotIdentity, mv.From, mv.To, mv.Promotion); err != nil {
		// illegal proposals get one shot at a random legal move before
		// the bot forfeits
		obslog.L().Warn("bot move rejected, falling back to random legal move",
			zap.String("match_id", matchID),
			zap.String("from", mv.From), zap.String("to", mv.To), zap.Error(err))
		if fallback := m.randomLegalMove(match.FEN); fallback != nil {
			if err := m.applyMoveLocked(match, domain.BotIdentity, fallback.From, fallback.To, fallback.Promotion); err == nil {
				return
			}
		}
		botSide := match.SideOf(domain.BotIdentity)
		m.concludeLocked(match, domain.ResultAbandonment, botSide.Opponent())
	}
}

func (m *Manager) randomLegalMove(fen string) *bot.Move {
	cands, err := engine.LegalMoves(fen)
	if err != nil || len(cands) == 0 {
		return nil
	}
	m.randMu.Lock()
	pick := cands[m.rand.Intn(len(cands))]
	m.randMu.Unlock()
	from, to, promo, err := engine.SplitUCI(pick.UCI)
	if err != nil {
		return nil
	}
	return &bot.Move{From: from, To: to, Promotion: promo}
}

// Resign concedes the match for identity; the opponent wins.
func (m *Manager) Resign(ctx context.Context, identity, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	match := m.store.get(matchID)
	if match == nil {
		return ErrGameNotFound
	}
	side := match.SideOf(identity)
	if side == "" {
		return ErrGameNotFound
	}
	if match.Phase != domain.PhaseInProgress {
		return ErrBadRequest
	}
	m.concludeLocked(match, domain.ResultResignation, side.Opponent())
	return nil
}

// Reset rewinds an in-progress match to the starting position. The move
// history is discarded; sides are kept.
func (m *Manager) Reset(ctx context.Context, identity, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	match := m.store.get(matchID)
	if match == nil {
		return ErrGameNotFound
	}
	if match.SideOf(identity) == "" {
		return ErrGameNotFound
	}
	if match.Phase != domain.PhaseInProgress {
		return ErrBadRequest
	}

	match.FEN = engine.NewGameFEN()
	match.MovesUCI = nil
	match.MovesSAN = nil
	match.UpdatedAt = time.Now()

	note := arenadto.Notification{
		Type:       arenadto.TypeGameReset,
		MatchID:    match.ID,
		Position:   match.FEN,
		SideToMove: string(domain.SideWhite),
	}
	m.notifyIdentity(match.WhiteID, note)
	m.notifyIdentity(match.BlackID, note)
	m.persistMatchAsync(match)

	if match.WhiteID == domain.BotIdentity {
		go m.botTurn(match.ID, match.FEN, match.Difficulty)
	}
	return nil
}

// Disconnect runs when an identity loses its last connection. Awaiting
// matches and challenge tokens it owns are cancelled. In-progress matches
// stay open: identity, not connection, is the durable participant key, so
// the peer may reconnect and keep playing. The opponent gets an advisory.
func (m *Manager) Disconnect(identity string) {
	if identity == "" || identity == domain.BotIdentity {
		return
	}

	var orphanedTokens []string

	m.mu.Lock()
	for token, meta := range m.pending {
		if meta.creatorID == identity {
			orphanedTokens = append(orphanedTokens, token)
			delete(m.pending, token)
		}
	}
	for _, match := range m.store.byParticipant(identity) {
		switch match.Phase {
		case domain.PhaseAwaitingOpponent:
			m.queue.remove(match.ID)
			m.store.remove(match.ID)
		case domain.PhaseInProgress:
			side := match.SideOf(identity)
			opponent := match.IdentityOf(side.Opponent())
			if opponent != domain.BotIdentity {
				m.notifyIdentity(opponent, arenadto.Notification{
					Type:    arenadto.TypeOpponentDisconnected,
					MatchID: match.ID,
					Message: m.text("notice.opponent_disconnected", nil),
				})
			}
		}
	}
	m.mu.Unlock()

	if len(orphanedTokens) > 0 && m.challenges != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, token := range orphanedTokens {
				if err := m.challenges.Remove(ctx, token); err != nil {
					obslog.L().Warn("orphaned challenge cleanup failed",
						zap.String("token", token), zap.Error(err))
				}
			}
		}()
	}
}

// ListAwaiting returns the joinable open-queue matches, oldest first.
func (m *Manager) ListAwaiting() []arenadto.MatchSummary {
	now := time.Now()
	m.mu.Lock()
	awaiting := m.store.awaiting(m.queueTTL, now)
	out := make([]arenadto.MatchSummary, 0, len(awaiting))
	for _, match := range awaiting {
		tc := match.TimeControl
		if tc == "none" {
			tc = ""
		}
		out = append(out, arenadto.MatchSummary{
			MatchID:     match.ID,
			Mode:        match.Mode,
			TimeControl: tc,
			CreatedAt:   match.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

// sweepOnce expires stale queue entries and challenge tokens. Redis TTL
// removes the token payloads on its own; the sweep handles the in-memory
// mirrors and tells the creators.
func (m *Manager) sweepOnce(now time.Time) {
	m.mu.Lock()
	for _, match := range m.queue.expired(m.queueTTL, now) {
		m.queue.remove(match.ID)
		m.store.remove(match.ID)
		creator := match.WhiteID
		if creator == "" {
			creator = match.BlackID
		}
		m.notifyIdentity(creator, arenadto.Notification{
			Type:    arenadto.TypeError,
			MatchID: match.ID,
			Message: m.text("notice.queue_expired", nil),
		})
	}
	// safety net: awaiting matches that fell out of the queue still age out
	for id, match := range m.store.matches {
		if match.Phase == domain.PhaseAwaitingOpponent && now.Sub(match.CreatedAt) > m.queueTTL {
			m.queue.remove(id)
			m.store.remove(id)
		}
	}
	for token, meta := range m.pending {
		if now.After(meta.deadline) {
			delete(m.pending, token)
			m.notifyIdentity(meta.creatorID, arenadto.Notification{
				Type:    arenadto.TypeError,
				Message: m.text("notice.challenge_expired", nil),
			})
		}
	}
	m.mu.Unlock()
}

// concludeLocked finishes a match: terminal state is recorded, both humans
// are told the outcome, and the match leaves the live store. Caller holds
// m.mu.
func (m *Manager) concludeLocked(match *domain.Match, result domain.Result, winner domain.Side) {
	match.Phase = domain.PhaseConcluded
	match.Result = result
	match.Winner = winner
	match.UpdatedAt = time.Now()

	for _, side := range []domain.Side{domain.SideWhite, domain.SideBlack} {
		identity := match.IdentityOf(side)
		if identity == domain.BotIdentity || identity == "" {
			continue
		}
		note := arenadto.Notification{
			Type:    arenadto.TypeGameOver,
			MatchID: match.ID,
			Result:  string(result),
			Winner:  string(winner),
		}
		switch {
		case winner == side:
			note.Message = m.text("notice.you_won", map[string]string{"Reason": string(result)})
		case winner != "":
			note.Message = m.text("notice.you_lost", map[string]string{"Reason": string(result)})
		}
		m.notifyIdentity(identity, note)
	}

	m.queue.remove(match.ID)
	m.store.remove(match.ID)

	snapshot := *match
	m.persistMatchAsync(&snapshot)
	if m.webhook != nil {
		ev := webhook.EventFromMatch(&snapshot)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := m.webhook.PostResult(ctx, ev); err != nil {
				obslog.L().Warn("result webhook delivery failed",
					zap.String("match_id", ev.MatchID), zap.Error(err))
			}
		}()
	}
}

func (m *Manager) announceStart(match *domain.Match) {
	for _, side := range []domain.Side{domain.SideWhite, domain.SideBlack} {
		identity := match.IdentityOf(side)
		if identity == domain.BotIdentity || identity == "" {
			continue
		}
		m.notifyIdentity(identity, arenadto.Notification{
			Type:       arenadto.TypeGameStarted,
			MatchID:    match.ID,
			Position:   match.FEN,
			Side:       string(side),
			SideToMove: string(domain.SideWhite),
		})
	}
}

// notifyIdentity fans a notification out to all open connections of an
// identity. The bot sentinel is silently skipped. Send failures are the
// transport's problem; arbitration never blocks on delivery.
func (m *Manager) notifyIdentity(identity string, n arenadto.Notification) {
	if identity == "" || identity == domain.BotIdentity || m.reg == nil {
		return
	}
	for _, c := range m.reg.ConnectionsFor(identity) {
		if err := c.Send(n); err != nil {
			obslog.L().Debug("notification drop", zap.String("identity", identity), zap.Error(err))
		}
	}
}

func (m *Manager) text(key string, data any) string {
	if m.cat == nil {
		return ""
	}
	return m.cat.Text(key, data)
}

// ErrorMessage renders the participant-facing text for an arbitration
// error. The transport sends it as an error notification.
func (m *Manager) ErrorMessage(err error) string {
	msg := m.text(MessageKey(err), nil)
	if msg == "" {
		return err.Error()
	}
	return msg
}

func (m *Manager) persistMatchAsync(match *domain.Match) {
	if m.archive == nil {
		return
	}
	snapshot := cloneMatch(match)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.archive.SaveMatch(ctx, snapshot); err != nil {
			obslog.L().Warn("match persist failed", zap.String("match_id", snapshot.ID), zap.Error(err))
		}
	}()
}

func (m *Manager) persistMoveAsync(matchID string, seq int, moverID, from, to, promotion string) {
	if m.archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.archive.SaveMove(ctx, matchID, seq, moverID, from, to, promotion); err != nil {
			obslog.L().Warn("move persist failed", zap.String("match_id", matchID),
				zap.Int("seq", seq), zap.Error(err))
		}
	}()
}

func cloneMatch(match *domain.Match) *domain.Match {
	snapshot := *match
	snapshot.MovesUCI = append([]string(nil), match.MovesUCI...)
	snapshot.MovesSAN = append([]string(nil), match.MovesSAN...)
	return &snapshot
}

func (m *Manager) randomSide() domain.Side {
	var b [1]byte
	if _, err := cryptorand.Read(b[:]); err == nil && b[0]&1 == 1 {
		return domain.SideBlack
	}
	return domain.SideWhite
}

// SetRandomSeed pins the fallback move selection for tests.
func (m *Manager) SetRandomSeed(seed int64) {
	m.randMu.Lock()
	m.rand = rand.New(rand.NewSource(seed))
	m.randMu.Unlock()
}
