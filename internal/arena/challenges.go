package arena

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/chess-arena/internal/domain"
)

// ChallengeStore keeps pending challenge links in Redis so tokens survive a
// restart and expire by TTL. Claims are one-shot: WATCH plus a transactional
// delete guarantees a token pairs at most once even across processes.
type ChallengeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewChallengeStore(redisURL string, ttl time.Duration) (*ChallengeStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for challenge store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ChallengeStore{rdb: rdb, ttl: ttl}, nil
}

func (s *ChallengeStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func challengeKey(token string) string { return "arena:challenge:" + strings.TrimSpace(token) }

// Create allocates a fresh token and stores the challenge meta under TTL.
func (s *ChallengeStore) Create(ctx context.Context, creatorID, mode, timeControl string) (*domain.PendingChallenge, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, ErrBadRequest
	}
	for i := 0; i < 5; i++ {
		token, err := tokenGen()
		if err != nil {
			return nil, err
		}
		ch := &domain.PendingChallenge{
			Token:       token,
			CreatorID:   strings.TrimSpace(creatorID),
			Mode:        strings.TrimSpace(mode),
			TimeControl: strings.TrimSpace(timeControl),
			CreatedAt:   time.Now(),
		}
		raw, err := json.Marshal(ch)
		if err != nil {
			return nil, err
		}
		ok, err := s.rdb.SetNX(ctx, challengeKey(token), raw, s.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("failed to allocate challenge token")
}

// Claim consumes the token for claimant. Unknown, expired and already
// claimed tokens are indistinguishable by design; a self-claim leaves the
// token intact.
func (s *ChallengeStore) Claim(ctx context.Context, token, claimantID string) (*domain.PendingChallenge, error) {
	token = strings.TrimSpace(token)
	claimantID = strings.TrimSpace(claimantID)
	if token == "" || claimantID == "" {
		return nil, ErrBadRequest
	}
	key := challengeKey(token)
	var claimed *domain.PendingChallenge
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrChallengeNotFound
		}
		if err != nil {
			return err
		}
		var ch domain.PendingChallenge
		if jerr := json.Unmarshal(raw, &ch); jerr != nil {
			return jerr
		}
		if ch.CreatorID == claimantID {
			return ErrSelfJoin
		}
		pipe := tx.TxPipeline()
		pipe.Del(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		claimed = &ch
		return nil
	}, key)
	if err != nil {
		if err == redis.TxFailedErr {
			// concurrent claim won the race
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return claimed, nil
}

// Remove deletes an unclaimed token, e.g. when its creator disconnects or
// the sweep notices the in-memory deadline passed.
func (s *ChallengeStore) Remove(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.rdb.Del(ctx, challengeKey(token)).Err()
}

// Exists reports whether the token is still claimable.
func (s *ChallengeStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, challengeKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// tokenGen returns `CH-` + 6 upper alnum.
func tokenGen() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return fmt.Sprintf("CH-%s", string(b)), nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
