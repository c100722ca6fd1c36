package arena

import (
	"time"

	"github.com/park285/chess-arena/internal/domain"
)

// matchStore is the authoritative in-memory table of live matches. It has
// no locking of its own: all access happens under the manager's arbitration
// mutex.
type matchStore struct {
	matches map[string]*domain.Match
}

func newMatchStore() *matchStore {
	return &matchStore{matches: make(map[string]*domain.Match)}
}

func (s *matchStore) get(id string) *domain.Match {
	return s.matches[id]
}

func (s *matchStore) put(m *domain.Match) {
	s.matches[m.ID] = m
}

func (s *matchStore) remove(id string) {
	delete(s.matches, id)
}

func (s *matchStore) byParticipant(identity string) []*domain.Match {
	var out []*domain.Match
	for _, m := range s.matches {
		if m.SideOf(identity) != "" {
			out = append(out, m)
		}
	}
	return out
}

func (s *matchStore) awaiting(maxAge time.Duration, now time.Time) []*domain.Match {
	var out []*domain.Match
	for _, m := range s.matches {
		if m.Phase != domain.PhaseAwaitingOpponent {
			continue
		}
		if now.Sub(m.CreatedAt) > maxAge {
			continue
		}
		out = append(out, m)
	}
	return out
}

// openQueue holds awaiting-opponent matches in arrival order, keyed by
// pairing mode. Pairing is first-compatible-match: oldest entry of the
// requested mode not created by the requester.
type openQueue struct {
	entries []*domain.Match
}

func newOpenQueue() *openQueue {
	return &openQueue{}
}

func (q *openQueue) enqueue(m *domain.Match) {
	q.entries = append(q.entries, m)
}

func (q *openQueue) findCompatible(mode, excludingIdentity string) *domain.Match {
	for _, m := range q.entries {
		if m.Mode != mode {
			continue
		}
		if m.SideOf(excludingIdentity) != "" {
			continue
		}
		return m
	}
	return nil
}

func (q *openQueue) remove(matchID string) {
	for i, m := range q.entries {
		if m.ID == matchID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

func (q *openQueue) expired(ttl time.Duration, now time.Time) []*domain.Match {
	var out []*domain.Match
	for _, m := range q.entries {
		if now.Sub(m.CreatedAt) > ttl {
			out = append(out, m)
		}
	}
	return out
}
