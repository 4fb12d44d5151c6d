// Package sessionstate remembers, per chat user, what kind of free text
// the bot expects next. Entries are hints with a TTL; losing one never
// breaks a transaction because every operation also accepts an explicit
// transaction id.
package sessionstate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

type Entry struct {
	State     domain.SessionTag  `json:"state"`
	Data      domain.SessionData `json:"data"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// IStore is the view of the session store used by the services.
type IStore interface {
	Set(userID string, state domain.SessionTag, data domain.SessionData) error
	Get(userID string) (Entry, bool)
	Clear(userID string)
}

type Store struct {
	backend       Backend
	clock         clock.Clock
	ttl           time.Duration
	sweepInterval time.Duration
	sweepMu       sync.Mutex
	logger        zerolog.Logger
}

func New(backend Backend, clk clock.Clock, cfg config.SessionConfig, logger zerolog.Logger) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Store{
		backend:       backend,
		clock:         clk,
		ttl:           ttl,
		sweepInterval: interval,
		logger:        logger,
	}
}

// Set replaces whatever the user had with a fresh entry.
func (s *Store) Set(userID string, state domain.SessionTag, data domain.SessionData) error {
	if userID == "" {
		return domain.ValidationError("sessionstate.Set", "missing user id")
	}
	if !state.Valid() {
		return domain.ValidationError("sessionstate.Set", "unknown session state %q", state)
	}
	s.backend.Store(userID, &Entry{
		State:     state,
		Data:      data,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	})
	return nil
}

// Get returns the live entry for userID. An expired entry is evicted and
// reported as absent.
func (s *Store) Get(userID string) (Entry, bool) {
	entry, ok := s.backend.Load(userID)
	if !ok {
		return Entry{}, false
	}
	if !s.clock.Now().Before(entry.ExpiresAt) {
		s.backend.CompareAndDelete(userID, entry)
		return Entry{}, false
	}
	return *entry, true
}

func (s *Store) Clear(userID string) {
	s.backend.Delete(userID)
}

// Sweep evicts every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	now := s.clock.Now()
	removed := 0
	s.backend.Range(func(userID string, entry *Entry) bool {
		if !now.Before(entry.ExpiresAt) && s.backend.CompareAndDelete(userID, entry) {
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.sweepInterval).Msg("Starting session sweeper")

	ticker := s.clock.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Session sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("Swept expired sessions")
			}
		}
	}
}
