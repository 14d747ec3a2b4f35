// Package session hosts many games at once. Each game is serialized behind its
// own mutex; the registry lock only guards the set of games.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridHeist/internal/game"
	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
	"github.com/mitchelldurbincs/GridHeist/internal/game/events"
	"github.com/mitchelldurbincs/GridHeist/internal/game/states"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrAtCapacity   = errors.New("registry at capacity")
)

// Session is one hosted game
type Session struct {
	id           string
	mu           sync.Mutex
	manager      *game.Manager
	createdAt    time.Time
	lastActivity time.Time
}

// ID returns the session's game ID
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the game was created
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Do runs fn with exclusive access to the game. Every read and write of the
// game goes through here.
func (s *Session) Do(fn func(*game.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
	return fn(s.manager)
}

// Registry manages all hosted games
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxGames int
	base     zerolog.Logger
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry. maxGames <= 0 means no limit.
func NewRegistry(maxGames int, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		maxGames: maxGames,
		base:     logger,
		logger:   logger.With().Str("component", "SessionRegistry").Logger(),
	}
}

// Create hosts a new game on grid. The grid is still in setup: callers place
// entities and call Start through Session.Do.
func (r *Registry) Create(grid *core.Grid, first core.Side) (*Session, error) {
	id := uuid.NewString()
	m, err := game.NewManager(grid, game.GameConfig{
		GameID:    id,
		Logger:    r.base,
		EventBus:  events.NewEventBus(),
		FirstSide: first,
	})
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	now := time.Now()
	s := &Session{id: id, manager: m, createdAt: now, lastActivity: now}

	r.mu.Lock()
	if r.maxGames > 0 && len(r.sessions) >= r.maxGames {
		current := len(r.sessions)
		r.mu.Unlock()
		r.logger.Warn().
			Int("current_games", current).
			Int("max_games", r.maxGames).
			Msg("Rejecting game creation - registry at capacity")
		return nil, fmt.Errorf("%d/%d games active: %w", current, r.maxGames, ErrAtCapacity)
	}
	r.sessions[id] = s
	current := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info().
		Str("game_id", id).
		Int("current_games", current).
		Int("rows", grid.Rows()).
		Int("cols", grid.Cols()).
		Msg("Created game")
	return s, nil
}

// Get retrieves a game by ID
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", id, ErrGameNotFound)
	}
	return s, nil
}

// Delete removes a game. A caller inside the game's Do keeps its reference
// until it returns.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("delete %q: %w", id, ErrGameNotFound)
	}
	delete(r.sessions, id)
	r.logger.Info().Str("game_id", id).Msg("Deleted game")
	return nil
}

// List returns the hosted game IDs in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Count returns the number of hosted games
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CleanupFinished removes finished games idle for longer than ttl and returns how many went
func (r *Registry) CleanupFinished(ttl time.Duration) int {
	// Collect references first so no game lock is taken under the registry lock
	r.mu.RLock()
	refs := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		refs = append(refs, s)
	}
	r.mu.RUnlock()

	now := time.Now()
	var expired []string
	for _, s := range refs {
		s.mu.Lock()
		if s.manager.Phase() == states.PhaseFinished && now.Sub(s.lastActivity) > ttl {
			expired = append(expired, s.id)
		}
		s.mu.Unlock()
	}

	removed := 0
	for _, id := range expired {
		if err := r.Delete(id); err == nil {
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info().Int("removed", removed).Msg("Cleaned up finished games")
	}
	return removed
}

// RunCleanup calls CleanupFinished every interval until ctx is done
func (r *Registry) RunCleanup(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.CleanupFinished(ttl)
		}
	}
}
