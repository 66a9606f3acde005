package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DebugSessionParam is the query parameter naming a persisted devtools session.
const DebugSessionParam = "debug_session"

// DebugSessionKey returns the debug session named in a location's query,
// or "" when there is none.
func DebugSessionKey(loc Location) string {
	return loc.Query().Get(DebugSessionParam)
}

// LoggedAction is one entry of the devtools action log.
type LoggedAction struct {
	Action Action
	State  State
	At     time.Time
}

// ActionLog records dispatched actions with the state they produced.
// It is safe for concurrent use.
type ActionLog struct {
	mu      sync.Mutex
	max     int
	entries []LoggedAction
}

// NewActionLog creates a log keeping at most max entries (0 means 50).
func NewActionLog(max int) *ActionLog {
	if max <= 0 {
		max = 50
	}
	return &ActionLog{max: max}
}

func (l *ActionLog) record(a Action, s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LoggedAction{Action: a, State: s, At: time.Now()})
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Entries returns a copy of the recorded actions, oldest first.
func (l *ActionLog) Entries() []LoggedAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LoggedAction(nil), l.entries...)
}

// Instrument returns an Enhancer recording every action that reaches the
// reducer into a fresh ActionLog, reachable through Store.ActionLog.
func Instrument(max int) Enhancer {
	return func(next Creator) Creator {
		return func(reducer Reducer, initial State) *Store {
			st := next(reducer, initial)
			log := NewActionLog(max)
			inner := st.dispatch
			st.dispatch = func(a Action) (Action, error) {
				res, err := inner(a)
				if err == nil {
					log.record(a, st.GetState())
				}
				return res, err
			}
			st.actions = log
			return st
		}
	}
}

// Backend stores persisted devtools sessions.
type Backend interface {
	Load(ctx context.Context, key string) (State, bool, error)
	Save(ctx context.Context, key string, state State) error
}

// PersistState returns an Enhancer that restores state saved under key and
// saves the state after every change. An empty key disables persistence.
// Backend errors are logged, never returned.
func PersistState(key string, backend Backend, logger *slog.Logger) Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Creator) Creator {
		if key == "" || backend == nil {
			return next
		}
		return func(reducer Reducer, initial State) *Store {
			ctx := context.Background()
			saved, ok, err := backend.Load(ctx, key)
			if err != nil {
				logger.Warn("devtools session load failed", "session", key, "error", err)
			} else if ok {
				initial = saved
			}

			st := next(reducer, initial)
			st.Subscribe(func() {
				if err := backend.Save(ctx, key, st.GetState()); err != nil {
					logger.Warn("devtools session save failed", "session", key, "error", err)
				}
			})
			return st
		}
	}
}

// MemoryBackend keeps sessions in process memory.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string][]byte)}
}

// Load implements Backend.
func (b *MemoryBackend) Load(_ context.Context, key string) (State, bool, error) {
	b.mu.RLock()
	data, ok := b.sessions[key]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Save implements Backend.
func (b *MemoryBackend) Save(_ context.Context, key string, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.sessions[key] = data
	b.mu.Unlock()
	return nil
}

// RedisClient is the subset of the go-redis API used by RedisBackend.
// *redis.Client satisfies it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisBackend keeps sessions in Redis so they survive process restarts.
type RedisBackend struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a RedisBackend. A zero ttl keeps sessions forever.
func NewRedisBackend(client RedisClient, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "prerender:devtools:"
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context, key string) (State, bool, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("decode session %q: %w", key, err)
	}
	return s, true, nil
}

// Save implements Backend.
func (b *RedisBackend) Save(ctx context.Context, key string, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := b.client.Set(ctx, b.prefix+key, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
