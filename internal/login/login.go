// Package login hands out unique login strings for seeded users.
package login

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hetulpatel/userseed/internal/cache"
	"github.com/hetulpatel/userseed/internal/logging"
)

const (
	StrategyTimestamp = "timestamp"
	StrategySequence  = "sequence"
	StrategyUUID      = "uuid"
)

// ErrExhausted is returned when no unclaimed login was found within the attempt bound.
var ErrExhausted = errors.New("no unclaimed login available")

// Source produces logins. Implementations never return the same value twice.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Releaser is implemented by sources that hold a claim on every login they hand out.
// Releasing a login that never reached the store lets it be handed out again.
type Releaser interface {
	Release(ctx context.Context, login string) error
}

// New builds the source for a strategy name.
func New(strategy, prefix string, start int64) (Source, error) {
	switch strings.ToLower(strategy) {
	case "", StrategyTimestamp:
		return NewTimestamp(nil), nil
	case StrategySequence:
		return NewSequence(prefix, start), nil
	case StrategyUUID:
		return UUID{}, nil
	default:
		return nil, fmt.Errorf("unknown login strategy %q", strategy)
	}
}

// Timestamp renders the wall clock in nanoseconds as a decimal string. When the clock
// has not advanced since the previous call the last value is bumped by one.
type Timestamp struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewTimestamp uses time.Now when now is nil.
func NewTimestamp(now func() time.Time) *Timestamp {
	if now == nil {
		now = time.Now
	}
	return &Timestamp{now: now}
}

func (t *Timestamp) Next(_ context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := t.now().UnixNano()
	if v <= t.last {
		v = t.last + 1
	}
	t.last = v
	return strconv.FormatInt(v, 10), nil
}

// Sequence yields prefix followed by an increasing counter.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int64
}

func NewSequence(prefix string, start int64) *Sequence {
	return &Sequence{prefix: prefix, next: start}
}

func (s *Sequence) Next(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.next
	s.next++
	return s.prefix + strconv.FormatInt(v, 10), nil
}

// UUID yields random version 4 UUIDs.
type UUID struct{}

func (UUID) Next(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// Reserved claims every login from Source in a shared registry and skips taken ones.
type Reserved struct {
	source      Source
	registry    cache.LoginRegistry
	maxAttempts int
}

func NewReserved(source Source, registry cache.LoginRegistry, maxAttempts int) *Reserved {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Reserved{source: source, registry: registry, maxAttempts: maxAttempts}
}

func (r *Reserved) Next(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		login, err := r.source.Next(ctx)
		if err != nil {
			return "", err
		}
		if r.registry == nil {
			return login, nil
		}
		ok, err := r.registry.Claim(ctx, login)
		if err != nil {
			return "", err
		}
		if ok {
			return login, nil
		}
		logging.Debugf("[login] %s already claimed (attempt %d/%d)", login, attempt, r.maxAttempts)
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, r.maxAttempts)
}

func (r *Reserved) Release(ctx context.Context, login string) error {
	if r.registry == nil {
		return nil
	}
	return r.registry.Release(ctx, login)
}
