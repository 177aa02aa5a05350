// Package idempotency remembers which order a client-supplied Idempotency-Key
// produced, so a retried POST returns the same order instead of a second one.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultTTL = 24 * time.Hour
	pending    = "pending"
)

var ErrInFlight = errors.New("idempotency key in flight")

type Store interface {
	// Reserve claims key. replay is true when an earlier request already
	// finished under this key; id is then the entity it created.
	Reserve(ctx context.Context, key string) (id uint, replay bool, err error)
	Complete(ctx context.Context, key string, id uint) error
	Release(ctx context.Context, key string) error
}

type Redis struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedis(addr, prefix string) *Redis {
	return &Redis{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Prefix: prefix,
		TTL:    DefaultTTL,
	}
}

func (r *Redis) key(k string) string {
	return fmt.Sprintf("%s:idempotency:%s", r.Prefix, k)
}

func (r *Redis) Reserve(ctx context.Context, key string) (uint, bool, error) {
	ok, err := r.Client.SetNX(ctx, r.key(key), pending, r.TTL).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, false, nil
	}

	val, err := r.Client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls; try once more
		return r.Reserve(ctx, key)
	}
	if err != nil {
		return 0, false, err
	}
	return parse(val)
}

func (r *Redis) Complete(ctx context.Context, key string, id uint) error {
	return r.Client.Set(ctx, r.key(key), strconv.FormatUint(uint64(id), 10), r.TTL).Err()
}

func (r *Redis) Release(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.key(key)).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func parse(val string) (uint, bool, error) {
	if val == pending {
		return 0, false, ErrInFlight
	}
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency: corrupt value %q: %w", val, err)
	}
	return uint(n), true, nil
}

// sweepEvery bounds how often Memory scans for expired keys.
const sweepEvery = time.Minute

// Memory is a single-process Store used when Redis is not configured.
// Expired keys are dropped by a sweep that Reserve runs at most once per
// sweepEvery.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memEntry
	TTL       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

type memEntry struct {
	val     string
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memEntry{}, TTL: DefaultTTL, now: time.Now}
}

func (m *Memory) Reserve(_ context.Context, key string) (uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	if e, ok := m.entries[key]; ok && now.Before(e.expires) {
		return parse(e.val)
	}
	m.entries[key] = memEntry{val: pending, expires: now.Add(m.TTL)}
	return 0, false, nil
}

func (m *Memory) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.nextSweep = now.Add(sweepEvery)
}

// Len reports how many keys are currently held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Complete(_ context.Context, key string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{val: strconv.FormatUint(uint64(id), 10), expires: m.now().Add(m.TTL)}
	return nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
