// Package state hands out the per-profile session and cart stores.
//
// A profile is one independent storage instance, the server-side stand-in for
// a single browser's local storage. Each profile's stores are opened lazily
// over a prefixed view of the shared kv.Store and cached. The stores assume a
// single writer, so every call into a profile runs under that profile's lock.
package state

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/asad/wellhaven/internal/cart"
	"github.com/asad/wellhaven/internal/catalog"
	"github.com/asad/wellhaven/internal/kv"
	"github.com/asad/wellhaven/internal/logging"
	"github.com/asad/wellhaven/internal/session"
)

// ErrInvalidProfile is returned for profile names outside [A-Za-z0-9_-]{1,64}.
var ErrInvalidProfile = errors.New("invalid profile name")

var profileName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Options configures the stores opened for each profile.
type Options struct {
	KeyPrefix      string
	Passwords      session.PasswordScheme
	AuthLatency    time.Duration
	BookingLatency time.Duration
}

// Profile bundles the two state containers of one storage instance.
type Profile struct {
	Name    string
	Session *session.Store
	Cart    *cart.Store

	mu sync.Mutex
}

// Manager opens, caches and serialises access to profiles.
type Manager struct {
	store   kv.Store
	catalog *catalog.Catalog
	opts    Options
	logger  logging.Logger

	mu       sync.Mutex
	profiles map[string]*Profile
	opening  map[string]*pendingOpen
}

// pendingOpen lets concurrent callers for one profile wait on a single load
// without holding the manager lock during storage I/O.
type pendingOpen struct {
	done    chan struct{}
	profile *Profile
	err     error
}

// NewManager creates a manager over store.
func NewManager(store kv.Store, cat *catalog.Catalog, opts Options, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:    store,
		catalog:  cat,
		opts:     opts,
		logger:   logger,
		profiles: make(map[string]*Profile),
		opening:  make(map[string]*pendingOpen),
	}
}

// ValidateProfile checks a profile name.
func ValidateProfile(name string) error {
	if !profileName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, name)
	}
	return nil
}

// With runs fn with exclusive access to the named profile, opening it first if needed.
func (m *Manager) With(ctx context.Context, name string, fn func(p *Profile) error) error {
	p, err := m.profile(ctx, name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p)
}

func (m *Manager) profile(ctx context.Context, name string) (*Profile, error) {
	if err := ValidateProfile(name); err != nil {
		return nil, err
	}

	for {
		m.mu.Lock()
		if p, ok := m.profiles[name]; ok {
			m.mu.Unlock()
			return p, nil
		}

		if pending, ok := m.opening[name]; ok {
			m.mu.Unlock()
			select {
			case <-pending.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if pending.err == nil {
				return pending.profile, nil
			}
			// The loader's failure may be its own (a cancelled request); try again.
			continue
		}

		pending := &pendingOpen{done: make(chan struct{})}
		m.opening[name] = pending
		m.mu.Unlock()

		pending.profile, pending.err = m.open(ctx, name)

		m.mu.Lock()
		delete(m.opening, name)
		if pending.err == nil {
			m.profiles[name] = pending.profile
		}
		m.mu.Unlock()
		close(pending.done)

		return pending.profile, pending.err
	}
}

func (m *Manager) open(ctx context.Context, name string) (*Profile, error) {
	scoped := kv.WithPrefix(kv.WithPrefix(m.store, m.opts.KeyPrefix), "profiles:"+name)
	logger := m.logger.With(logging.String("profile", name))

	sess, err := session.Open(ctx, scoped, session.Options{
		Logger:    logger,
		Passwords: m.opts.Passwords,
		Latency:   m.opts.AuthLatency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store for %s: %w", name, err)
	}

	c, err := cart.Open(ctx, scoped, cart.Options{
		Logger:   logger,
		Packages: m.catalog,
		Latency:  m.opts.BookingLatency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cart store for %s: %w", name, err)
	}

	logger.Debug("profile opened")
	return &Profile{Name: name, Session: sess, Cart: c}, nil
}

// Evict drops a cached profile so the next access reloads it from storage.
func (m *Manager) Evict(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, name)
}

// Cached reports how many profiles are held in memory.
func (m *Manager) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles)
}
