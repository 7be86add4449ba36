package state

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asad/wellhaven/internal/catalog"
	"github.com/asad/wellhaven/internal/kv"
	"github.com/asad/wellhaven/internal/session"
)

func newManager(store kv.Store) *Manager {
	return NewManager(store, catalog.Default(), Options{KeyPrefix: "wellhaven"}, nil)
}

func TestValidateProfile(t *testing.T) {
	for _, ok := range []string{"a", "browser-1", "Tab_2", "x123456789012345678901234567890123456789012345678901234567890123"} {
		assert.NoError(t, ValidateProfile(ok), ok)
	}
	for _, bad := range []string{"", "..", "a/b", "a:b", "with space", "x1234567890123456789012345678901234567890123456789012345678901234"} {
		assert.ErrorIs(t, ValidateProfile(bad), ErrInvalidProfile, bad)
	}
}

func TestWith_ScopesKeysPerProfile(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	m := newManager(store)
	pkg, _ := catalog.Default().ByID("1")

	require.NoError(t, m.With(ctx, "alice", func(p *Profile) error {
		if _, err := p.Session.Login(ctx, session.DemoEmail, session.DemoPassword); err != nil {
			return err
		}
		return p.Cart.AddToCart(ctx, pkg)
	}))

	require.NoError(t, m.With(ctx, "bob", func(p *Profile) error {
		_, ok := p.Session.Current()
		assert.False(t, ok, "bob must not see alice's session")
		assert.Zero(t, p.Cart.CartCount())
		return nil
	}))

	assert.Equal(t, []string{
		"wellhaven:profiles:alice:cart-items",
		"wellhaven:profiles:alice:current-session",
	}, store.Keys())
	assert.Equal(t, 2, m.Cached())
}

func TestWith_CachesAndReloads(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	m := newManager(store)

	var first *Profile
	require.NoError(t, m.With(ctx, "alice", func(p *Profile) error {
		first = p
		_, err := p.Session.Signup(ctx, "Ada", "ada@example.com", "pw")
		return err
	}))

	require.NoError(t, m.With(ctx, "alice", func(p *Profile) error {
		assert.Same(t, first, p)
		return nil
	}))

	m.Evict("alice")
	assert.Zero(t, m.Cached())

	// a fresh manager over the same storage sees the persisted session
	other := newManager(store)
	require.NoError(t, other.With(ctx, "alice", func(p *Profile) error {
		assert.NotSame(t, first, p)
		sess, ok := p.Session.Current()
		require.True(t, ok)
		assert.Equal(t, "Ada", sess.Name)
		return nil
	}))
}

func TestWith_InvalidProfile(t *testing.T) {
	m := newManager(kv.NewMemoryStore())
	called := false
	err := m.With(context.Background(), "../etc", func(p *Profile) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.False(t, called)
}

func TestWith_SerialisesProfileAccess(t *testing.T) {
	ctx := context.Background()
	m := newManager(kv.NewMemoryStore())
	pkg, _ := catalog.Default().ByID("2")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.With(ctx, "shared", func(p *Profile) error {
				return p.Cart.AddToCart(ctx, pkg)
			}))
		}()
	}
	wg.Wait()

	require.NoError(t, m.With(ctx, "shared", func(p *Profile) error {
		assert.Equal(t, 50, p.Cart.CartCount())
		assert.Len(t, p.Cart.Items(), 1)
		return nil
	}))
}

// gatedStore blocks reads under one profile until release is closed.
type gatedStore struct {
	*kv.MemoryStore
	profile string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	reads   atomic.Int32
}

func newGatedStore(profile string) *gatedStore {
	return &gatedStore{
		MemoryStore: kv.NewMemoryStore(),
		profile:     profile,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.Contains(key, ":profiles:"+g.profile+":") {
		g.reads.Add(1)
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.MemoryStore.Get(ctx, key)
}

func TestWith_SlowOpenDoesNotBlockOtherProfiles(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore("slow")
	m := newManager(store)

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- m.With(ctx, "slow", func(p *Profile) error { return nil })
	}()
	<-store.entered

	fastDone := make(chan error, 1)
	go func() {
		fastDone <- m.With(ctx, "fast", func(p *Profile) error { return nil })
	}()

	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("opening one profile blocked another")
	}

	close(store.release)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, m.Cached())
}

func TestWith_ConcurrentOpensShareOneLoad(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore("slow")
	m := newManager(store)

	const callers = 5
	profiles := make(chan *Profile, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.With(ctx, "slow", func(p *Profile) error {
				profiles <- p
				return nil
			}))
		}()
	}

	<-store.entered
	close(store.release)
	wg.Wait()
	close(profiles)

	var first *Profile
	for p := range profiles {
		if first == nil {
			first = p
		}
		assert.Same(t, first, p)
	}
	// session reads two keys and cart reads two; a single load touches each once
	assert.Equal(t, int32(4), store.reads.Load())
}

func TestWith_WaiterHonoursOwnContext(t *testing.T) {
	store := newGatedStore("slow")
	m := newManager(store)
	defer close(store.release)

	go m.With(context.Background(), "slow", func(p *Profile) error { return nil })
	<-store.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.With(ctx, "slow", func(p *Profile) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
