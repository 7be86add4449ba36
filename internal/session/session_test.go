package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asad/wellhaven/internal/kv"
)

// sequentialIDs returns an id generator yielding "u1", "u2", ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("u%d", n)
	}
}

func openStore(t *testing.T, store kv.Store, opts Options) *Store {
	t.Helper()
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	s, err := Open(context.Background(), store, opts)
	require.NoError(t, err)
	return s
}

// failingStore fails every write.
type failingStore struct {
	*kv.MemoryStore
}

func (f failingStore) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

// keyFailingStore fails writes to one key only.
type keyFailingStore struct {
	*kv.MemoryStore
	failKey string
}

func (f *keyFailingStore) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func TestOpen_Empty(t *testing.T) {
	s := openStore(t, kv.NewMemoryStore(), Options{})

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Accounts())
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := openStore(t, store, Options{})

	sess, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, Session{ID: "u1", Name: "Ada", Email: "ada@example.com"}, sess)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, sess, current)

	raw, ok, err := store.Get(ctx, KeyCurrentSession)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"u1","name":"Ada","email":"ada@example.com"}`, raw)

	raw, ok, err = store.Get(ctx, KeyAccounts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"u1","name":"Ada","email":"ada@example.com","password":"secret"}]`, raw)
}

func TestSignup_DuplicateEmailAllowed(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemoryStore(), Options{})

	_, err := s.Signup(ctx, "First", "same@example.com", "one")
	require.NoError(t, err)
	_, err = s.Signup(ctx, "Second", "same@example.com", "two")
	require.NoError(t, err)

	assert.Len(t, s.Accounts(), 2)

	sess, err := s.Login(ctx, "same@example.com", "two")
	require.NoError(t, err)
	assert.Equal(t, "Second", sess.Name)
}

func TestLogin_FirstMatchWins(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemoryStore(), Options{})

	_, err := s.Signup(ctx, "First", "same@example.com", "pw")
	require.NoError(t, err)
	_, err = s.Signup(ctx, "Second", "same@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	sess, err := s.Login(ctx, "same@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.ID)
}

func TestLogin_DemoFallback(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := openStore(t, store, Options{})

	sess, err := s.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, Session{ID: "demo-user", Name: "Demo User", Email: "demo@wellhaven.com"}, sess)
	assert.Empty(t, s.Accounts())

	_, ok, err := store.Get(ctx, KeyCurrentSession)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogin_RegisteredAccountShadowsDemo(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemoryStore(), Options{})

	_, err := s.Signup(ctx, "Real", DemoEmail, DemoPassword)
	require.NoError(t, err)

	sess, err := s.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := openStore(t, store, Options{})

	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ada@example.com", password: "nope"},
		{name: "unknown email", email: "bob@example.com", password: "secret"},
		{name: "demo email wrong password", email: DemoEmail, password: "demo"},
		{name: "empty", email: "", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			_, ok := s.Current()
			assert.False(t, ok)
			_, ok, err = store.Get(ctx, KeyCurrentSession)
			require.NoError(t, err)
			assert.False(t, ok, "no session may be persisted after a failed login")
		})
	}
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kv.NewMemoryStore(), Options{})

	sess, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	_, err = s.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, sess, current)
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := openStore(t, store, Options{})

	_, err := s.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	_, ok := s.Current()
	assert.False(t, ok)
	_, ok, err = store.Get(ctx, KeyCurrentSession)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_RestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	first := openStore(t, store, Options{})
	sess, err := first.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	second := openStore(t, store, Options{})
	current, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, sess, current)
	assert.Equal(t, first.Accounts(), second.Accounts())
}

func TestOpen_UnreadableValuesAreAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyCurrentSession, "{not json"))
	require.NoError(t, store.Set(ctx, KeyAccounts, `[{"id":1}]`))

	s := openStore(t, store, Options{})

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Accounts())

	// the store stays usable
	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Len(t, s.Accounts(), 1)
}

func TestSignup_StorageFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, failingStore{kv.NewMemoryStore()}, Options{})

	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.Error(t, err)

	assert.Empty(t, s.Accounts())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSignup_SessionWriteFailureRollsBackAccount(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	store := &keyFailingStore{MemoryStore: mem}
	s := openStore(t, store, Options{})

	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	store.failKey = KeyCurrentSession
	_, err = s.Signup(ctx, "Bob", "bob@example.com", "pw")
	require.Error(t, err)

	require.Len(t, s.Accounts(), 1)
	assert.Equal(t, "Ada", s.Accounts()[0].Name)

	reopened := openStore(t, mem, Options{})
	require.Len(t, reopened.Accounts(), 1)
	assert.Equal(t, "ada@example.com", reopened.Accounts()[0].Email)

	store.failKey = ""
	_, err = s.Signup(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)
	assert.Len(t, s.Accounts(), 2)
}

func TestSignup_FirstAccountRollbackRemovesKey(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := openStore(t, &keyFailingStore{MemoryStore: mem, failKey: KeyCurrentSession}, Options{})

	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.Error(t, err)

	assert.Empty(t, s.Accounts())
	_, ok, err := mem.Get(ctx, KeyAccounts)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestBcryptScheme(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := openStore(t, store, Options{Passwords: Bcrypt{Cost: 4}})

	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	accounts := s.Accounts()
	require.Len(t, accounts, 1)
	assert.NotEqual(t, "secret", accounts[0].Password)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := s.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.Name)
}

func TestSchemeByName(t *testing.T) {
	scheme, err := SchemeByName("plain")
	require.NoError(t, err)
	assert.Equal(t, PlainText{}, scheme)

	scheme, err = SchemeByName("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, Bcrypt{}, scheme)

	_, err = SchemeByName("md5")
	assert.Error(t, err)
}

func TestLatency_CancelledBeforeMutation(t *testing.T) {
	store := kv.NewMemoryStore()
	s := openStore(t, store, Options{Latency: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Signup(ctx, "Ada", "ada@example.com", "secret")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Login(ctx, DemoEmail, DemoPassword)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, s.Accounts())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, store.Keys())
}

func TestLatency_Elapses(t *testing.T) {
	s := openStore(t, kv.NewMemoryStore(), Options{Latency: 10 * time.Millisecond})

	start := time.Now()
	_, err := s.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestNewTimeOrderedID(t *testing.T) {
	a := NewTimeOrderedID()
	b := NewTimeOrderedID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
