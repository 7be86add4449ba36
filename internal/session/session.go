// Package session owns the current authenticated identity and the list of
// registered accounts for one storage instance.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asad/wellhaven/internal/kv"
	"github.com/asad/wellhaven/internal/latency"
	"github.com/asad/wellhaven/internal/logging"
)

// Persisted keys.
const (
	KeyCurrentSession = "current-session"
	KeyAccounts       = "registered-accounts"
)

// Demo fallback credential. It authenticates even with no registered accounts.
const (
	DemoEmail    = "demo@wellhaven.com"
	DemoPassword = "demo123"
	DemoUserID   = "demo-user"
	DemoUserName = "Demo User"
)

// ErrInvalidCredentials is returned by Login when neither a registered account
// nor the demo credential matches.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Account is a registered user. Password holds whatever the configured
// PasswordScheme produced; with PlainText that is the password itself.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the authenticated identity, an Account without its password.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a Account) session() Session {
	return Session{ID: a.ID, Name: a.Name, Email: a.Email}
}

func demoSession() Session {
	return Session{ID: DemoUserID, Name: DemoUserName, Email: DemoEmail}
}

// Options configures a Store. Zero values are usable.
type Options struct {
	Logger logging.Logger

	// Passwords encodes passwords on signup and compares them on login.
	// Defaults to PlainText.
	Passwords PasswordScheme

	// Latency is a fixed delay applied before Signup and Login resolve.
	Latency time.Duration

	// NewID generates account ids. Defaults to a UUIDv7 string.
	NewID func() string
}

// NewTimeOrderedID returns a UUIDv7, whose leading bits are a millisecond timestamp.
func NewTimeOrderedID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store is the session/identity container. It is not safe for concurrent use;
// callers serialise access per storage instance.
type Store struct {
	kv       kv.Store
	logger   logging.Logger
	scheme   PasswordScheme
	latency  time.Duration
	newID    func() string
	accounts []Account
	current  *Session
}

// Open loads the persisted session and accounts from store. Values that fail
// to parse are treated as absent.
func Open(ctx context.Context, store kv.Store, opts Options) (*Store, error) {
	s := &Store{
		kv:      store,
		logger:  opts.Logger,
		scheme:  opts.Passwords,
		latency: opts.Latency,
		newID:   opts.NewID,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.scheme == nil {
		s.scheme = PlainText{}
	}
	if s.newID == nil {
		s.newID = NewTimeOrderedID
	}

	var current Session
	found, err := s.load(ctx, KeyCurrentSession, &current)
	if err != nil {
		return nil, err
	}
	if found {
		s.current = &current
	}

	var accounts []Account
	found, err = s.load(ctx, KeyAccounts, &accounts)
	if err != nil {
		return nil, err
	}
	if found {
		s.accounts = accounts
	}

	return s, nil
}

// load decodes key into dst. It reports false when the key is absent or unreadable.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding unreadable value",
			logging.String("key", key),
			logging.ErrorField(err),
		)
		return false, nil
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// Signup registers a new account and makes it the current session. There is no
// uniqueness or format validation; duplicate emails are accepted.
func (s *Store) Signup(ctx context.Context, name, email, password string) (Session, error) {
	if err := latency.Simulate(ctx, s.latency); err != nil {
		return Session{}, err
	}

	encoded, err := s.scheme.Encode(password)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode password: %w", err)
	}

	account := Account{
		ID:       s.newID(),
		Name:     name,
		Email:    email,
		Password: encoded,
	}

	accounts := make([]Account, len(s.accounts), len(s.accounts)+1)
	copy(accounts, s.accounts)
	accounts = append(accounts, account)
	if err := s.save(ctx, KeyAccounts, accounts); err != nil {
		return Session{}, err
	}
	previous := s.accounts
	s.accounts = accounts

	sess := account.session()
	if err := s.setCurrent(ctx, sess); err != nil {
		s.accounts = previous
		s.restoreAccounts(ctx, previous)
		return Session{}, err
	}

	s.logger.Info("account registered", logging.String("user_id", sess.ID))
	return sess, nil
}

// restoreAccounts writes back the account list of a signup that could not
// complete. A failure here is logged; storage then holds an account the
// in-memory state does not, until the next successful signup overwrites it.
func (s *Store) restoreAccounts(ctx context.Context, accounts []Account) {
	var err error
	if len(accounts) == 0 {
		err = s.kv.Remove(ctx, KeyAccounts)
	} else {
		err = s.save(ctx, KeyAccounts, accounts)
	}
	if err != nil {
		s.logger.Warn("failed to roll back registered accounts", logging.ErrorField(err))
	}
}

// Login authenticates against the first account whose email and password both
// match, then against the demo credential. A failed login leaves any existing
// session untouched.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	if err := latency.Simulate(ctx, s.latency); err != nil {
		return Session{}, err
	}

	sess, ok := s.match(email, password)
	if !ok {
		s.logger.Debug("login rejected", logging.String("email", email))
		return Session{}, ErrInvalidCredentials
	}

	if err := s.setCurrent(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Store) match(email, password string) (Session, bool) {
	for _, a := range s.accounts {
		if a.Email == email && s.scheme.Matches(a.Password, password) {
			return a.session(), true
		}
	}
	if email == DemoEmail && password == DemoPassword {
		return demoSession(), true
	}
	return Session{}, false
}

func (s *Store) setCurrent(ctx context.Context, sess Session) error {
	if err := s.save(ctx, KeyCurrentSession, sess); err != nil {
		return err
	}
	s.current = &sess
	return nil
}

// Logout clears the persisted session. Calling it without a session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, KeyCurrentSession); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.current = nil
	return nil
}

// Current returns the active session, if any. Sessions never expire.
func (s *Store) Current() (Session, bool) {
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Accounts returns the registered accounts in registration order.
func (s *Store) Accounts() []Account {
	return append([]Account(nil), s.accounts...)
}
