package storefront

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asad/wellhaven/internal/core"
	"github.com/asad/wellhaven/internal/logging"
	"github.com/asad/wellhaven/internal/metrics"
	"github.com/asad/wellhaven/internal/session"
	"github.com/asad/wellhaven/internal/state"
)

// AuthService exposes a profile's session/identity store.
type AuthService struct {
	profiles *state.Manager
	logger   logging.Logger
	metrics  metrics.Recorder
}

// NewAuthService creates an auth service.
func NewAuthService(profiles *state.Manager, logger logging.Logger, rec metrics.Recorder) *AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthService{profiles: profiles, logger: logger, metrics: rec}
}

func (s *AuthService) Name() string {
	return "auth"
}

// RegisterRoutes sets up:
//   - POST /{profile}/signup
//   - POST /{profile}/login
//   - POST /{profile}/logout
//   - GET  /{profile}/session
func (s *AuthService) RegisterRoutes(router chi.Router) {
	router.Post("/{profile}/signup", s.handleSignup)
	router.Post("/{profile}/login", s.handleLogin)
	router.Post("/{profile}/logout", s.handleLogout)
	router.Get("/{profile}/session", s.handleSession)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Session       *session.Session `json:"session,omitempty"`
}

func (s *AuthService) handleSignup(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var sess session.Session
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		var err error
		sess, err = p.Session.Signup(r.Context(), req.Name, req.Email, req.Password)
		return err
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "sign up")
		return
	}

	s.metrics.RecordSignup()
	s.logger.Info("signup completed",
		logging.String("profile", profile),
		logging.String("user_id", sess.ID),
	)
	writeJSON(w, s.logger, http.StatusCreated, sessionResponse{Authenticated: true, Session: &sess})
}

func (s *AuthService) handleLogin(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var sess session.Session
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		var err error
		sess, err = p.Session.Login(r.Context(), req.Email, req.Password)
		return err
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			s.metrics.RecordLogin(metrics.LoginFailure)
		}
		writeStoreError(w, s.logger, err, "log in")
		return
	}

	if sess.ID == session.DemoUserID {
		s.metrics.RecordLogin(metrics.LoginDemo)
	} else {
		s.metrics.RecordLogin(metrics.LoginSuccess)
	}
	writeJSON(w, s.logger, http.StatusOK, sessionResponse{Authenticated: true, Session: &sess})
}

func (s *AuthService) handleLogout(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		return p.Session.Logout(r.Context())
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *AuthService) handleSession(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	var resp sessionResponse
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		if sess, ok := p.Session.Current(); ok {
			resp = sessionResponse{Authenticated: true, Session: &sess}
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "read session")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, resp)
}

var _ core.Service = (*AuthService)(nil)
