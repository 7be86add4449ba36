package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/asad/wellhaven/internal/cart"
	"github.com/asad/wellhaven/internal/core"
	"github.com/asad/wellhaven/internal/logging"
	"github.com/asad/wellhaven/internal/metrics"
	"github.com/asad/wellhaven/internal/state"
)

// BookingService books appointments for the profile's signed-in user and
// serves their dashboard.
type BookingService struct {
	profiles *state.Manager
	logger   logging.Logger
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewBookingService creates a booking service.
func NewBookingService(profiles *state.Manager, logger logging.Logger, rec metrics.Recorder) *BookingService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &BookingService{profiles: profiles, logger: logger, metrics: rec, now: time.Now}
}

func (s *BookingService) Name() string {
	return "bookings"
}

// RegisterRoutes sets up:
//   - POST  /{profile}              - book a package for the session user
//   - GET   /{profile}?asOf=        - the session user's dashboard
//   - PATCH /{profile}/{bookingId}  - change a booking's status
func (s *BookingService) RegisterRoutes(router chi.Router) {
	router.Post("/{profile}", s.handleCreateBooking)
	router.Get("/{profile}", s.handleDashboard)
	router.Patch("/{profile}/{bookingId}", s.handleUpdateStatus)
}

type createBookingRequest struct {
	PackageID string `json:"packageId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Notes     string `json:"notes"`
}

type updateStatusRequest struct {
	Status cart.Status `json:"status"`
}

type dashboardStats struct {
	cart.Summary
	CartItems int     `json:"cartItems"`
	CartTotal float64 `json:"cartTotal"`
}

type dashboardResponse struct {
	AsOf     string         `json:"asOf"`
	Upcoming []cart.Booking `json:"upcoming"`
	Past     []cart.Booking `json:"past"`
	All      []cart.Booking `json:"all"`
	Stats    dashboardStats `json:"stats"`
}

func (s *BookingService) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var booking cart.Booking
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		// An absent session leaves UserID empty, which CreateBooking rejects.
		sess, _ := p.Session.Current()

		var err error
		booking, err = p.Cart.CreateBooking(r.Context(), cart.BookingRequest{
			PackageID: req.PackageID,
			UserID:    sess.ID,
			Date:      req.Date,
			Time:      req.Time,
			Notes:     req.Notes,
		})
		return err
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "create booking")
		return
	}

	s.metrics.RecordBookingCreated()
	writeJSON(w, s.logger, http.StatusCreated, booking)
}

func (s *BookingService) handleDashboard(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")

	now := s.now()
	asOf := now
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := time.ParseInLocation(cart.DateLayout, raw, now.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "asOf must be a YYYY-MM-DD date")
			return
		}
		asOf = parsed
	}

	var resp dashboardResponse
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		sess, ok := p.Session.Current()
		if !ok {
			return errLoginRequired
		}

		mine := p.Cart.BookingsForUser(sess.ID)
		upcoming, past := cart.PartitionByDate(mine, asOf)

		resp = dashboardResponse{
			AsOf:     asOf.Format(cart.DateLayout),
			Upcoming: nonNil(upcoming),
			Past:     nonNil(past),
			All:      nonNil(mine),
			Stats: dashboardStats{
				Summary:   cart.Summarize(mine, asOf),
				CartItems: len(p.Cart.Items()),
				CartTotal: p.Cart.TotalPrice(),
			},
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "load bookings")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *BookingService) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	bookingID := chi.URLParam(r, "bookingId")

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var updated cart.Booking
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		sess, ok := p.Session.Current()
		if !ok {
			return errLoginRequired
		}

		existing, found := p.Cart.Booking(bookingID)
		if !found || existing.UserID != sess.ID {
			return errBookingNotFound
		}

		if err := p.Cart.UpdateBookingStatus(r.Context(), bookingID, req.Status); err != nil {
			return err
		}
		updated, _ = p.Cart.Booking(bookingID)
		return nil
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "update booking")
		return
	}

	s.metrics.RecordBookingStatus(string(updated.Status))
	s.logger.Info("booking status updated",
		logging.String("profile", profile),
		logging.String("booking_id", bookingID),
		logging.String("status", string(updated.Status)),
	)
	writeJSON(w, s.logger, http.StatusOK, updated)
}

func nonNil(bookings []cart.Booking) []cart.Booking {
	if bookings == nil {
		return []cart.Booking{}
	}
	return bookings
}

var _ core.Service = (*BookingService)(nil)
