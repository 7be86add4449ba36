// Package metrics exposes storefront counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP services report into.
type Recorder interface {
	RecordLogin(result string)
	RecordSignup()
	RecordCartMutation(op string)
	RecordBookingCreated()
	RecordBookingStatus(status string)
	RecordHTTPStatus(statusCode int)
}

// Login results.
const (
	LoginSuccess = "success"
	LoginDemo    = "demo"
	LoginFailure = "invalid_credentials"
)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	logins         *prometheus.CounterVec
	signups        prometheus.Counter
	cartMutations  *prometheus.CounterVec
	bookings       prometheus.Counter
	bookingUpdates *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellhaven_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wellhaven_signups_total",
			Help: "Accounts registered.",
		}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellhaven_cart_mutations_total",
			Help: "Cart mutations by operation.",
		}, []string{"op"}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wellhaven_bookings_created_total",
			Help: "Bookings confirmed.",
		}),
		bookingUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellhaven_booking_status_updates_total",
			Help: "Booking status overwrites by new status.",
		}, []string{"status"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellhaven_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.logins,
		c.signups,
		c.cartMutations,
		c.bookings,
		c.bookingUpdates,
		c.httpStatus,
	)

	return c
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

func (c *Collector) RecordCartMutation(op string) {
	c.cartMutations.WithLabelValues(op).Inc()
}

func (c *Collector) RecordBookingCreated() {
	c.bookings.Inc()
}

func (c *Collector) RecordBookingStatus(status string) {
	c.bookingUpdates.WithLabelValues(status).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are disabled and in tests.
type Nop struct{}

func (Nop) RecordLogin(string)         {}
func (Nop) RecordSignup()              {}
func (Nop) RecordCartMutation(string)  {}
func (Nop) RecordBookingCreated()      {}
func (Nop) RecordBookingStatus(string) {}
func (Nop) RecordHTTPStatus(int)       {}
