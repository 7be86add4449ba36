package cart

import (
	"errors"
	"time"

	"github.com/asad/wellhaven/internal/catalog"
)

// CartItem is a pending selection of one package. There is at most one item
// per package id and Quantity is at least 1.
type CartItem struct {
	Package      catalog.HealthPackage `json:"package"`
	Quantity     int                   `json:"quantity"`
	SelectedDate string                `json:"selectedDate,omitempty"`
	SelectedTime string                `json:"selectedTime,omitempty"`
}

// ItemUpdate is a partial update merged into a CartItem. Nil fields are left alone.
type ItemUpdate struct {
	SelectedDate *string `json:"selectedDate,omitempty"`
	SelectedTime *string `json:"selectedTime,omitempty"`
	Quantity     *int    `json:"quantity,omitempty"`
}

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is a confirmed appointment. Bookings of every user share one list
// and are never deleted.
type Booking struct {
	ID          string    `json:"id"`
	PackageID   string    `json:"packageId"`
	PackageName string    `json:"packageName"`
	UserID      string    `json:"userId"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Notes       string    `json:"notes,omitempty"`
	Status      Status    `json:"status"`
	BookedAt    time.Time `json:"bookedAt"`
}

// BookingRequest carries the inputs of CreateBooking.
type BookingRequest struct {
	PackageID string
	UserID    string
	Date      string
	Time      string
	Notes     string
}

// DateLayout is the format of Booking.Date and CartItem.SelectedDate.
const DateLayout = "2006-01-02"

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrPackageNotFound is returned when a booking names a package the catalog does not have.
var ErrPackageNotFound = errors.New("package not found")

// ValidationError carries a message meant to be shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
