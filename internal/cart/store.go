// Package cart owns the shopping cart and the booking list of one storage instance.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/asad/wellhaven/internal/catalog"
	"github.com/asad/wellhaven/internal/kv"
	"github.com/asad/wellhaven/internal/latency"
	"github.com/asad/wellhaven/internal/logging"
)

// Persisted keys.
const (
	KeyCartItems   = "cart-items"
	KeyAllBookings = "all-bookings"
)

// PackageLookup resolves package ids for bookings. *catalog.Catalog satisfies it.
type PackageLookup interface {
	ByID(id string) (catalog.HealthPackage, bool)
}

// Options configures a Store. Zero values are usable except Packages.
type Options struct {
	Logger   logging.Logger
	Packages PackageLookup

	// Latency is a fixed delay applied before CreateBooking resolves.
	Latency time.Duration

	NewID func() string
	Now   func() time.Time
}

// Store is the cart/booking container. Cart items are indexed by package id and
// bookings by booking id; parallel id slices keep insertion order for listing.
// It is not safe for concurrent use.
type Store struct {
	kv       kv.Store
	logger   logging.Logger
	packages PackageLookup
	latency  time.Duration
	newID    func() string
	now      func() time.Time

	items     map[string]*CartItem
	itemOrder []string

	bookings     map[string]*Booking
	bookingOrder []string
}

// Open loads the persisted cart and bookings. Values that fail to parse are
// treated as empty collections.
func Open(ctx context.Context, store kv.Store, opts Options) (*Store, error) {
	s := &Store{
		kv:       store,
		logger:   opts.Logger,
		packages: opts.Packages,
		latency:  opts.Latency,
		newID:    opts.NewID,
		now:      opts.Now,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.packages == nil {
		s.packages = catalog.Default()
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	if s.now == nil {
		s.now = time.Now
	}

	var items []CartItem
	if err := s.load(ctx, KeyCartItems, &items); err != nil {
		return nil, err
	}
	s.setItems(items)

	var bookings []Booking
	if err := s.load(ctx, KeyAllBookings, &bookings); err != nil {
		return nil, err
	}
	s.setBookings(bookings)

	return s, nil
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding unreadable value",
			logging.String("key", key),
			logging.ErrorField(err),
		)
		// Unmarshal may have filled part of dst before failing.
		switch v := dst.(type) {
		case *[]CartItem:
			*v = nil
		case *[]Booking:
			*v = nil
		}
	}
	return nil
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

func (s *Store) setItems(items []CartItem) {
	s.items = make(map[string]*CartItem, len(items))
	s.itemOrder = make([]string, 0, len(items))
	for i := range items {
		item := items[i]
		id := item.Package.ID
		if _, dup := s.items[id]; dup {
			s.logger.Warn("dropping duplicate cart item", logging.String("package_id", id))
			continue
		}
		s.items[id] = &item
		s.itemOrder = append(s.itemOrder, id)
	}
}

func (s *Store) setBookings(bookings []Booking) {
	s.bookings = make(map[string]*Booking, len(bookings))
	s.bookingOrder = make([]string, 0, len(bookings))
	for i := range bookings {
		b := bookings[i]
		if _, dup := s.bookings[b.ID]; dup {
			s.logger.Warn("dropping duplicate booking", logging.String("booking_id", b.ID))
			continue
		}
		s.bookings[b.ID] = &b
		s.bookingOrder = append(s.bookingOrder, b.ID)
	}
}

// Items returns the cart in insertion order.
func (s *Store) Items() []CartItem {
	out := make([]CartItem, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		out = append(out, *s.items[id])
	}
	return out
}

// persistCart writes the whole cart. On failure the in-memory cart is rolled
// back to before so memory and storage do not diverge.
func (s *Store) persistCart(ctx context.Context, before []CartItem) error {
	if err := s.save(ctx, KeyCartItems, s.Items()); err != nil {
		s.setItems(before)
		return err
	}
	return nil
}

// AddToCart increments the quantity of pkg's item, or appends a new item with
// quantity 1 and no schedule.
func (s *Store) AddToCart(ctx context.Context, pkg catalog.HealthPackage) error {
	before := s.Items()

	if item, ok := s.items[pkg.ID]; ok {
		item.Quantity++
	} else {
		s.items[pkg.ID] = &CartItem{Package: pkg, Quantity: 1}
		s.itemOrder = append(s.itemOrder, pkg.ID)
	}

	return s.persistCart(ctx, before)
}

// RemoveFromCart deletes the item for packageID. Unknown ids are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, packageID string) error {
	if _, ok := s.items[packageID]; !ok {
		return nil
	}
	before := s.Items()

	delete(s.items, packageID)
	for i, id := range s.itemOrder {
		if id == packageID {
			s.itemOrder = append(s.itemOrder[:i:i], s.itemOrder[i+1:]...)
			break
		}
	}

	return s.persistCart(ctx, before)
}

// UpdateCartItem merges update into the item for packageID. Unknown ids are
// ignored. A quantity below 1 is rejected with a *ValidationError.
func (s *Store) UpdateCartItem(ctx context.Context, packageID string, update ItemUpdate) error {
	if update.Quantity != nil && *update.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "Quantity must be at least 1."}
	}

	item, ok := s.items[packageID]
	if !ok {
		return nil
	}
	before := s.Items()

	if update.SelectedDate != nil {
		item.SelectedDate = *update.SelectedDate
	}
	if update.SelectedTime != nil {
		item.SelectedTime = *update.SelectedTime
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}

	return s.persistCart(ctx, before)
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) error {
	before := s.Items()
	s.setItems(nil)
	return s.persistCart(ctx, before)
}

// TotalPrice sums price * quantity. OriginalPrice is display-only and ignored.
func (s *Store) TotalPrice() float64 {
	var total float64
	for _, id := range s.itemOrder {
		item := s.items[id]
		total += item.Package.Price * float64(item.Quantity)
	}
	return total
}

// CartCount sums quantities across items.
func (s *Store) CartCount() int {
	var count int
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Bookings returns every booking of every user in insertion order.
func (s *Store) Bookings() []Booking {
	out := make([]Booking, 0, len(s.bookingOrder))
	for _, id := range s.bookingOrder {
		out = append(out, *s.bookings[id])
	}
	return out
}

// BookingsForUser returns userID's bookings in insertion order.
func (s *Store) BookingsForUser(userID string) []Booking {
	var out []Booking
	for _, id := range s.bookingOrder {
		if b := s.bookings[id]; b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out
}

// CreateBooking confirms an appointment for req.UserID. It does not touch the cart.
func (s *Store) CreateBooking(ctx context.Context, req BookingRequest) (Booking, error) {
	if req.UserID == "" {
		return Booking{}, &ValidationError{Field: "userId", Message: "Please login to book an appointment."}
	}
	if req.Date == "" || req.Time == "" {
		return Booking{}, &ValidationError{Field: "date", Message: "Please select both date and time for your appointment."}
	}

	pkg, ok := s.packages.ByID(req.PackageID)
	if !ok {
		return Booking{}, fmt.Errorf("%w: %s", ErrPackageNotFound, req.PackageID)
	}

	if err := latency.Simulate(ctx, s.latency); err != nil {
		return Booking{}, err
	}

	booking := Booking{
		ID:          s.newID(),
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		UserID:      req.UserID,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
		Status:      StatusConfirmed,
		BookedAt:    s.now().UTC(),
	}

	all := append(s.Bookings(), booking)
	if err := s.save(ctx, KeyAllBookings, all); err != nil {
		return Booking{}, err
	}
	s.setBookings(all)

	s.logger.Info("booking confirmed",
		logging.String("booking_id", booking.ID),
		logging.String("package_id", booking.PackageID),
		logging.String("user_id", booking.UserID),
	)
	return booking, nil
}

// UpdateBookingStatus overwrites a booking's status in place. Any status may
// replace any other; unknown booking ids are ignored.
func (s *Store) UpdateBookingStatus(ctx context.Context, bookingID string, status Status) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("Unknown booking status %q.", status)}
	}

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil
	}

	previous := b.Status
	b.Status = status
	if err := s.save(ctx, KeyAllBookings, s.Bookings()); err != nil {
		b.Status = previous
		return err
	}
	return nil
}

// Booking looks a booking up by id.
func (s *Store) Booking(id string) (Booking, bool) {
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, false
	}
	return *b, true
}
