package storefront

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asad/wellhaven/internal/cart"
	"github.com/asad/wellhaven/internal/catalog"
	"github.com/asad/wellhaven/internal/core"
	"github.com/asad/wellhaven/internal/logging"
	"github.com/asad/wellhaven/internal/metrics"
	"github.com/asad/wellhaven/internal/state"
)

// CartService exposes a profile's shopping cart.
type CartService struct {
	profiles *state.Manager
	catalog  *catalog.Catalog
	logger   logging.Logger
	metrics  metrics.Recorder
}

// NewCartService creates a cart service.
func NewCartService(profiles *state.Manager, cat *catalog.Catalog, logger logging.Logger, rec metrics.Recorder) *CartService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &CartService{profiles: profiles, catalog: cat, logger: logger, metrics: rec}
}

func (s *CartService) Name() string {
	return "cart"
}

// RegisterRoutes sets up:
//   - GET    /{profile}                     - cart contents with total and count
//   - POST   /{profile}/items               - add a package (body: {"packageId"})
//   - PATCH  /{profile}/items/{packageId}   - merge date, time or quantity
//   - DELETE /{profile}/items/{packageId}   - remove a line
//   - DELETE /{profile}                     - empty the cart
func (s *CartService) RegisterRoutes(router chi.Router) {
	router.Get("/{profile}", s.handleGetCart)
	router.Delete("/{profile}", s.handleClearCart)
	router.Post("/{profile}/items", s.handleAddItem)
	router.Patch("/{profile}/items/{packageId}", s.handleUpdateItem)
	router.Delete("/{profile}/items/{packageId}", s.handleRemoveItem)
}

type cartResponse struct {
	Items []cart.CartItem `json:"items"`
	Total float64         `json:"total"`
	Count int             `json:"count"`
}

func viewCart(c *cart.Store) cartResponse {
	items := c.Items()
	if items == nil {
		items = []cart.CartItem{}
	}
	return cartResponse{Items: items, Total: c.TotalPrice(), Count: c.CartCount()}
}

type addItemRequest struct {
	PackageID string `json:"packageId"`
}

func (s *CartService) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "", http.StatusOK, nil)
}

func (s *CartService) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pkg, ok := s.catalog.ByID(req.PackageID)
	if !ok {
		writeError(w, http.StatusNotFound, "PackageNotFound", "The health package you're looking for doesn't exist.")
		return
	}

	s.mutate(w, r, "add", http.StatusCreated, func(c *cart.Store) error {
		return c.AddToCart(r.Context(), pkg)
	})
}

func (s *CartService) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageId")

	var update cart.ItemUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	s.mutate(w, r, "update", http.StatusOK, func(c *cart.Store) error {
		return c.UpdateCartItem(r.Context(), packageID, update)
	})
}

func (s *CartService) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "packageId")

	s.mutate(w, r, "remove", http.StatusOK, func(c *cart.Store) error {
		return c.RemoveFromCart(r.Context(), packageID)
	})
}

func (s *CartService) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "clear", http.StatusOK, func(c *cart.Store) error {
		return c.ClearCart(r.Context())
	})
}

// mutate runs fn against the profile's cart and responds with the resulting
// cart view. A nil fn only reads.
func (s *CartService) mutate(w http.ResponseWriter, r *http.Request, op string, status int, fn func(c *cart.Store) error) {
	profile := chi.URLParam(r, "profile")

	var resp cartResponse
	err := s.profiles.With(r.Context(), profile, func(p *state.Profile) error {
		if fn != nil {
			if err := fn(p.Cart); err != nil {
				return err
			}
		}
		resp = viewCart(p.Cart)
		return nil
	})
	if err != nil {
		writeStoreError(w, s.logger, err, "update cart")
		return
	}

	if op != "" {
		s.metrics.RecordCartMutation(op)
	}
	writeJSON(w, s.logger, status, resp)
}

var _ core.Service = (*CartService)(nil)
