package storefront

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/asad/wellhaven/internal/catalog"
	"github.com/asad/wellhaven/internal/core"
	"github.com/asad/wellhaven/internal/logging"
)

// CatalogService serves the read-only package catalog.
type CatalogService struct {
	catalog *catalog.Catalog
	logger  logging.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(cat *catalog.Catalog, logger logging.Logger) *CatalogService {
	return &CatalogService{catalog: cat, logger: logger}
}

func (s *CatalogService) Name() string {
	return "catalog"
}

// RegisterRoutes sets up:
//   - GET /packages?search=&category=&sort= - filtered package list
//   - GET /packages/{id}                    - one package
//   - GET /featured                          - featured packages
//   - GET /categories                        - category names
//   - GET /timeslots                         - bookable appointment times
func (s *CatalogService) RegisterRoutes(router chi.Router) {
	router.Get("/packages", s.handleListPackages)
	router.Get("/packages/{id}", s.handleGetPackage)
	router.Get("/featured", s.handleFeatured)
	router.Get("/categories", s.handleCategories)
	router.Get("/timeslots", s.handleTimeSlots)
}

type packageListResponse struct {
	Packages []catalog.HealthPackage `json:"packages"`
	Total    int                     `json:"total"`
	Showing  int                     `json:"showing"`
}

func (s *CatalogService) handleListPackages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pkgs := s.catalog.Filter(catalog.Query{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})

	writeJSON(w, s.logger, http.StatusOK, packageListResponse{
		Packages: pkgs,
		Total:    len(s.catalog.All()),
		Showing:  len(pkgs),
	})
}

func (s *CatalogService) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pkg, ok := s.catalog.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "PackageNotFound", "The health package you're looking for doesn't exist.")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, struct {
		catalog.HealthPackage
		Discount float64 `json:"discount"`
	}{pkg, pkg.Discount()})
}

func (s *CatalogService) handleFeatured(w http.ResponseWriter, r *http.Request) {
	pkgs := s.catalog.Featured()
	if pkgs == nil {
		pkgs = []catalog.HealthPackage{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{"packages": pkgs})
}

func (s *CatalogService) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{"categories": s.catalog.Categories()})
}

func (s *CatalogService) handleTimeSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]interface{}{"timeSlots": catalog.TimeSlots()})
}

var _ core.Service = (*CatalogService)(nil)
