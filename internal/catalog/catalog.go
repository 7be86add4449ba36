// Package catalog holds the read-only health package reference data.
package catalog

import (
	"sort"
	"strings"
)

// HealthPackage is one bookable checkup package.
type HealthPackage struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Duration      string   `json:"duration"`
	Inclusions    []string `json:"inclusions"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Featured      bool     `json:"featured,omitempty"`
}

// Discount is the struck-through saving shown next to the price. It is never
// applied to cart totals.
func (p HealthPackage) Discount() float64 {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price {
		return 0
	}
	return *p.OriginalPrice - p.Price
}

// Sort orders accepted by Filter.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
)

// CategoryAll matches every category in a Query.
const CategoryAll = "all"

// Query narrows and orders the package list.
type Query struct {
	Search   string
	Category string
	Sort     string
}

// Catalog is an immutable, ordered set of packages.
type Catalog struct {
	packages []HealthPackage
	byID     map[string]int
}

// New builds a catalog from pkgs. Later duplicates of an id are ignored.
func New(pkgs []HealthPackage) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(pkgs))}
	for _, p := range pkgs {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.packages)
		c.packages = append(c.packages, p)
	}
	return c
}

// Default returns the catalog built into the storefront.
func Default() *Catalog {
	return New(builtinPackages())
}

// All returns every package in catalog order.
func (c *Catalog) All() []HealthPackage {
	return clonePackages(c.packages)
}

// ByID looks a package up by id.
func (c *Catalog) ByID(id string) (HealthPackage, bool) {
	i, ok := c.byID[id]
	if !ok {
		return HealthPackage{}, false
	}
	return clonePackage(c.packages[i]), true
}

// Featured returns the packages flagged as featured, in catalog order.
func (c *Catalog) Featured() []HealthPackage {
	var out []HealthPackage
	for _, p := range c.packages {
		if p.Featured {
			out = append(out, clonePackage(p))
		}
	}
	return out
}

// ByCategory returns the packages of one category, in catalog order.
func (c *Catalog) ByCategory(category string) []HealthPackage {
	var out []HealthPackage
	for _, p := range c.packages {
		if p.Category == category {
			out = append(out, clonePackage(p))
		}
	}
	return out
}

// Categories lists the distinct categories in order of first appearance.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.packages {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Filter applies a search term, a category and a sort order.
// Search is a case-insensitive substring match on name or description.
// Unknown sort orders behave like SortFeatured.
func (c *Catalog) Filter(q Query) []HealthPackage {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]HealthPackage, 0, len(c.packages))
	for _, p := range c.packages {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && p.Category != q.Category {
			continue
		}
		out = append(out, clonePackage(p))
	}

	switch q.Sort {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Featured && !out[j].Featured })
	}
	return out
}

// TimeSlots returns the appointment times offered for every package.
func TimeSlots() []string {
	return []string{
		"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
		"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
	}
}

func clonePackage(p HealthPackage) HealthPackage {
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		p.OriginalPrice = &v
	}
	p.Inclusions = append([]string(nil), p.Inclusions...)
	return p
}

func clonePackages(pkgs []HealthPackage) []HealthPackage {
	out := make([]HealthPackage, len(pkgs))
	for i, p := range pkgs {
		out[i] = clonePackage(p)
	}
	return out
}
