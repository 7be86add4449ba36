package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(pkgs []HealthPackage) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.ID
	}
	return out
}

func TestDefault(t *testing.T) {
	c := Default()

	all := c.All()
	require.Len(t, all, 8)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"}, ids(all))

	pkg, ok := c.ByID("3")
	require.True(t, ok)
	assert.Equal(t, "Executive Health Checkup", pkg.Name)
	assert.Equal(t, 999.0, pkg.Price)
	assert.Equal(t, 300.0, pkg.Discount())

	_, ok = c.ByID("99")
	assert.False(t, ok)

	assert.Equal(t, []string{"1", "2", "3"}, ids(c.Featured()))
	assert.Equal(t, []string{"Basic", "Comprehensive", "Premium", "Specialized"}, c.Categories())
	assert.Len(t, c.ByCategory("Specialized"), 5)
}

func TestByIDReturnsCopy(t *testing.T) {
	c := Default()

	pkg, _ := c.ByID("1")
	pkg.Inclusions[0] = "changed"
	*pkg.OriginalPrice = 1

	again, _ := c.ByID("1")
	assert.Equal(t, "Complete Blood Count (CBC)", again.Inclusions[0])
	assert.Equal(t, 399.0, *again.OriginalPrice)
}

func TestFilter(t *testing.T) {
	c := Default()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "default featured first", query: Query{}, want: []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{name: "search name case-insensitive", query: Query{Search: "HEART"}, want: []string{"8"}},
		{name: "search description", query: Query{Search: "busy professionals"}, want: []string{"3"}},
		{name: "category", query: Query{Category: "Basic"}, want: []string{"1"}},
		{name: "category all", query: Query{Category: CategoryAll, Search: "health package"}, want: []string{"2", "3", "4", "5", "8"}},
		{name: "price low", query: Query{Category: "Specialized", Sort: SortPriceLow}, want: []string{"7", "5", "4", "6", "8"}},
		{name: "price high", query: Query{Category: "Specialized", Sort: SortPriceHigh}, want: []string{"8", "6", "4", "5", "7"}},
		{name: "name", query: Query{Sort: SortName}, want: []string{"1", "2", "7", "3", "8", "5", "6", "4"}},
		{name: "no match", query: Query{Search: "dental"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Filter(tt.query)))
		})
	}
}

func TestFeaturedSortIsStable(t *testing.T) {
	c := New([]HealthPackage{
		{ID: "a"},
		{ID: "b", Featured: true},
		{ID: "c"},
		{ID: "d", Featured: true},
	})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(c.Filter(Query{Sort: SortFeatured})))
}

func TestNewIgnoresDuplicateIDs(t *testing.T) {
	c := New([]HealthPackage{{ID: "a", Name: "first"}, {ID: "a", Name: "second"}})
	require.Len(t, c.All(), 1)
	pkg, _ := c.ByID("a")
	assert.Equal(t, "first", pkg.Name)
}

func TestDiscountWithoutOriginalPrice(t *testing.T) {
	assert.Zero(t, HealthPackage{Price: 100}.Discount())
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	require.Len(t, slots, 8)
	assert.Equal(t, "09:00 AM", slots[0])
	assert.Equal(t, "05:00 PM", slots[7])
}
