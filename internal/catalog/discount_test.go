package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chizhikfront/internal/api/chizhik/responses"
)

func price(v float64) *float64 { return &v }

func TestFilterDiscounted(t *testing.T) {
	items := []responses.Product{
		{ID: 1, Price: price(100), OldPrice: price(150)},
		{ID: 2, Price: price(100), OldPrice: price(90)},
		{ID: 3, Price: price(100), OldPrice: nil},
	}

	got := FilterDiscounted(items)

	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestFilterDiscounted_EqualPriceIsNotADiscount(t *testing.T) {
	items := []responses.Product{
		{ID: 1, Price: price(100), OldPrice: price(100)},
	}
	assert.Empty(t, FilterDiscounted(items))
}

func TestFilterDiscounted_MissingCurrentPriceExcluded(t *testing.T) {
	items := []responses.Product{
		{ID: 1, Price: nil, OldPrice: price(150)},
	}
	assert.Empty(t, FilterDiscounted(items))
}

func TestFilterDiscounted_PreservesOrder(t *testing.T) {
	items := []responses.Product{
		{ID: 3, Price: price(10), OldPrice: price(20)},
		{ID: 1, Price: price(10), OldPrice: price(5)},
		{ID: 2, Price: price(10), OldPrice: price(15)},
	}

	got := FilterDiscounted(items)

	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}
