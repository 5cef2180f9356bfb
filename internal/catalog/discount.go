package catalog

import (
	"chizhikfront/internal/api/chizhik/responses"
)

// FilterDiscounted keeps the products whose old price is present and
// strictly above the current one, preserving order.
func FilterDiscounted(items []responses.Product) []responses.Product {
	out := make([]responses.Product, 0, len(items))
	for _, p := range items {
		if p.Discounted() {
			out = append(out, p)
		}
	}
	return out
}
