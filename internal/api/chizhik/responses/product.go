package responses

type ProductImage struct {
	Image string `json:"image"`
}

// Product carries the fields the client actually reads; optional numerics
// are pointers so "absent" stays distinguishable from zero.
type Product struct {
	ID       int64          `json:"id"`
	Title    string         `json:"title"`
	Price    *float64       `json:"price"`
	OldPrice *float64       `json:"old_price"`
	IsInout  bool           `json:"is_inout"`
	Images   []ProductImage `json:"images,omitempty"`
}

type ProductPage struct {
	Items []Product `json:"items"`
	Next  bool      `json:"next"`
}

// Discounted reports whether the recorded previous price is strictly
// above the current one. Missing values mean "not on discount".
func (p Product) Discounted() bool {
	return p.OldPrice != nil && p.Price != nil && *p.OldPrice > *p.Price
}
