package responses

// Category is one node of the catalog tree. Depth is assigned by the
// backend (2 = top-level browsable category). Children order is
// meaningful: the first child is preferred when one has to be chosen.
type Category struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Depth    int        `json:"depth"`
	IsInout  bool       `json:"is_inout"`
	IsAdults bool       `json:"is_adults"`
	Slug     string     `json:"slug"`
	Image    string     `json:"image,omitempty"`
	Icon     string     `json:"icon,omitempty"`
	Children []Category `json:"children"`
}
