package storefront

import (
	"chizhikfront/internal/catalog"
)

type Mode string

const (
	ModePromo    Mode = "promo"
	ModeCategory Mode = "category"
	ModeSearch   Mode = "search"
)

// City is the persisted selection scoping every catalog query.
type City struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the per-page state the original kept in a global object.
// It is owned by the caller and passed into every operation; the service
// itself stays stateless.
type Session struct {
	City City

	Tree        []catalog.Category
	DisplayCats []catalog.Category

	SelectedCat   *catalog.Category
	SelectedCatID int64
	PromoCatID    int64
	PromoResolved bool

	Mode    Mode
	Query   string
	Page    int
	HasMore bool
}

// NewSession starts a fresh promo-mode session for a city.
func NewSession(city City) *Session {
	return &Session{City: city, Mode: ModePromo, Page: 1}
}

// reset drops everything derived from the previous city.
func (s *Session) reset(city City) {
	*s = Session{City: city, Mode: ModePromo, Page: 1}
}
