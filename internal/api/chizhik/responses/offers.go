package responses

// Offers is the active promo banner payload, rendering-only.
type Offers struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Background  string `json:"background"`
	Image       string `json:"image"`
	Logo        string `json:"logo"`
	TitleColor  string `json:"title_color"`
}
