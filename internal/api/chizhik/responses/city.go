package responses

// City is one hit of /geo/cities. FiasID is the UUID every catalog
// request is scoped by.
type City struct {
	FiasID  string `json:"fias_id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	HasShop bool   `json:"has_shop"`
}
