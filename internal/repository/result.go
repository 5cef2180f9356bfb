package repository

import (
	"chizhikfront/internal/api/chizhik/responses"
)

type CityMeta struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type CategoryMeta struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// DealsResult is the snapshot the CLI writes: the deals surface of one city.
type DealsResult struct {
	FetchedAt  string              `json:"fetched_at"`
	City       *CityMeta           `json:"city,omitempty"`
	Category   *CategoryMeta       `json:"category,omitempty"`
	Discounted bool                `json:"discounted"`
	Products   []responses.Product `json:"products"`
	Count      int                 `json:"count"`
}

type CityReport struct {
	CityMeta
	DisplayCategories int    `json:"display_categories"`
	PromoCategoryID   int64  `json:"promo_category_id,omitempty"`
	Deals             int    `json:"deals"`
	Err               string `json:"err,omitempty"`
}

type CitiesResult struct {
	FetchedAt string       `json:"fetched_at"`
	Cities    []CityReport `json:"cities"`
	Count     int          `json:"count"`
}
