package chizhik

import (
	"context"
	"log/slog"
	"net/http"

	"chizhikfront/internal/api/chizhik/endpoints"
	"chizhikfront/internal/api/chizhik/responses"
	"chizhikfront/internal/client"
)

type City = responses.City
type Category = responses.Category
type Product = responses.Product
type ProductPage = responses.ProductPage
type Offers = responses.Offers

type ChizhikService interface {
	SearchCities(ctx context.Context, search string, page int) ([]City, error)
	CategoryTree(ctx context.Context, cityID string) ([]Category, error)
	Products(ctx context.Context, cityID string, categoryID int64, page int, search string) (ProductPage, error)
	ActiveOffers(ctx context.Context) (Offers, error)
	ProductInfo(ctx context.Context, productID int64, cityID string) (Product, error)
}

type service struct {
	// slow: tree/products/offers, the backend may generate these on demand.
	// fast: city search/autocomplete, shorter timeout and fewer attempts.
	slow *endpoints.Client
	fast *endpoints.Client
	log  *slog.Logger
}

func New(slow, fast client.Transport, baseURL, prefix string, logger *slog.Logger) ChizhikService {
	if baseURL == "" {
		baseURL = "https://feefomit-chizhick-deb9.twc1.net"
	}
	if prefix == "" {
		prefix = "/api"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if fast == nil {
		fast = slow
	}

	s := &service{log: logger}
	s.slow = endpoints.New(slow, baseURL, prefix, s.applyDefaultHeaders)
	s.fast = endpoints.New(fast, baseURL, prefix, s.applyDefaultHeaders)
	return s
}

func (s *service) applyDefaultHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "chizhikfront/1.0")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")
}

func (s *service) SearchCities(ctx context.Context, search string, page int) ([]City, error) {
	return s.fast.SearchCities(ctx, search, page)
}

func (s *service) CategoryTree(ctx context.Context, cityID string) ([]Category, error) {
	return s.slow.CategoryTree(ctx, cityID)
}

func (s *service) Products(ctx context.Context, cityID string, categoryID int64, page int, search string) (ProductPage, error) {
	return s.slow.Products(ctx, cityID, categoryID, page, search)
}

func (s *service) ActiveOffers(ctx context.Context) (Offers, error) {
	return s.slow.ActiveOffers(ctx)
}

func (s *service) ProductInfo(ctx context.Context, productID int64, cityID string) (Product, error) {
	return s.slow.ProductInfo(ctx, productID, cityID)
}
