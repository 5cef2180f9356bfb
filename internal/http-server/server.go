package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/http-server/handlers/categories"
	"chizhikfront/internal/http-server/handlers/cities"
	"chizhikfront/internal/http-server/handlers/deals"
	"chizhikfront/internal/http-server/handlers/offers"
	"chizhikfront/internal/http-server/handlers/product"
	"chizhikfront/internal/http-server/handlers/products"
	"chizhikfront/internal/http-server/middleware"
)

type Server struct {
	log *slog.Logger
	mux *http.ServeMux
}

func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, mux: http.NewServeMux()}
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = middleware.WithRequestID(h)
	h = middleware.RecoverPanic(s.log, h)
	h = middleware.AccessLog(s.log, h)
	return h
}

type Deps struct {
	Cities     cities.Searcher
	Storefront interface {
		categories.TreeLoader
		products.Lister
		deals.Promo
		offers.Provider
		product.InfoProvider
	}
	Timeout       time.Duration
	SearchTimeout time.Duration
}

func (s *Server) RegisterRoutes(dep Deps) {
	s.mux.HandleFunc("/cities", cities.NewGetHandler(cities.Options{
		Log:      s.log,
		Searcher: dep.Cities,
		Timeout:  dep.SearchTimeout,
	}))

	s.mux.HandleFunc("/categories", categories.NewGetHandler(categories.Options{
		Log:     s.log,
		Loader:  dep.Storefront,
		Timeout: dep.Timeout,
	}))

	s.mux.HandleFunc("/deals", deals.NewGetHandler(deals.Options{
		Log:     s.log,
		Promo:   dep.Storefront,
		Timeout: dep.Timeout,
	}))

	s.mux.HandleFunc("/products", products.NewGetHandler(products.Options{
		Log:     s.log,
		Lister:  dep.Storefront,
		Timeout: dep.Timeout,
	}))

	s.mux.HandleFunc("/product", product.NewGetHandler(product.Options{
		Log:      s.log,
		Provider: dep.Storefront,
		Timeout:  dep.Timeout,
	}))

	s.mux.HandleFunc("/offers", offers.NewGetHandler(offers.Options{
		Log:      s.log,
		Provider: dep.Storefront,
		Timeout:  dep.SearchTimeout,
	}))
}
