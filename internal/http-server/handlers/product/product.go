package product

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/api/chizhik"
	"chizhikfront/internal/http-server/query"
	"chizhikfront/internal/http-server/respond"
	"chizhikfront/internal/storefront"
)

type InfoProvider interface {
	LoadCity(ctx context.Context) storefront.City
	ProductInfo(ctx context.Context, sess *storefront.Session, productID int64) (chizhik.Product, error)
}

type Options struct {
	Log      *slog.Logger
	Provider InfoProvider
	Timeout  time.Duration
}

// NewGetHandler serves the product-card detail.
func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.WriteError(w, 405, "method_not_allowed", "GET only")
			return
		}
		if opts.Provider == nil {
			log.Error("product handler misconfigured: provider is nil")
			respond.WriteInternalError(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		productID, present, err := query.Int64(r, "product_id")
		if err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		}
		if !present || productID <= 0 {
			respond.WriteError(w, 400, "bad_request", "product_id is required")
			return
		}

		cityID, cityPresent := query.String(r, "city_id")
		if cityPresent && !storefront.ValidCityID(cityID) {
			respond.WriteError(w, 400, "bad_request", "city_id must be a UUID")
			return
		}
		city := storefront.City{ID: cityID}
		if !cityPresent {
			city = opts.Provider.LoadCity(ctx)
		}

		sess := storefront.NewSession(city)
		p, err := opts.Provider.ProductInfo(ctx, sess, productID)
		if err != nil {
			log.Error("ProductInfo failed", "err", err, "product_id", productID, "city_id", city.ID)
			respond.WriteUpstreamError(w, "product", err)
			return
		}

		respond.WriteJSON(w, 200, map[string]any{
			"city_id": city.ID,
			"product": p,
		})
	}
}
