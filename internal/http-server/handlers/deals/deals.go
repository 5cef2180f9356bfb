package deals

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/http-server/query"
	"chizhikfront/internal/http-server/respond"
	"chizhikfront/internal/storefront"
)

type Promo interface {
	LoadCity(ctx context.Context) storefront.City
	ResolvePromo(ctx context.Context, sess *storefront.Session) (int64, bool, error)
	GoToPage(ctx context.Context, sess *storefront.Session, page int) (storefront.ProductList, error)
}

type Options struct {
	Log     *slog.Logger
	Promo   Promo
	Timeout time.Duration
}

// NewGetHandler serves the deals surface: the promo category's products,
// discount-filtered when real discounts exist. A city with no promo
// category answers an empty list, not an error.
func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.WriteError(w, 405, "method_not_allowed", "GET only")
			return
		}
		if opts.Promo == nil {
			log.Error("deals handler misconfigured: promo is nil")
			respond.WriteInternalError(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		cityID, present := query.String(r, "city_id")
		if present && !storefront.ValidCityID(cityID) {
			respond.WriteError(w, 400, "bad_request", "city_id must be a UUID")
			return
		}
		city := storefront.City{ID: cityID}
		if !present {
			city = opts.Promo.LoadCity(ctx)
		}

		page := 1
		if v, pagePresent, err := query.Int(r, "page"); err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		} else if pagePresent && v > 0 {
			page = v
		}

		sess := storefront.NewSession(city)
		promoID, ok, err := opts.Promo.ResolvePromo(ctx, sess)
		if err != nil {
			log.Error("ResolvePromo failed", "err", err, "city_id", city.ID)
			respond.WriteUpstreamError(w, "deals", err)
			return
		}
		if !ok {
			respond.WriteJSON(w, 200, map[string]any{
				"city_id": city.ID,
				"page":    page,
				"next":    false,
				"count":   0,
				"items":   []any{},
			})
			return
		}

		sess.Mode = storefront.ModePromo
		list, err := opts.Promo.GoToPage(ctx, sess, page)
		if err != nil {
			log.Error("load deals failed", "err", err, "city_id", city.ID, "promo_cat_id", promoID, "page", page)
			respond.WriteUpstreamError(w, "deals", err)
			return
		}

		respond.WriteJSON(w, 200, map[string]any{
			"city_id":     city.ID,
			"category_id": promoID,
			"page":        list.Page,
			"next":        list.HasMore,
			"discounted":  list.Discounted,
			"count":       len(list.Items),
			"items":       list.Items,
		})
	}
}
