package products

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/http-server/query"
	"chizhikfront/internal/http-server/respond"
	"chizhikfront/internal/storefront"
)

type Lister interface {
	LoadCity(ctx context.Context) storefront.City
	GoToPage(ctx context.Context, sess *storefront.Session, page int) (storefront.ProductList, error)
}

type Options struct {
	Log     *slog.Logger
	Lister  Lister
	Timeout time.Duration
}

// NewGetHandler serves the category and search listings. The session is
// rebuilt per request; paging deep links go straight to the asked page.
func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.WriteError(w, 405, "method_not_allowed", "GET only")
			return
		}
		if opts.Lister == nil {
			log.Error("products handler misconfigured: lister is nil")
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
			city = opts.Lister.LoadCity(ctx)
		}

		categoryID, catPresent, err := query.Int64(r, "category_id")
		if err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		}
		search, searchPresent := query.String(r, "search")
		if !catPresent && !searchPresent {
			respond.WriteError(w, 400, "bad_request", "category_id or search is required")
			return
		}

		page := 1
		if v, pagePresent, err := query.Int(r, "page"); err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		} else if pagePresent && v > 0 {
			page = v
		}

		sess := storefront.NewSession(city)
		if searchPresent {
			sess.Mode = storefront.ModeSearch
			sess.Query = search
		} else {
			sess.Mode = storefront.ModeCategory
			sess.SelectedCatID = categoryID
		}

		list, err := opts.Lister.GoToPage(ctx, sess, page)
		if err != nil {
			log.Error("load products failed",
				"err", err, "city_id", city.ID, "category_id", categoryID, "search", search, "page", page)
			respond.WriteUpstreamError(w, "products", err)
			return
		}

		respond.WriteJSON(w, 200, map[string]any{
			"city_id":    city.ID,
			"page":       list.Page,
			"next":       list.HasMore,
			"discounted": list.Discounted,
			"count":      len(list.Items),
			"items":      list.Items,
		})
	}
}
