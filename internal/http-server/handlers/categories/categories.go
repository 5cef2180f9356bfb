package categories

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/http-server/query"
	"chizhikfront/internal/http-server/respond"
	"chizhikfront/internal/storefront"
)

type TreeLoader interface {
	LoadTree(ctx context.Context, sess *storefront.Session) error
	LoadCity(ctx context.Context) storefront.City
}

type Options struct {
	Log     *slog.Logger
	Loader  TreeLoader
	Timeout time.Duration
}

type Tile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

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
		if opts.Loader == nil {
			log.Error("categories handler misconfigured: loader is nil")
			respond.WriteInternalError(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		city, ok := cityFromRequest(ctx, r, opts.Loader)
		if !ok {
			respond.WriteError(w, 400, "bad_request", "city_id must be a UUID")
			return
		}

		sess := storefront.NewSession(city)
		if err := opts.Loader.LoadTree(ctx, sess); err != nil {
			log.Error("LoadTree failed", "err", err, "city_id", city.ID)
			respond.WriteUpstreamError(w, "categories", err)
			return
		}

		tiles := make([]Tile, 0, len(sess.DisplayCats))
		for _, c := range sess.DisplayCats {
			tiles = append(tiles, Tile{ID: c.ID, Name: c.Name, Slug: c.Slug, Image: c.Image, Icon: c.Icon})
		}

		respond.WriteJSON(w, 200, map[string]any{
			"city_id":    city.ID,
			"fetched_at": time.Now().UTC().Format(time.RFC3339),
			"count":      len(tiles),
			"categories": tiles,
		})
	}
}

// cityFromRequest reads ?city_id= or falls back to the persisted selection.
func cityFromRequest(ctx context.Context, r *http.Request, loader TreeLoader) (storefront.City, bool) {
	if id, present := query.String(r, "city_id"); present {
		if !storefront.ValidCityID(id) {
			return storefront.City{}, false
		}
		return storefront.City{ID: id}, true
	}
	return loader.LoadCity(ctx), true
}
