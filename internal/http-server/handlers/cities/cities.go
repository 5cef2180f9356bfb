package cities

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chizhikfront/internal/api/chizhik"
	"chizhikfront/internal/http-server/query"
	"chizhikfront/internal/http-server/respond"
)

type Searcher interface {
	SearchCities(ctx context.Context, search string, page int) ([]chizhik.City, error)
}

type Options struct {
	Log      *slog.Logger
	Searcher Searcher
	Timeout  time.Duration
}

func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.WriteError(w, 405, "method_not_allowed", "GET only")
			return
		}

		search, _ := query.String(r, "search")
		if len(strings.TrimSpace(search)) < 2 {
			respond.WriteError(w, 400, "bad_request", "search must be at least 2 characters")
			return
		}

		page := 1
		if v, present, err := query.Int(r, "page"); err != nil {
			respond.WriteError(w, 400, "bad_request", err.Error())
			return
		} else if present && v > 0 {
			page = v
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		items, err := opts.Searcher.SearchCities(ctx, search, page)
		if err != nil {
			log.Error("SearchCities failed", "err", err, "search", search)
			respond.WriteUpstreamError(w, "cities", err)
			return
		}

		respond.WriteJSON(w, 200, map[string]any{
			"count": len(items),
			"items": items,
		})
	}
}
