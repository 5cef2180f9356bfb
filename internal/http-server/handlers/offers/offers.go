package offers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/api/chizhik"
	"chizhikfront/internal/http-server/respond"
)

type Provider interface {
	ActiveOffers(ctx context.Context) (chizhik.Offers, bool)
}

type Options struct {
	Log      *slog.Logger
	Provider Provider
	Timeout  time.Duration
}

// NewGetHandler serves the offers banner. The banner is optional by
// contract: when the backend has nothing (or fails), the response says so
// instead of erroring the page.
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
		if opts.Provider == nil {
			log.Error("offers handler misconfigured: provider is nil")
			respond.WriteInternalError(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		banner, ok := opts.Provider.ActiveOffers(ctx)
		if !ok {
			respond.WriteJSON(w, 200, map[string]any{"active": false})
			return
		}

		respond.WriteJSON(w, 200, map[string]any{
			"active": true,
			"offers": banner,
		})
	}
}
