// Package httpapi exposes the studio service over JSON/HTTP.
package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mockupstudio/internal/http/handlers"
	"mockupstudio/internal/infra"
	"mockupstudio/internal/middleware"
)

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	limit := opts.RateLimitPerMin
	if limit <= 0 {
		limit = 60
	}
	// Only calls that reach a generation provider are rate limited.
	generate := middleware.RateLimit(limit, time.Minute)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/products", app.Products)

	r.Route("/v1/settings", func(r chi.Router) {
		r.Get("/", app.GetSettings)
		r.Put("/", app.PutSettings)
	})

	r.Route("/v1/runs", func(r chi.Router) {
		r.Get("/", app.ListRuns)
		r.With(generate).Post("/", app.StartRun)
		r.Get("/current", app.CurrentRun)
		r.Delete("/current", app.ResetRun)
		r.Route("/{run_id}", func(r chi.Router) {
			r.With(generate).Post("/process", app.ProcessRun)
			r.With(generate).Post("/details", app.RunDetails)
			r.With(generate).Post("/mockups/{item_id}/retry", app.RetryMockup)
			r.Get("/images/{name}", app.RunImage)
			r.Get("/mockups.zip", app.RunMockupsZip)
		})
	})

	r.Post("/v1/redesign/prepare", app.PrepareRedesign)
	r.With(generate).Post("/v1/redesign", app.Redesign)
	r.With(generate).Post("/v1/remix", app.Remix)
	r.Post("/v1/remix/process", app.ProcessRemix)
	r.With(generate).Post("/v1/seedream", app.Seedream)
	r.Post("/v1/seedream/handoff", app.SeedreamHandoff)

	return r
}
