package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/menuforge/menuforge/internal/businesses"
	"github.com/menuforge/menuforge/internal/categories"
	"github.com/menuforge/menuforge/internal/items"
	"github.com/menuforge/menuforge/internal/observability"
	"github.com/menuforge/menuforge/internal/profiles"
	"github.com/menuforge/menuforge/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Resolver        PrincipalResolver
	ProfileHandler  *profiles.Handler
	BusinessHandler *businesses.Handler
	CategoryHandler *categories.Handler
	ItemHandler     *items.Handler
	UserHandler     *users.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(params.Logger, params.Resolver))

		r.Route("/profile", params.ProfileHandler.MountRoutes)
		r.Route("/businesses", func(r chi.Router) {
			params.BusinessHandler.MountRoutes(r)
			r.Route("/{businessID}/categories", params.CategoryHandler.MountBusinessRoutes)
		})
		r.Route("/categories", func(r chi.Router) {
			params.CategoryHandler.MountRoutes(r)
			r.Route("/{categoryID}/items", params.ItemHandler.MountCategoryRoutes)
		})
		r.Route("/items", params.ItemHandler.MountRoutes)
		r.Route("/admin", params.UserHandler.MountRoutes)
	})

	return r
}
