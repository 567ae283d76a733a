package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/assignments"
	audithttp "github.com/bfauber71/MyParkingMgr-sub002/internal/audit/http"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/auth"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/observability"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/properties"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/users"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/vehicles"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthzMiddleware    authz.Middleware
	AuthHandler        *auth.Handler
	PropertiesHandler  *properties.Handler
	VehiclesHandler    *vehicles.Handler
	AssignmentsHandler *assignments.Handler
	UsersHandler       *users.Handler
	AuditHandler       *audithttp.Handler
	Pool               *pgxpool.Pool
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router. Everything under /api requires an
// authenticated principal; role gates sit on the individual route groups.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
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
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.AuthzMiddleware)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthzMiddleware.RequirePrincipal)

		r.Route("/properties", func(r chi.Router) {
			params.PropertiesHandler.MountRoutes(r, params.AuthzMiddleware)
		})
		r.Route("/vehicles", func(r chi.Router) {
			params.VehiclesHandler.MountRoutes(r)
		})
		r.Route("/assignments", func(r chi.Router) {
			params.AssignmentsHandler.MountRoutes(r, params.AuthzMiddleware)
		})
		r.Route("/users", func(r chi.Router) {
			params.UsersHandler.MountRoutes(r, params.AuthzMiddleware)
		})
		r.Route("/audit", func(r chi.Router) {
			params.AuditHandler.MountRoutes(r, params.AuthzMiddleware)
		})
	})

	return r
}
