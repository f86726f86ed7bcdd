package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/audit"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/handlers"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/repository"
	"github.com/diewo77/go-crm/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	issuer  *auth.Issuer
	metrics *metrics.Metrics
	log     logrus.FieldLogger

	auth      *handlers.AuthHandler
	clients   *handlers.ClientHandler
	contracts *handlers.ContractHandler
	events    *handlers.EventHandler
	users     *handlers.UserHandler
}

// NewApp wires the store, the session issuer and the lifecycle services
// behind the JSON routes.
func NewApp(db *gorm.DB, cfg *config.Config, log logrus.FieldLogger, registry *prometheus.Registry, opts ...services.Option) (*App, error) {
	store := repository.New(db)
	issuer, err := auth.NewIssuer(store, []byte(cfg.Auth.SessionSecret), auth.WithTTL(cfg.Auth.SessionTTL))
	if err != nil {
		return nil, err
	}
	m := metrics.New(registry)

	sink := audit.Multi{audit.NewDBSink(db, log), audit.NewLogSink(log)}
	opts = append([]services.Option{
		services.WithAudit(sink),
		services.WithLogger(log),
		services.WithLocation(cfg.App.EventLocation()),
	}, opts...)

	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		issuer:    issuer,
		metrics:   m,
		log:       log,
		auth:      handlers.NewAuthHandler(issuer, m),
		clients:   handlers.NewClientHandler(services.NewClientService(store, opts...), m),
		contracts: handlers.NewContractHandler(services.NewContractService(store, opts...), m),
		events:    handlers.NewEventHandler(services.NewEventService(store, opts...), m),
		users:     handlers.NewUserHandler(services.NewUserService(store, opts...), m),
	}
	app.setupRoutes()
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The identity is attached first so the request seen by the mux, and
	// carrying its route pattern, is the one the metrics middleware holds.
	handler := auth.Middleware(a.issuer)(a.withLogging(a.metrics.Middleware(a.mux)))
	handler.ServeHTTP(w, r)
}

func (a *App) requireAuth(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", a.metrics.Handler())
	a.mux.HandleFunc("POST /login", a.auth.Login)

	// Session
	a.mux.Handle("POST /logout", a.requireAuth(a.auth.Logout))
	a.mux.Handle("GET /me", a.requireAuth(a.auth.Me))

	// Clients
	ch := a.clients
	a.mux.Handle("GET /clients", a.requireAuth(ch.List))
	a.mux.Handle("POST /clients", a.requireAuth(ch.Create))
	a.mux.Handle("GET /clients/{id}", a.requireAuth(ch.View))
	a.mux.Handle("PATCH /clients/{id}", a.requireAuth(ch.Update))
	a.mux.Handle("DELETE /clients/{id}", a.requireAuth(ch.Delete))

	// Contracts
	kh := a.contracts
	a.mux.Handle("GET /contracts", a.requireAuth(kh.List))
	a.mux.Handle("POST /contracts", a.requireAuth(kh.Create))
	a.mux.Handle("GET /contracts/unsigned", a.requireAuth(kh.ListUnsigned))
	a.mux.Handle("GET /contracts/signed", a.requireAuth(kh.ListSigned))
	a.mux.Handle("PATCH /contracts/{id}", a.requireAuth(kh.Update))
	a.mux.Handle("DELETE /contracts/{id}", a.requireAuth(kh.Delete))

	// Events
	eh := a.events
	a.mux.Handle("GET /events", a.requireAuth(eh.List))
	a.mux.Handle("POST /events", a.requireAuth(eh.Create))
	a.mux.Handle("GET /events/unassigned", a.requireAuth(eh.ListUnassigned))
	a.mux.Handle("GET /events/mine", a.requireAuth(eh.ListMine))
	a.mux.Handle("POST /events/{id}/support", a.requireAuth(eh.AssignSupport))
	a.mux.Handle("PATCH /events/{id}", a.requireAuth(eh.Update))
	a.mux.Handle("DELETE /events/{id}", a.requireAuth(eh.Delete))

	// Users (gestion)
	uh := a.users
	a.mux.Handle("POST /users", a.requireAuth(uh.Create))
	a.mux.Handle("GET /users/support", a.requireAuth(uh.ListSupport))
	a.mux.Handle("PATCH /users/{email}", a.requireAuth(uh.Update))
	a.mux.Handle("DELETE /users/{email}", a.requireAuth(uh.Delete))
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		a.log.WithError(err).Warn("health check failed")
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withLogging adds request logging middleware.
func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"route":    r.Pattern,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
