package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"nudge/internal/auth"
	"nudge/internal/config"
	"nudge/internal/http/handler"
	mw "nudge/internal/http/middleware"
	"nudge/internal/reminder"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, dispatcher *reminder.Dispatcher) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	dh := &handler.DispatchHandler{Dispatcher: dispatcher, DefaultLimit: cfg.DefaultBatchLimit}
	r.Route("/reminders", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))
		r.Use(auth.RequireRole(auth.RoleAdmin))

		r.Post("/dispatch", dh.Dispatch)
	})

	return r
}
