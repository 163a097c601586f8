package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/unclebandit/mailing-backend/internal/controller"
	"github.com/unclebandit/mailing-backend/internal/metrics"
)

// Deps are the pieces the HTTP surface is assembled from.
type Deps struct {
	Users     controller.UserLookup
	Campaigns *controller.CampaignController
	Admin     *controller.AdminController
	// Ping checks the database for /health. Optional.
	Ping func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", health(d.Ping))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(controller.Authenticate(d.Users))

		r.Get("/stats", d.Campaigns.HomeStats)
		r.Get("/attempts", d.Campaigns.ListAttempts)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", d.Campaigns.ListCampaigns)
			r.Get("/{id}", d.Campaigns.GetCampaign)
			r.Post("/{id}/send", d.Campaigns.SendCampaign)
			r.Post("/{id}/cancel", d.Admin.CancelCampaign)
		})

		r.Post("/users/{id}/block", d.Admin.BlockUser)
		r.Post("/dispatch/run", d.Admin.RunDispatch)
	})

	return r
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Error().Err(err).Msg("health check failed")
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
