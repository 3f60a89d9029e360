package app

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/Raimguhinov/sleep-monster/internal/auth"
	"github.com/Raimguhinov/sleep-monster/internal/config"
	mwlogger "github.com/Raimguhinov/sleep-monster/internal/delivery/http/middleware/logger"
	"github.com/Raimguhinov/sleep-monster/internal/usecase"
	"github.com/Raimguhinov/sleep-monster/pkg/logger"
)

// NewRouter mounts the JSON API. Everything but the calendar feed sits behind
// auth when credentials are configured.
func NewRouter(svc *usecase.Service, l *logger.Logger, cfg *config.Config) (http.Handler, error) {
	authProvider, err := auth.New(cfg.App.Name, cfg.HTTP.User, cfg.HTTP.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth provider: %w", err)
	}

	h := &handler{svc: svc, logger: l.Component("http")}

	s := chi.NewRouter()
	s.Use(middleware.RequestID)
	s.Use(mwlogger.New(l))
	s.Use(middleware.Recoverer)
	s.Use(corsMiddleware(cfg))

	s.Get("/alarms.ics", h.feed)

	s.Group(func(r chi.Router) {
		r.Use(authProvider.Middleware())

		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", h.listAlarms)
			r.Post("/", h.createAlarm)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getAlarm)
				r.Put("/", h.updateAlarm)
				r.Delete("/", h.deleteAlarm)
				r.Post("/toggle", h.toggleAlarm)
				r.Post("/respond", h.respond)
			})
		})

		r.Get("/triggers", h.triggers)
		r.Post("/resume", h.resume)

		r.Route("/creature", func(r chi.Router) {
			r.Get("/", h.getCreature)
			r.Post("/revive", h.revive)
			r.Put("/name", h.rename)
			r.Post("/equip", h.equip)
			r.Delete("/equip/{slot}", h.unequip)
		})

		r.Get("/records", h.records)
		r.Get("/stats", h.stats)
		r.Get("/summary", h.summary)
		r.Get("/catalog", h.catalog)
	})

	return s, nil
}

func corsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	c := cfg.HTTP.CORS
	return cors.New(cors.Options{
		AllowedOrigins:     c.AllowedOrigins,
		AllowedMethods:     c.AllowedMethods,
		AllowedHeaders:     c.AllowedHeaders,
		ExposedHeaders:     c.ExposedHeaders,
		AllowCredentials:   c.AllowCredentials,
		OptionsPassthrough: c.OptionsPassthrough,
		Debug:              c.Debug,
	}).Handler
}
