package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/srgjo27/meeting_room/internal/adapter/handler/mwlogger"
	"github.com/srgjo27/meeting_room/internal/adapter/handler/response"
)

// NewRouter mounts the booking routes. Status changes are GET routes
// because that is how the admin console calls them.
func NewRouter(log *slog.Logger, bookings *BookingHandler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	})

	router.Route("/booking", func(r chi.Router) {
		r.Get("/list", bookings.List)
		r.Post("/add", bookings.Create)
		r.Get("/apply/{id}", bookings.Approve)
		r.Get("/reject/{id}", bookings.Reject)
		r.Get("/unbind/{id}", bookings.Release)
		r.Get("/urge/{id}", bookings.Escalate)
		r.Get("/{id}", bookings.Get)
	})

	return router
}
