package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", app.HomeHandler)
	r.Get("/ping", PingHandler)

	r.Get("/api/now", app.NowHandler)
	r.Get("/api/prime", app.PrimeHandler)
	r.Get("/api/schedule", app.ScheduleHandler)
	r.Get("/api/status", app.StatusHandler)

	fileServer := http.FileServer(http.Dir("./web/static"))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	return r
}
