package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/kdimtricp/tvguide/internal/guide"
)

// NoDataState is shown when the merged schedule has nothing for the
// requested view.
const NoDataState = "Nessun dato"

// App holds the handler dependencies. Now is injectable so tests can
// pin the query moment; it defaults to time.Now.
type App struct {
	Guide *guide.Service
	Name  string
	Now   func() time.Time
}

func (app *App) moment() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) HomeHandler(w http.ResponseWriter, r *http.Request) {
	now := app.moment()
	app.Guide.EnsureFresh(r.Context(), now)

	state := NoDataState
	if airing := app.Guide.NowAiring(now); len(airing) > 0 {
		state = fmt.Sprintf("%s (%s)", airing[0].Title, airing[0].Channel)
	}

	tmplPath := filepath.Join("web", "templates", "base.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title string
		State string
	}{
		Title: app.Name,
		State: state,
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return
	}
}

type nowResponse struct {
	State    string            `json:"state"`
	Programs map[string]string `json:"programmi_correnti"`
	Source   string            `json:"fonte"`
}

func (app *App) NowHandler(w http.ResponseWriter, r *http.Request) {
	now := app.moment()
	app.Guide.EnsureFresh(r.Context(), now)

	airing := app.Guide.NowAiring(now)

	resp := nowResponse{
		State:    NoDataState,
		Programs: make(map[string]string, len(airing)),
		Source:   "multi",
	}
	if len(airing) > 0 {
		resp.State = fmt.Sprintf("%s (%s)", airing[0].Title, airing[0].Channel)
	}
	for _, entry := range airing {
		resp.Programs[entry.Channel] = entry.Title
	}

	respondJSON(w, resp)
}

type primeResponse struct {
	State    string            `json:"state"`
	Programs map[string]string `json:"prima_serata"`
	Source   string            `json:"fonte"`
}

func (app *App) PrimeHandler(w http.ResponseWriter, r *http.Request) {
	app.Guide.EnsureFresh(r.Context(), app.moment())

	prime := app.Guide.PrimeTime()

	resp := primeResponse{
		State:    NoDataState,
		Programs: make(map[string]string, len(prime)),
		Source:   "multi",
	}
	if len(prime) > 0 {
		resp.State = fmt.Sprintf("%s (%s)", prime[0].Title, prime[0].Channel)
	}
	for _, entry := range prime {
		resp.Programs[entry.Channel] = fmt.Sprintf("%s alle %s", entry.Title, entry.Airtime)
	}

	respondJSON(w, resp)
}

func (app *App) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	app.Guide.EnsureFresh(r.Context(), app.moment())
	respondJSON(w, app.Guide.Schedule())
}

func (app *App) StatusHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, app.Guide.Status())
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Error encoding response: %v", err)
	}
}
