package integration

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kdimtricp/tvguide/internal/api"
	"github.com/kdimtricp/tvguide/internal/fetch"
	"github.com/kdimtricp/tvguide/internal/guide"
	"github.com/kdimtricp/tvguide/internal/models"
	"github.com/kdimtricp/tvguide/internal/source"
)

// Upstream fixtures: tvmaze and the community feed agree on Show Foo
// and Prime Film, the mirror feed dissents on the 20:00 slot, the
// scraped pages only carry a deny-listed channel, and only tvmaze knows
// about Channel Y.

const tvmazeFixture = `[
	{"airtime": "20:00", "runtime": 60, "show": {"name": "Show Foo", "network": {"name": "Channel X"}}},
	{"airtime": "21:15", "runtime": 120, "show": {"name": "Prime Film", "network": {"name": "Channel X"}}},
	{"airtime": "18:00", "runtime": 30, "show": {"name": "Show Baz", "network": {"name": "Channel Y"}}}
]`

const communityFixture = `{"programmi": [
	{"channel": "Channel X", "title": "Show Foo", "start": "2024-05-01T20:00:00", "stop": "2024-05-01T21:00:00"},
	{"channel": "Channel X", "title": "Prime Film", "start": "2024-05-01T21:15:00", "stop": "2024-05-01T23:15:00"}
]}`

const mirrorFixture = `[
	{"name": "Channel X", "programs": [
		{"title": "Show Bar", "start": "2024-05-01T20:00:00", "stop": "2024-05-01T21:00:00"}
	]}
]`

const scrapedPageFixture = `<html><body>
<div class="guide-channel">
	<h3 class="channel-name">Shopping TV</h3>
	<div class="programme-title">Televendita</div>
</div>
</body></html>`

type TestServer struct {
	Server *httptest.Server
	App    *api.App
}

func fixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// setupTestServer wires real adapters against httptest upstreams and
// serves the API the way cmd/server does.
func setupTestServer(t *testing.T, at time.Time) *TestServer {
	t.Helper()

	// Templates are resolved relative to the project root.
	originalDir, _ := os.Getwd()
	if err := os.Chdir(filepath.Join(originalDir, "../..")); err != nil {
		t.Fatalf("Failed to change to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })

	tvmaze := fixtureServer(t, tvmazeFixture)
	community := fixtureServer(t, communityFixture)
	mirror := fixtureServer(t, mirrorFixture)
	page := fixtureServer(t, scrapedPageFixture)

	cutoff := models.NewClock(20, 30)
	sources := []source.Source{
		source.NewTVMaze(tvmaze.URL),
		source.NewCommunityFeed(community.URL),
		source.NewMirrorFeed([]string{mirror.URL}),
		source.NewScraper(page.URL, page.URL, []string{"Shopping TV"}, cutoff),
	}

	orchestrator := fetch.NewOrchestrator(sources, 5*time.Second)
	service := guide.NewService(orchestrator, guide.Config{
		Country:      "IT",
		MinAgreement: 2,
		PrimeCutoff:  cutoff,
	})

	app := &api.App{
		Guide: service,
		Name:  "Guida TV",
		Now:   func() time.Time { return at },
	}

	server := httptest.NewServer(api.NewRouter(app))
	t.Cleanup(server.Close)

	return &TestServer{Server: server, App: app}
}
