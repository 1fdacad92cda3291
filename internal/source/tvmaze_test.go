package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kdimtricp/tvguide/internal/models"
)

const tvmazeFixture = `[
	{"airtime": "20:00", "runtime": 60, "show": {"name": "Show Foo", "network": {"name": "Channel X"}}},
	{"airtime": "21:15", "runtime": 0, "show": {"name": "Web Show", "network": null, "webChannel": {"name": "StreamIT"}}},
	{"airtime": "22:00", "runtime": 30, "show": {"name": "Orphan Show", "network": null}},
	{"airtime": "", "runtime": 30, "show": {"name": "No Time", "network": {"name": "Channel X"}}}
]`

func TestTVMazeFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tvmazeFixture))
	}))
	defer server.Close()

	src := NewTVMaze(server.URL)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	entries, err := src.Fetch(context.Background(), "IT", day)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotQuery != "country=IT&date=2024-05-01" {
		t.Errorf("Unexpected query: %s", gotQuery)
	}

	// Records without channel or airtime are dropped.
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Channel != "Channel X" || first.Title != "Show Foo" {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if first.Airtime != models.NewClock(20, 0) || first.Runtime != 60 {
		t.Errorf("Unexpected first entry timing: %+v", first)
	}
	if first.Source != "tvmaze" {
		t.Errorf("Expected source tvmaze, got %s", first.Source)
	}

	// Missing runtime defaults to 60; webChannel is the network fallback.
	second := entries[1]
	if second.Channel != "StreamIT" {
		t.Errorf("Expected webChannel fallback, got %s", second.Channel)
	}
	if second.Runtime != models.DefaultRuntime {
		t.Errorf("Expected default runtime, got %d", second.Runtime)
	}
}

func TestTVMazeFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewTVMaze(server.URL)
	if _, err := src.Fetch(context.Background(), "IT", time.Now()); err == nil {
		t.Fatal("Expected error on non-200 status")
	}
}

func TestTVMazeFetchBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	src := NewTVMaze(server.URL)
	if _, err := src.Fetch(context.Background(), "IT", time.Now()); err == nil {
		t.Fatal("Expected error on unparseable payload")
	}
}
