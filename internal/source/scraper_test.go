package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kdimtricp/tvguide/internal/models"
)

const nowPageFixture = `<html><body>
<div class="guide-channel">
	<h3 class="channel-name">Rai 1</h3>
	<div class="programme-title">Telegiornale</div>
</div>
<div class="guide-channel">
	<h3 class="channel-name">Shopping TV</h3>
	<div class="programme-title">Televendita</div>
</div>
<div class="guide-channel">
	<h3 class="channel-name">Canale 5</h3>
	<div class="programme-title">Quiz Show</div>
</div>
<div class="guide-channel">
	<h3 class="channel-name"></h3>
	<div class="programme-title">Orphan Programme</div>
</div>
</body></html>`

const primePageFixture = `<html><body>
<div class="guide-channel">
	<h3 class="channel-name">Rai 1</h3>
	<div class="programme-title">Film di Prima Serata</div>
</div>
</body></html>`

func TestScraperFetch(t *testing.T) {
	nowServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nowPageFixture))
	}))
	defer nowServer.Close()

	primeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(primePageFixture))
	}))
	defer primeServer.Close()

	cutoff := models.NewClock(20, 30)
	src := NewScraper(nowServer.URL, primeServer.URL, []string{"shopping tv"}, cutoff)
	src.now = func() time.Time {
		return time.Date(2024, 5, 1, 15, 45, 0, 0, time.Local)
	}

	entries, err := src.Fetch(context.Background(), "IT", time.Now())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	// Deny-listed and nameless channels are dropped: 2 from now + 1 from prime.
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	for _, entry := range entries {
		if entry.Channel == "Shopping TV" {
			t.Error("Deny-listed channel leaked through")
		}
		if entry.Source != "scraper" {
			t.Errorf("Expected source scraper, got %s", entry.Source)
		}
		if entry.Runtime != models.DefaultRuntime {
			t.Errorf("Scraped entries have no runtime and must default to %d, got %d", models.DefaultRuntime, entry.Runtime)
		}
	}

	// Now entries get the fetch moment as airtime.
	if entries[0].Airtime != models.NewClock(15, 45) {
		t.Errorf("Expected now entry airtime 15:45, got %s", entries[0].Airtime)
	}

	// Tonight entries get the prime cutoff.
	prime := entries[2]
	if prime.Title != "Film di Prima Serata" || prime.Airtime != cutoff {
		t.Errorf("Unexpected prime entry: %+v", prime)
	}
}

func TestScraperPageFailure(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer bad.Close()

	src := NewScraper(bad.URL, bad.URL, nil, models.NewClock(20, 30))
	if _, err := src.Fetch(context.Background(), "IT", time.Now()); err == nil {
		t.Fatal("Expected error when a guide page fails")
	}
}

func TestScraperUnsupportedCountry(t *testing.T) {
	src := NewScraper("http://127.0.0.1:0", "http://127.0.0.1:0", nil, models.NewClock(20, 30))
	entries, err := src.Fetch(context.Background(), "GB", time.Now())
	if err != nil || entries != nil {
		t.Errorf("Expected empty result for unsupported country, got %v / %v", entries, err)
	}
}
