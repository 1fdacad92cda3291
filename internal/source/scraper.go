package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kdimtricp/tvguide/internal/models"
)

// Markup hooks on the scraped guide pages: every channel block carries
// the channel name in a header element and its programme title in the
// first following title element.
const (
	channelBlockSelector = "div.guide-channel"
	channelNameSelector  = ".channel-name"
	programTitleSelector = ".programme-title"
)

// Scraper extracts (channel, title) pairs from two semi-structured HTML
// pages: the "now on air" page and the "tonight" page. The now page has
// no explicit start times, so entries get the fetch moment as airtime;
// tonight entries get the prime-time cutoff.
type Scraper struct {
	nowURL      string
	primeURL    string
	denied      map[string]bool
	primeCutoff models.Clock
	now         func() time.Time
	httpClient  *http.Client
}

func NewScraper(nowURL, primeURL string, deniedChannels []string, primeCutoff models.Clock) *Scraper {
	denied := make(map[string]bool, len(deniedChannels))
	for _, channel := range deniedChannels {
		denied[strings.ToLower(strings.TrimSpace(channel))] = true
	}
	if !primeCutoff.Valid() {
		primeCutoff = models.NewClock(20, 30)
	}
	return &Scraper{
		nowURL:      nowURL,
		primeURL:    primeURL,
		denied:      denied,
		primeCutoff: primeCutoff,
		now:         time.Now,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Scraper) Name() string { return "scraper" }

func (s *Scraper) Fetch(ctx context.Context, country string, day time.Time) ([]models.ProgramEntry, error) {
	if country != "IT" {
		return nil, nil
	}

	nowAirtime := models.ClockOf(s.now())
	nowEntries, err := s.fetchPage(ctx, s.nowURL, nowAirtime)
	if err != nil {
		return nil, fmt.Errorf("now page: %w", err)
	}

	primeEntries, err := s.fetchPage(ctx, s.primeURL, s.primeCutoff)
	if err != nil {
		return nil, fmt.Errorf("prime page: %w", err)
	}

	return append(nowEntries, primeEntries...), nil
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string, airtime models.Clock) ([]models.ProgramEntry, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("guide page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	var entries []models.ProgramEntry
	doc.Find(channelBlockSelector).Each(func(_ int, block *goquery.Selection) {
		channel := strings.TrimSpace(block.Find(channelNameSelector).First().Text())
		title := strings.TrimSpace(block.Find(programTitleSelector).First().Text())
		if channel == "" || title == "" {
			return
		}
		if s.denied[strings.ToLower(channel)] {
			return
		}
		entry := models.NewProgramEntry(channel, title, airtime, 0)
		entry.Source = s.Name()
		entries = append(entries, entry)
	})

	return entries, nil
}
