package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kdimtricp/tvguide/internal/models"
)

// MirrorFeed fetches one logical EPG source that is published at
// several mirror endpoints. Endpoints are tried in order and the first
// one yielding at least one valid entry wins; results are never
// aggregated across endpoints.
type MirrorFeed struct {
	urls       []string
	httpClient *http.Client
}

type mirrorChannel struct {
	Name     string `json:"name"`
	Programs []struct {
		Title string `json:"title"`
		Start string `json:"start"`
		Stop  string `json:"stop"`
	} `json:"programs"`
}

func NewMirrorFeed(urls []string) *MirrorFeed {
	return &MirrorFeed{
		urls: urls,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *MirrorFeed) Name() string { return "mirror" }

func (s *MirrorFeed) Fetch(ctx context.Context, country string, day time.Time) ([]models.ProgramEntry, error) {
	if country != "IT" {
		return nil, nil
	}

	var lastErr error
	for _, endpoint := range s.urls {
		entries, err := s.fetchEndpoint(ctx, endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all mirror endpoints failed: %w", lastErr)
	}
	return nil, nil
}

func (s *MirrorFeed) fetchEndpoint(ctx context.Context, endpoint string) ([]models.ProgramEntry, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror endpoint returned status %d", resp.StatusCode)
	}

	var channels []mirrorChannel
	if err := json.NewDecoder(resp.Body).Decode(&channels); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var entries []models.ProgramEntry
	for _, channel := range channels {
		name := strings.TrimSpace(channel.Name)
		if name == "" {
			continue
		}
		for _, program := range channel.Programs {
			start, err := parseISO(program.Start)
			if err != nil {
				continue
			}
			stop, err := parseISO(program.Stop)
			if err != nil {
				continue
			}
			runtime := int(stop.Sub(start).Minutes())
			if program.Title == "" || runtime <= 0 {
				continue
			}
			entry := models.NewProgramEntry(name, program.Title, models.ClockOf(start.Local()), runtime)
			entry.Source = s.Name()
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
