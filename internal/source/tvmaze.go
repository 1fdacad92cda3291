package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kdimtricp/tvguide/internal/models"
)

const defaultTVMazeURL = "https://api.tvmaze.com"

// TVMaze fetches the structured schedule API: one JSON array of airing
// records with nested show/network objects.
type TVMaze struct {
	baseURL    string
	httpClient *http.Client
}

type tvmazeAiring struct {
	Airtime string `json:"airtime"`
	Runtime int    `json:"runtime"`
	Show    struct {
		Name    string `json:"name"`
		Network *struct {
			Name string `json:"name"`
		} `json:"network"`
		WebChannel *struct {
			Name string `json:"name"`
		} `json:"webChannel"`
	} `json:"show"`
}

func NewTVMaze(baseURL string) *TVMaze {
	if baseURL == "" {
		baseURL = defaultTVMazeURL
	}
	return &TVMaze{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *TVMaze) Name() string { return "tvmaze" }

func (s *TVMaze) Fetch(ctx context.Context, country string, day time.Time) ([]models.ProgramEntry, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("date", day.Format("2006-01-02"))

	fullURL := fmt.Sprintf("%s/schedule?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule API returned status %d", resp.StatusCode)
	}

	var airings []tvmazeAiring
	if err := json.NewDecoder(resp.Body).Decode(&airings); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	entries := make([]models.ProgramEntry, 0, len(airings))
	for _, airing := range airings {
		channel := ""
		if airing.Show.Network != nil {
			channel = airing.Show.Network.Name
		}
		if channel == "" && airing.Show.WebChannel != nil {
			channel = airing.Show.WebChannel.Name
		}
		if strings.TrimSpace(channel) == "" || airing.Show.Name == "" {
			continue
		}

		airtime, err := models.ParseClock(airing.Airtime)
		if err != nil {
			continue
		}

		entry := models.NewProgramEntry(strings.TrimSpace(channel), airing.Show.Name, airtime, airing.Runtime)
		entry.Source = s.Name()
		entries = append(entries, entry)
	}

	return entries, nil
}
