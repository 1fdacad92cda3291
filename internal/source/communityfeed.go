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

// Key names vary across community EPG deployments; each list is probed
// in priority order, first match wins.
var (
	payloadKeys = []string{"epg", "programmi", "programs", "list"}
	channelKeys = []string{"channel", "name", "network"}
	titleKeys   = []string{"title", "programme", "show"}
	startKeys   = []string{"start", "start_iso", "start_time"}
	stopKeys    = []string{"stop", "end", "stop_time"}
)

// CommunityFeed fetches a community-maintained EPG JSON dump. The feed
// only covers Italy; other countries get an empty result. Malformed
// records are skipped individually without aborting the batch.
type CommunityFeed struct {
	url        string
	httpClient *http.Client
}

func NewCommunityFeed(feedURL string) *CommunityFeed {
	return &CommunityFeed{
		url: feedURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *CommunityFeed) Name() string { return "community" }

func (s *CommunityFeed) Fetch(ctx context.Context, country string, day time.Time) ([]models.ProgramEntry, error) {
	if country != "IT" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("community feed returned status %d", resp.StatusCode)
	}

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	records, err := extractRecords(payload)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ProgramEntry, 0, len(records))
	for _, record := range records {
		entry, err := parseFeedRecord(record)
		if err != nil {
			continue
		}
		entry.Source = s.Name()
		entries = append(entries, entry)
	}

	return entries, nil
}

// extractRecords accepts either a bare top-level array or an object
// carrying the array under one of the known payload keys.
func extractRecords(payload json.RawMessage) ([]map[string]json.RawMessage, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(payload, &records); err == nil {
		return records, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected feed payload shape")
	}

	for _, key := range payloadKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("payload key %q is not a record array", key)
		}
		return records, nil
	}

	return nil, fmt.Errorf("no known payload key in feed object")
}

func parseFeedRecord(record map[string]json.RawMessage) (models.ProgramEntry, error) {
	channel := stringField(record, channelKeys)
	title := stringField(record, titleKeys)
	if channel == "" || title == "" {
		return models.ProgramEntry{}, fmt.Errorf("record missing channel or title")
	}

	start, err := parseISO(stringField(record, startKeys))
	if err != nil {
		return models.ProgramEntry{}, err
	}
	stop, err := parseISO(stringField(record, stopKeys))
	if err != nil {
		return models.ProgramEntry{}, err
	}

	runtime := int(stop.Sub(start).Minutes())
	if runtime <= 0 {
		return models.ProgramEntry{}, fmt.Errorf("record has non-positive runtime")
	}

	return models.NewProgramEntry(channel, title, models.ClockOf(start.Local()), runtime), nil
}

func stringField(record map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		raw, ok := record[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// parseISO parses an ISO-8601 timestamp. A trailing Z is accepted as
// UTC; zone-less timestamps are taken as local time.
func parseISO(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
