package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kdimtricp/tvguide/internal/models"
)

// Config is the full tunable surface of the guide service. Values come
// from defaults, then an optional TOML file, then TVGUIDE_* environment
// overrides.
type Config struct {
	Addr    string `toml:"addr"`
	Name    string `toml:"name"`
	Country string `toml:"country"`

	MinAgreement         int    `toml:"min_agreement"`
	PrimeCutoff          string `toml:"prime_cutoff"`
	SourceTimeoutSeconds int    `toml:"source_timeout_seconds"`

	DeniedChannels []string `toml:"denied_channels"`

	Sources Sources `toml:"sources"`
}

// Sources holds the endpoints of the external feeds. Overridable so
// tests and mirrors can point the adapters elsewhere.
type Sources struct {
	TVMazeURL        string   `toml:"tvmaze_url"`
	CommunityFeedURL string   `toml:"community_feed_url"`
	MirrorFeedURLs   []string `toml:"mirror_feed_urls"`
	NowPageURL       string   `toml:"now_page_url"`
	PrimePageURL     string   `toml:"prime_page_url"`
}

func Default() Config {
	return Config{
		Addr:                 ":8080",
		Name:                 "Guida TV",
		Country:              "IT",
		MinAgreement:         2,
		PrimeCutoff:          "20:30",
		SourceTimeoutSeconds: 15,
		Sources: Sources{
			TVMazeURL:        "https://api.tvmaze.com",
			CommunityFeedURL: "https://raw.githubusercontent.com/leica37/tvit/main/epg/it_full.json",
			MirrorFeedURLs: []string{
				"https://iptv-org.github.io/api/guide/it.json",
				"https://iptv-org.github.io/epg/guides/it.json",
			},
			NowPageURL:   "https://www.staseraintv.com/index.html",
			PrimePageURL: "https://www.staseraintv.com/programmi_stasera.html",
		},
	}
}

// Load builds the effective configuration. path may be empty, in which
// case only defaults and environment overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TVGUIDE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("TVGUIDE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("TVGUIDE_COUNTRY"); v != "" {
		c.Country = v
	}
	if v := os.Getenv("TVGUIDE_MIN_AGREEMENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinAgreement = n
		}
	}
	if v := os.Getenv("TVGUIDE_PRIME_CUTOFF"); v != "" {
		c.PrimeCutoff = v
	}
	if v := os.Getenv("TVGUIDE_SOURCE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SourceTimeoutSeconds = n
		}
	}
}

func (c *Config) Validate() error {
	c.Country = strings.ToUpper(strings.TrimSpace(c.Country))
	if len(c.Country) != 2 {
		return fmt.Errorf("country must be a two-letter ISO code, got %q", c.Country)
	}
	if c.MinAgreement < 1 {
		return fmt.Errorf("min_agreement must be at least 1, got %d", c.MinAgreement)
	}
	if _, err := models.ParseClock(c.PrimeCutoff); err != nil {
		return fmt.Errorf("invalid prime_cutoff: %w", err)
	}
	if c.SourceTimeoutSeconds <= 0 {
		return fmt.Errorf("source_timeout_seconds must be positive, got %d", c.SourceTimeoutSeconds)
	}
	return nil
}

// PrimeClock returns the parsed prime-time cutoff. Validate must have
// succeeded first.
func (c Config) PrimeClock() models.Clock {
	clock, err := models.ParseClock(c.PrimeCutoff)
	if err != nil {
		return models.NewClock(20, 30)
	}
	return clock
}

func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}
