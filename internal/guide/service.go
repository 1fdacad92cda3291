package guide

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kdimtricp/tvguide/internal/consensus"
	"github.com/kdimtricp/tvguide/internal/fetch"
	"github.com/kdimtricp/tvguide/internal/models"
)

// Fetcher runs one full multi-source fetch cycle.
type Fetcher interface {
	FetchAll(ctx context.Context, country string, day time.Time) []fetch.Result
}

type Config struct {
	Country      string
	MinAgreement int
	PrimeCutoff  models.Clock
}

// Service owns the merged schedule for the current calendar day. It
// rebuilds at most once per day boundary and answers the two derived
// views (now airing, prime time) as pure reads.
type Service struct {
	fetcher      Fetcher
	country      string
	minAgreement int
	primeCutoff  models.Clock

	mu        sync.Mutex
	day       time.Time
	schedule  models.Schedule
	refreshID string
	outcomes  []SourceOutcome
}

// SourceOutcome is the per-source pass/fail record of the last refresh.
type SourceOutcome struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// Status describes the cached schedule for the status endpoint.
type Status struct {
	RefreshID string          `json:"refresh_id"`
	Day       string          `json:"day"`
	Entries   int             `json:"entries"`
	Sources   []SourceOutcome `json:"sources"`
}

func NewService(fetcher Fetcher, config Config) *Service {
	if config.Country == "" {
		config.Country = "IT"
	}
	if config.MinAgreement == 0 {
		config.MinAgreement = consensus.DefaultMinAgreement
	}
	if !config.PrimeCutoff.Valid() {
		config.PrimeCutoff = models.NewClock(20, 30)
	}

	return &Service{
		fetcher:      fetcher,
		country:      config.Country,
		minAgreement: config.MinAgreement,
		primeCutoff:  config.PrimeCutoff,
	}
}

// EnsureFresh rebuilds the schedule when the cached day differs from
// today, and is a no-op otherwise. The date check and the rebuild are
// one critical section, so two concurrent callers cannot both decide to
// refetch.
func (s *Service) EnsureFresh(ctx context.Context, today time.Time) {
	day := dateOnly(today)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshID != "" && s.day.Equal(day) {
		return
	}

	results := s.fetcher.FetchAll(ctx, s.country, day)

	lists := make([][]models.ProgramEntry, 0, len(results))
	outcomes := make([]SourceOutcome, 0, len(results))
	for _, result := range results {
		outcome := SourceOutcome{Name: result.Source, Entries: len(result.Entries)}
		if result.Failed() {
			outcome.Error = result.Err.Error()
			log.Printf("[GUIDE] source %s failed: %v", result.Source, result.Err)
		} else {
			lists = append(lists, result.Entries)
		}
		outcomes = append(outcomes, outcome)
	}

	s.schedule = consensus.Build(lists, s.minAgreement)
	s.day = day
	s.refreshID = uuid.New().String()
	s.outcomes = outcomes

	log.Printf("[GUIDE] refresh %s: %d merged entries for %s from %d sources",
		s.refreshID, len(s.schedule), day.Format("2006-01-02"), len(lists))
}

// Schedule returns a copy of the cached day schedule.
func (s *Service) Schedule() models.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(models.Schedule, len(s.schedule))
	copy(out, s.schedule)
	return out
}

// NowAiring returns every entry whose [start, start+runtime) interval
// contains the given moment's time of day. Programmes crossing midnight
// are not modeled.
func (s *Service) NowAiring(at time.Time) []models.ProgramEntry {
	moment := models.ClockOf(at)

	s.mu.Lock()
	defer s.mu.Unlock()

	var airing []models.ProgramEntry
	for _, entry := range s.schedule {
		end := entry.Airtime + models.Clock(entry.Runtime)
		if entry.Airtime <= moment && moment < end {
			airing = append(airing, entry)
		}
	}
	return airing
}

// PrimeTime returns the entries starting at or after the prime cutoff,
// sorted ascending by airtime. Ties keep their schedule order.
func (s *Service) PrimeTime() []models.ProgramEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prime []models.ProgramEntry
	for _, entry := range s.schedule {
		if entry.Airtime >= s.primeCutoff {
			prime = append(prime, entry)
		}
	}
	sort.SliceStable(prime, func(i, j int) bool {
		return prime[i].Airtime < prime[j].Airtime
	})
	return prime
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := ""
	if !s.day.IsZero() {
		day = s.day.Format("2006-01-02")
	}
	outcomes := make([]SourceOutcome, len(s.outcomes))
	copy(outcomes, s.outcomes)

	return Status{
		RefreshID: s.refreshID,
		Day:       day,
		Entries:   len(s.schedule),
		Sources:   outcomes,
	}
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
