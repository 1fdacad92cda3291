package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kdimtricp/tvguide/internal/models"
	"github.com/kdimtricp/tvguide/internal/source"
)

const defaultTimeout = 15 * time.Second

// Result is the tagged per-source outcome of one fetch cycle. A nil
// Err with no entries means the source legitimately had no programmes;
// a non-nil Err means the source failed.
type Result struct {
	Source  string
	Entries []models.ProgramEntry
	Err     error
}

func (r Result) Failed() bool { return r.Err != nil }

// Orchestrator runs every source adapter concurrently with a per-source
// timeout. A failing or slow source is captured in its own Result and
// never cancels the sibling fetches.
type Orchestrator struct {
	sources []source.Source
	timeout time.Duration
}

func NewOrchestrator(sources []source.Source, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Orchestrator{sources: sources, timeout: timeout}
}

// FetchAll fans out to all sources and joins once every fetch has
// settled. Results are indexed by source registration order.
func (o *Orchestrator) FetchAll(ctx context.Context, country string, day time.Time) []Result {
	results := make([]Result, len(o.sources))

	var wg sync.WaitGroup
	for i, src := range o.sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			results[i] = o.fetchOne(ctx, src, country, day)
		}(i, src)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) fetchOne(ctx context.Context, src source.Source, country string, day time.Time) (result Result) {
	result.Source = src.Name()

	defer func() {
		if r := recover(); r != nil {
			result.Entries = nil
			result.Err = fmt.Errorf("source panicked: %v", r)
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	entries, err := src.Fetch(fetchCtx, country, day)
	if err != nil {
		result.Err = fmt.Errorf("fetching %s: %w", src.Name(), err)
		return result
	}

	result.Entries = entries
	return result
}
