package source

import (
	"context"
	"time"

	"github.com/kdimtricp/tvguide/internal/models"
)

// Source is one external schedule feed. Implementations are stateless
// and safe for concurrent use.
//
// Fetch returns the normalized entries for the given local day. A
// source that does not cover the requested country returns (nil, nil).
// Network errors, non-2xx statuses, and unparseable payloads are
// returned as errors; the fetch orchestrator isolates them so one bad
// source never blocks the others.
type Source interface {
	Name() string
	Fetch(ctx context.Context, country string, day time.Time) ([]models.ProgramEntry, error)
}
