package consensus

import (
	"strings"

	"github.com/kdimtricp/tvguide/internal/models"
)

// DefaultMinAgreement is how many sources must report the same title
// for a slot before it is trusted when sources disagree.
const DefaultMinAgreement = 2

// groupKey identifies one schedule slot across sources. The channel is
// case-folded so "RAI 1" and "Rai 1" vote together; the display casing
// of the first-seen entry is what gets emitted.
type groupKey struct {
	channel string
	airtime models.Clock
}

type tally struct {
	votes map[string]int
	// first-appearance order of titles, used as the stable tie-break
	// between equally-voted candidates
	order  []string
	detail models.ProgramEntry
}

// Build merges the per-source entry lists into one day schedule.
//
// Every entry with a channel and a valid airtime votes for its title
// under the (channel, airtime) key; the first full entry seen per key
// is kept as the template for the non-title fields. A slot is admitted
// when the winning title has at least minAgreement votes, or when it is
// the only title any source ever proposed for that slot. Slots with
// multiple conflicting titles below the threshold are dropped.
//
// Output order follows key first-appearance, so rebuilding from the
// same inputs yields an identical schedule.
func Build(lists [][]models.ProgramEntry, minAgreement int) models.Schedule {
	if minAgreement <= 0 {
		minAgreement = DefaultMinAgreement
	}

	tallies := make(map[groupKey]*tally)
	var keyOrder []groupKey

	for _, list := range lists {
		for _, entry := range list {
			channel := strings.TrimSpace(entry.Channel)
			if channel == "" || !entry.Airtime.Valid() {
				continue
			}

			key := groupKey{channel: strings.ToLower(channel), airtime: entry.Airtime}
			slot, seen := tallies[key]
			if !seen {
				slot = &tally{votes: make(map[string]int), detail: entry}
				tallies[key] = slot
				keyOrder = append(keyOrder, key)
			}

			if slot.votes[entry.Title] == 0 {
				slot.order = append(slot.order, entry.Title)
			}
			slot.votes[entry.Title]++
		}
	}

	var merged models.Schedule
	for _, key := range keyOrder {
		slot := tallies[key]
		title, votes := winner(slot)
		if votes >= minAgreement || len(slot.votes) == 1 {
			entry := slot.detail
			entry.Title = title
			entry.Source = ""
			merged = append(merged, entry)
		}
	}

	return merged
}

func winner(slot *tally) (string, int) {
	best := ""
	bestVotes := 0
	for _, title := range slot.order {
		if slot.votes[title] > bestVotes {
			best = title
			bestVotes = slot.votes[title]
		}
	}
	return best, bestVotes
}
