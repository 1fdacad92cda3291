package models

// DefaultRuntime is assumed when a source does not report a programme
// duration.
const DefaultRuntime = 60

// ProgramEntry is the canonical unit of schedule information every
// source adapter normalizes into.
type ProgramEntry struct {
	Channel string `json:"channel"`
	Title   string `json:"title"`
	Airtime Clock  `json:"airtime"`
	Runtime int    `json:"runtime"` // minutes
	Source  string `json:"-"`       // adapter name, used only during merge
}

func NewProgramEntry(channel, title string, airtime Clock, runtime int) ProgramEntry {
	if runtime <= 0 {
		runtime = DefaultRuntime
	}
	return ProgramEntry{
		Channel: channel,
		Title:   title,
		Airtime: airtime,
		Runtime: runtime,
	}
}

// Schedule is one day's merged programme list. It is built once per
// calendar day and never mutated in place.
type Schedule []ProgramEntry
