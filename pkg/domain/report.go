package domain

import "time"

// EventType describes a registry mutation made during a maintenance cycle
type EventType string

const (
	EventRepaired     EventType = "repaired"
	EventRepairFailed EventType = "repair_failed"
	EventEvicted      EventType = "evicted"
	EventDiscovered   EventType = "discovered"
)

// Event records a single registry mutation
type Event struct {
	RunID     string    `json:"run_id,omitempty"`
	Type      EventType `json:"type"`
	URL       string    `json:"url"`
	Identity  string    `json:"identity"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CycleReport summarizes one maintenance cycle
type CycleReport struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	AutoAdd      bool          `json:"auto_add"`
	DryRun       bool          `json:"dry_run"`
	Probed       int           `json:"probed"`
	Alive        int           `json:"alive"`
	Dead         int           `json:"dead"`
	Repaired     int           `json:"repaired"`
	RepairFailed int           `json:"repair_failed"`
	Evicted      int           `json:"evicted"`
	Discovered   int           `json:"discovered"`
	RegistrySize int           `json:"registry_size"`
	Persisted    bool          `json:"persisted"`
	Error        string        `json:"error,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Probes       []ProbeResult `json:"probes,omitempty"`
}

// Duration returns how long the cycle took
func (r CycleReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
