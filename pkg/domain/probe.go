package domain

import "time"

// ProbeError classifies why a probe failed
type ProbeError string

const (
	ProbeErrorNone       ProbeError = ""
	ProbeErrorTimeout    ProbeError = "timeout"
	ProbeErrorHTTP       ProbeError = "http_error"
	ProbeErrorParse      ProbeError = "parse_error"
	ProbeErrorConnection ProbeError = "connection_error"
)

// ProbeResult is the outcome of a single liveness check of one feed
type ProbeResult struct {
	URL          string        `json:"url"`
	Alive        bool          `json:"alive"`
	ArticleCount int           `json:"article_count"`
	Title        string        `json:"title,omitempty"`
	Error        ProbeError    `json:"error,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Duration     time.Duration `json:"duration"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// Decision is the failure tracker verdict for a feed after a probe
type Decision string

const (
	DecisionKeep          Decision = "keep"
	DecisionTriggerRepair Decision = "trigger_repair"
	DecisionEvict         Decision = "evict"
)
