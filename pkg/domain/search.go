package domain

import "math"

// weight bounds of discovered feeds, the downstream collector scales article scores by it
const (
	DefaultWeight = 1.0
	MaxWeight     = 1.3
)

// Candidate is a feed suggested by the search capability. Untrusted until probed.
// Weight is the suggested relative importance, zero if not given.
type Candidate struct {
	Name   string  `json:"name"`
	URL    string  `json:"url"`
	Weight float64 `json:"weight,omitempty"`
}

// ClampWeight bounds a suggested weight to [DefaultWeight, MaxWeight].
// Missing or invalid values give DefaultWeight.
func ClampWeight(w float64) float64 {
	if math.IsNaN(w) || w <= 0 {
		return DefaultWeight
	}
	return min(max(w, DefaultWeight), MaxWeight)
}

// RepairQuery asks for the current feed address of a named source
type RepairQuery struct {
	Identity string
	URL      string // the dead url
	Language string
	Keywords []string
}

// DiscoveryQuery asks for popular feeds matching the topic keywords
type DiscoveryQuery struct {
	Keywords []string
	Language string
	Exclude  []string // identities already registered
	Limit    int
}
