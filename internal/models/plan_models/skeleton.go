package plan_models

import "time"

type PacingLevel string

const (
	PacingPacked  PacingLevel = "packed"
	PacingNormal  PacingLevel = "normal"
	PacingRelaxed PacingLevel = "relaxed"
)

type DaySlotConfig struct {
	Day        int    `json:"day"`
	StartClock string `json:"start_time"` // HH:MM
	EndClock   string `json:"end_time"`   // HH:MM
	SlotCount  int    `json:"slot_count"`
}

type WeightedTag struct {
	Tag    string `json:"tag"`
	Weight int    `json:"weight"` // percent
}

// Skeleton is the time-slot structure derived from a trip request,
// independent of any recommended place. Built once per run and never
// mutated afterwards (the sentiment bonus is filled during the initial
// fan-out, before any downstream stage reads it).
type Skeleton struct {
	Destination   string
	StartDate     time.Time
	Days          []DaySlotConfig
	RequiredCount int
	PartySize     int
	Pacing        PacingLevel
	WeightedTags  []WeightedTag

	// Opaque destination-level preference score in [0,1]; nil when the
	// enrichment call failed or was skipped.
	SentimentBonus *float64
}
