package plan_models

import "github.com/google/uuid"

type Provenance string

const (
	ProvenanceCatalogExact        Provenance = "catalog-exact"
	ProvenanceCatalogFuzzy        Provenance = "catalog-fuzzy"
	ProvenanceCatalogByExternalID Provenance = "catalog-by-external-id"
	ProvenanceExternalNew         Provenance = "external-search-new"
	ProvenanceExternalReconciled  Provenance = "external-search-reconciled"
	ProvenanceUnresolved          Provenance = "unresolved"
)

type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// EnrichedPlace merges a candidate with its catalog record or external
// search result. Read-only once the matcher has produced it.
type EnrichedPlace struct {
	Candidate CandidatePlace

	Latitude  float64
	Longitude float64
	HasCoords bool

	Confidence float64 // 0-10
	Tier       ConfidenceTier
	Provenance Provenance
	Reasons    []string

	CatalogID   *uuid.UUID
	ExternalID  string
	PhotoRef    string
	Rating      float64
	ReviewCount int
	Summary     string
	EntranceFee float64
	MealPrice   float64
}

func TierFor(confidence float64) ConfidenceTier {
	switch {
	case confidence >= 7:
		return TierHigh
	case confidence >= 4:
		return TierMedium
	default:
		return TierLow
	}
}
