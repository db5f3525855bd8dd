package request_models

type TripRequest struct {
	Destination string `json:"destination" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"` // 2006-01-02
	EndDate     string `json:"end_date" binding:"required"`

	PartyType  string `json:"party_type"` // solo, couple, family, friends
	PartyCount int    `json:"party_count"`
	PartyAges  []int  `json:"party_ages"`

	// Ordered by priority; first tag matters most.
	Tags []string `json:"tags"`

	Pacing     string `json:"pacing"`   // packed, normal, relaxed
	Mobility   string `json:"mobility"` // walking, transit, driving
	BudgetTier string `json:"budget_tier"`

	StartClock string `json:"start_time"` // HH:MM, first day
	EndClock   string `json:"end_time"`   // HH:MM, last day

	HomeCurrency string `json:"home_currency"`

	// Day 0 means the whole trip; specific days override it.
	Lodging []DayLodging `json:"lodging"`
}

type DayLodging struct {
	Day       int     `json:"day"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
