package response_models

type ScheduleSlot struct {
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`

	PlaceName string  `json:"place_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	MealSlot    string  `json:"meal_slot"` // none, lunch, dinner
	MealBudget  float64 `json:"meal_budget,omitempty"`
	EntranceFee float64 `json:"entrance_fee,omitempty"`

	Reason     string   `json:"reason,omitempty"`
	Provenance string   `json:"provenance"`
	Confidence float64  `json:"confidence"`
	Tier       string   `json:"tier"`
	Notes      []string `json:"notes,omitempty"`
	Flagged    bool     `json:"flagged,omitempty"`
}

type TransitLeg struct {
	FromName        string  `json:"from"`
	ToName          string  `json:"to"`
	Mode            string  `json:"mode"`
	DistanceMeters  int     `json:"distance_meters"`
	DurationMinutes int     `json:"duration_minutes"`
	Cost            float64 `json:"cost"`
	Estimated       bool    `json:"estimated,omitempty"` // static fallback, not a live route
}

type LodgingAnchor struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"` // day-lodging, trip-lodging, city-centroid, first-stop
}

type CostBreakdown struct {
	Meals     float64 `json:"meals"`
	Entrance  float64 `json:"entrance"`
	Transport float64 `json:"transport"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`

	TotalHome     float64 `json:"total_home"`
	HomeCurrency  string  `json:"home_currency"`
	PerPerson     float64 `json:"per_person"`
	PerPersonHome float64 `json:"per_person_home"`
}

type DayPlan struct {
	Day      int            `json:"day"`
	Date     string         `json:"date"`
	Lodging  LodgingAnchor  `json:"lodging"`
	Slots    []ScheduleSlot `json:"slots"`
	Transit  []TransitLeg   `json:"transit"`
	Costs    CostBreakdown  `json:"costs"`
	Advisory string         `json:"advisory,omitempty"`
}

type Itinerary struct {
	Destination string    `json:"destination"`
	CityID      string    `json:"city_id,omitempty"`
	Days        []DayPlan `json:"days"`
	GeneratedAt string    `json:"generated_at"`
}
