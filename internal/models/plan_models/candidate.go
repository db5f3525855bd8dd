package plan_models

// CandidatePlace is one place proposed by the generative service, not
// yet verified against the catalog. The name is free text exactly as
// authored by the model.
type CandidatePlace struct {
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	IsFood    bool   `json:"isFood"`
	TimeOfDay string `json:"timeOfDay,omitempty"` // morning, afternoon, evening
}
