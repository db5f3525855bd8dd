package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Place is one curated catalog entry. Aliases only ever grow: the
// matcher appends authored spellings it learned to resolve against
// this record.
type Place struct {
	BaseModel
	CityID      uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	LocalName   string
	Aliases     pq.StringArray `gorm:"type:text[]"`
	Latitude    float64
	Longitude   float64
	ExternalID  string `gorm:"uniqueIndex"`
	PhotoRef    string
	Rating      float64
	ReviewCount int
	Summary     string
	Categories  pq.StringArray `gorm:"type:text[]"`
	EntranceFee float64
	MealPrice   float64
	IsFood      bool
	Embedding   pgvector.Vector `gorm:"type:vector(1536)"`
}
