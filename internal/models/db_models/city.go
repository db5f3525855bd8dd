package db_models

import (
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type City struct {
	BaseModel
	Name         string
	LocalName    string
	Country      string
	Aliases      pq.StringArray `gorm:"type:text[]"`
	CentroidLat  float64
	CentroidLng  float64
	CurrencyCode string
	Description  string
	Embedding    pgvector.Vector `gorm:"type:vector(1536)"`

	Places []*Place `gorm:"foreignKey:CityID"`
}
