package services

import (
	"context"
	"log"
	"strings"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/db_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/repositories"
)

// Distance threshold for the nearest-city-by-centroid fallback.
const nearestCityMaxKm = 50.0

type GeoHint struct {
	Lat float64
	Lng float64
}

// CatalogIndex is the per-run, in-memory view of one city's curated
// places, keyed by every known name-like string (canonical name, local
// name, aliases, external identifier), all case-folded.
type CatalogIndex struct {
	City   *db_models.City
	places []db_models.Place
	byKey  map[string]*db_models.Place
}

func (idx *CatalogIndex) Resolved() bool { return idx != nil && idx.City != nil }

func (idx *CatalogIndex) Lookup(key string) *db_models.Place {
	if idx == nil {
		return nil
	}
	return idx.byKey[foldKey(key)]
}

// Entries exposes the key map for substring and token-overlap passes.
func (idx *CatalogIndex) Entries() map[string]*db_models.Place {
	if idx == nil {
		return nil
	}
	return idx.byKey
}

func (idx *CatalogIndex) CityName() string {
	if idx.Resolved() {
		return idx.City.Name
	}
	return ""
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type CatalogServiceInterface interface {
	// PreloadCity resolves the destination to a canonical city and
	// loads its places into an index. An unresolved destination yields
	// an empty index, never an error: the matcher downstream treats it
	// as "no catalog".
	PreloadCity(ctx context.Context, destination string, hint *GeoHint) (*CatalogIndex, error)
}

type CatalogService struct {
	cityRepo  repositories.CityRepository
	placeRepo repositories.PlaceRepository
}

func NewCatalogService(cityRepo repositories.CityRepository, placeRepo repositories.PlaceRepository) CatalogServiceInterface {
	return &CatalogService{cityRepo: cityRepo, placeRepo: placeRepo}
}

func (c *CatalogService) PreloadCity(ctx context.Context, destination string, hint *GeoHint) (*CatalogIndex, error) {
	idx := &CatalogIndex{byKey: map[string]*db_models.Place{}}

	city, err := c.cityRepo.FindByNameOrAlias(ctx, destination)
	if err != nil {
		log.Printf("city lookup for %q failed: %v", destination, err)
		return idx, nil
	}

	if city == nil && hint != nil {
		city, err = c.cityRepo.NearestByCentroid(ctx, hint.Lat, hint.Lng, nearestCityMaxKm)
		if err != nil {
			log.Printf("nearest-city fallback for %q failed: %v", destination, err)
			return idx, nil
		}
	}

	if city == nil {
		log.Printf("destination %q did not resolve to a catalog city", destination)
		return idx, nil
	}
	idx.City = city

	places, err := c.placeRepo.ListByCity(ctx, city.ID)
	if err != nil {
		log.Printf("catalog preload for city %s failed: %v", city.Name, err)
		return idx, nil
	}

	idx.places = places
	for i := range idx.places {
		p := &idx.places[i]
		addKey(idx.byKey, p.Name, p)
		addKey(idx.byKey, p.LocalName, p)
		addKey(idx.byKey, p.ExternalID, p)
		for _, alias := range p.Aliases {
			addKey(idx.byKey, alias, p)
		}
	}
	return idx, nil
}

func addKey(m map[string]*db_models.Place, key string, p *db_models.Place) {
	k := foldKey(key)
	if k == "" {
		return
	}
	// First writer wins so canonical names beat later aliases.
	if _, exists := m[k]; !exists {
		m[k] = p
	}
}
