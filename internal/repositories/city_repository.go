package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/db_models"
	"gorm.io/gorm"
)

type CityRepository interface {
	FindByNameOrAlias(ctx context.Context, name string) (*db_models.City, error)
	NearestByCentroid(ctx context.Context, lat, lng, maxKm float64) (*db_models.City, error)
}

type cityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) CityRepository {
	return &cityRepository{db: db}
}

// ────────────────────────────────────────────────────────────────
// Read helpers follow the same pattern: default value + nil error
// when no rows are found.
// ────────────────────────────────────────────────────────────────

func (r *cityRepository) FindByNameOrAlias(ctx context.Context, name string) (*db_models.City, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	var city db_models.City
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ? OR LOWER(local_name) = ? OR ? ILIKE ANY(aliases)", needle, needle, needle).
		First(&city).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *cityRepository) NearestByCentroid(ctx context.Context, lat, lng, maxKm float64) (*db_models.City, error) {
	// Equirectangular approximation is fine at city-centroid scale.
	var city db_models.City
	err := r.db.WithContext(ctx).
		Select("*, (111.045 * sqrt(pow(centroid_lat - ?, 2) + pow((centroid_lng - ?) * cos(radians(?)), 2))) AS distance_km", lat, lng, lat).
		Where("(111.045 * sqrt(pow(centroid_lat - ?, 2) + pow((centroid_lng - ?) * cos(radians(?)), 2))) <= ?", lat, lng, lat, maxKm).
		Order("distance_km").
		First(&city).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}
