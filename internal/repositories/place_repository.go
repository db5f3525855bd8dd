package repositories

import (
	"context"
	"errors"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/db_models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaceRepository interface {
	ListByCity(ctx context.Context, cityID uuid.UUID) ([]db_models.Place, error)
	FindByExternalID(ctx context.Context, externalID string) (*db_models.Place, error)

	// AppendAlias is idempotent: appending an alias the place already
	// carries is a no-op.
	AppendAlias(ctx context.Context, placeID uuid.UUID, alias string) error

	// InsertIfAbsent inserts a newly discovered place, keyed by its
	// external identifier; an existing record wins unchanged.
	InsertIfAbsent(ctx context.Context, place *db_models.Place) error
}

type placeRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) ListByCity(ctx context.Context, cityID uuid.UUID) ([]db_models.Place, error) {
	var places []db_models.Place
	err := r.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}

func (r *placeRepository) FindByExternalID(ctx context.Context, externalID string) (*db_models.Place, error) {
	if externalID == "" {
		return nil, nil
	}

	var place db_models.Place
	err := r.db.WithContext(ctx).
		First(&place, "external_id = ?", externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) AppendAlias(ctx context.Context, placeID uuid.UUID, alias string) error {
	if alias == "" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec(`UPDATE places SET aliases = array_append(aliases, ?) WHERE id = ? AND NOT (? = ANY(COALESCE(aliases, '{}')))`,
			alias, placeID, alias).Error
}

func (r *placeRepository) InsertIfAbsent(ctx context.Context, place *db_models.Place) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(place).Error
}
