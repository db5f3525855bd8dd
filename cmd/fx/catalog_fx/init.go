package catalog_fx

import (
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/repositories"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/services"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Provide(provideCityRepo, providePlaceRepo, provideCatalogService)

func provideCityRepo(db *gorm.DB) repositories.CityRepository {
	return repositories.NewCityRepository(db)
}

func providePlaceRepo(db *gorm.DB) repositories.PlaceRepository {
	return repositories.NewPlaceRepository(db)
}

func provideCatalogService(cityRepo repositories.CityRepository, placeRepo repositories.PlaceRepository) services.CatalogServiceInterface {
	return services.NewCatalogService(cityRepo, placeRepo)
}
