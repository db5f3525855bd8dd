package geo_fx

import (
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/services"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideSearchClient,
	services.NewInMemoryRouteCache,
	services.NewMapboxRouteClient,
	services.NewExchangeRateClient,
	services.NewOpenMeteoAdvisoryClient,
)

func provideSearchClient() services.PlaceSearchClientInterface {
	return services.NewGooglePlacesClient()
}
