package controllers_fx

import (
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/api/controllers"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(controllers.NewItineraryController))
