package pipeline_fx

import (
	"os"
	"strconv"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/services"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/background"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/quota"
	"go.uber.org/fx"
)

const defaultDailySearchLimit = 200

var Module = fx.Provide(
	provideSearchGate,
	provideBackgroundQueue,
	services.NewSkeletonService,
	services.NewRecommendService,
	services.NewMatcherService,
	services.NewFinalizeService,
	services.NewItineraryService,
)

func provideSearchGate() *quota.SearchGate {
	limit := defaultDailySearchLimit
	if raw := os.Getenv("DAILY_SEARCH_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return quota.NewSearchGate(limit)
}

func provideBackgroundQueue() *background.Queue {
	return background.NewQueue(2)
}
