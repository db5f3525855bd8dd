package services

import (
	"context"
	"testing"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/request_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/background"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/quota"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogService struct {
	idx *CatalogIndex
}

func (s *stubCatalogService) PreloadCity(ctx context.Context, destination string, hint *GeoHint) (*CatalogIndex, error) {
	return s.idx, nil
}

func parisPipeline(t *testing.T, recommendRaw string, recommendErr error) ItineraryServiceInterface {
	t.Helper()

	idx := buildIndex(parisCity(),
		catalogPlace("Eiffel Tower", "ext-eiffel", 4.7, 250000),
		catalogPlace("Musee du Louvre", "ext-louvre", 4.8, 150000),
		catalogPlace("Le Comptoir", "ext-comptoir", 4.4, 3000),
	)

	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	gate := quota.NewSearchGate(10)

	return NewItineraryService(
		NewSkeletonService(&stubScorer{bonus: 0.5}),
		NewRecommendService(&stubRecommendClient{raw: recommendRaw, err: recommendErr}, gate),
		&stubCatalogService{idx: idx},
		NewMatcherService(&fakeSearchClient{}, repo, queue, gate),
		NewFinalizeService(
			&stubRouteClient{leg: RouteLeg{DistanceMeters: 900, DurationMinutes: 12, Cost: 2}},
			&stubRateClient{rate: 1.1},
			&stubAdvisoryClient{text: "clear sky, 14-21°C"},
		),
	)
}

func TestGenerateItineraryParisThreeDays(t *testing.T) {
	raw := `{"places":[
		{"name":"Eiffel Tower","reason":"Icon","isFood":false,"timeOfDay":"morning"},
		{"name":"Musee du Louvre","reason":"Art","isFood":false},
		{"name":"Le Comptoir","reason":"Bistro lunch","isFood":true},
		{"name":"Completely Unknown Spot","reason":"Hidden gem","isFood":false}
	]}`
	svc := parisPipeline(t, raw, nil)

	it, err := svc.GenerateItinerary(context.Background(), request_models.TripRequest{
		Destination:  "Paris",
		StartDate:    "2026-05-01",
		EndDate:      "2026-05-03",
		PartyType:    "couple",
		PartyCount:   2,
		Tags:         []string{"art", "food"},
		Pacing:       "relaxed",
		HomeCurrency: "USD",
	})
	require.NoError(t, err)
	require.NotNil(t, it)

	assert.Equal(t, "Paris", it.Destination)
	assert.NotEmpty(t, it.CityID)
	require.Len(t, it.Days, 3)

	for _, day := range it.Days {
		assert.NotEmpty(t, day.Date)
		assert.Equal(t, "clear sky, 14-21°C", day.Advisory)
		assert.Equal(t, "USD", day.Costs.HomeCurrency)
		assert.InDelta(t, day.Costs.Meals+day.Costs.Entrance+day.Costs.Transport, day.Costs.Total, 1e-6)
		for _, slot := range day.Slots {
			assert.NotEmpty(t, slot.PlaceName)
			assert.NotEmpty(t, slot.Provenance)
		}
	}

	// Catalog hits stay catalog-provenance; the unknown place flows
	// through as unresolved rather than being dropped.
	var provenances []string
	for _, day := range it.Days {
		for _, slot := range day.Slots {
			provenances = append(provenances, slot.Provenance)
		}
	}
	assert.Contains(t, provenances, string(plan_models.ProvenanceCatalogExact))
	assert.Contains(t, provenances, string(plan_models.ProvenanceUnresolved))
}

func TestGenerateItineraryMissingCredentialIsFatal(t *testing.T) {
	svc := parisPipeline(t, "", utils.ErrMissingAPIKey)

	it, err := svc.GenerateItinerary(context.Background(), request_models.TripRequest{
		Destination: "Paris",
		StartDate:   "2026-05-01",
		EndDate:     "2026-05-03",
	})
	assert.ErrorIs(t, err, utils.ErrMissingAPIKey)
	assert.Nil(t, it)
}

func TestGenerateItineraryMalformedRequestIsFatal(t *testing.T) {
	svc := parisPipeline(t, `{"places":[]}`, nil)

	_, err := svc.GenerateItinerary(context.Background(), request_models.TripRequest{
		Destination: "Paris",
		StartDate:   "2026-05-09",
		EndDate:     "2026-05-01",
	})
	assert.ErrorIs(t, err, utils.ErrInvalidTripDates)
}

func TestGenerateItineraryEmptyRecommendationStillCompletes(t *testing.T) {
	svc := parisPipeline(t, `{"places":[]}`, nil)

	it, err := svc.GenerateItinerary(context.Background(), request_models.TripRequest{
		Destination: "Paris",
		StartDate:   "2026-05-01",
		EndDate:     "2026-05-02",
	})
	require.NoError(t, err)
	require.NotNil(t, it)
	require.Len(t, it.Days, 2)
	for _, day := range it.Days {
		assert.Empty(t, day.Slots)
		assert.Empty(t, day.Transit)
	}
}

func TestLodgingHint(t *testing.T) {
	assert.Nil(t, lodgingHint(request_models.TripRequest{}))

	hint := lodgingHint(request_models.TripRequest{
		Lodging: []request_models.DayLodging{{Day: 0, Latitude: 48.85, Longitude: 2.35}},
	})
	require.NotNil(t, hint)
	assert.InDelta(t, 48.85, hint.Lat, 1e-9)
}

func TestPartyDescriptor(t *testing.T) {
	assert.Equal(t, "1 traveler(s)", partyDescriptor(request_models.TripRequest{}))
	assert.Equal(t, "2 traveler(s), couple", partyDescriptor(request_models.TripRequest{
		PartyCount: 2, PartyType: "couple",
	}))
	assert.Equal(t, "3 traveler(s), family, ages 34, 35, 6", partyDescriptor(request_models.TripRequest{
		PartyCount: 3, PartyType: "family", PartyAges: []int{34, 35, 6},
	}))
}
