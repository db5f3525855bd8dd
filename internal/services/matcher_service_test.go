package services

import (
	"context"
	"sync"
	"testing"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/db_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/background"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/quota"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearchClient struct {
	mu      sync.Mutex
	results map[string]*PlaceSearchResult
	calls   []string
}

func (f *fakeSearchClient) SearchBest(ctx context.Context, query string) (*PlaceSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	for key, r := range f.results {
		if key == query {
			return r, nil
		}
	}
	return nil, nil
}

type fakePlaceRepo struct {
	mu         sync.Mutex
	byExternal map[string]*db_models.Place
	aliases    map[uuid.UUID][]string
	inserted   []*db_models.Place
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{
		byExternal: map[string]*db_models.Place{},
		aliases:    map[uuid.UUID][]string{},
	}
}

func (f *fakePlaceRepo) ListByCity(ctx context.Context, cityID uuid.UUID) ([]db_models.Place, error) {
	return nil, nil
}

func (f *fakePlaceRepo) FindByExternalID(ctx context.Context, externalID string) (*db_models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byExternal[externalID], nil
}

func (f *fakePlaceRepo) AppendAlias(ctx context.Context, placeID uuid.UUID, alias string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.aliases[placeID] {
		if a == alias {
			return nil
		}
	}
	f.aliases[placeID] = append(f.aliases[placeID], alias)
	return nil
}

func (f *fakePlaceRepo) InsertIfAbsent(ctx context.Context, place *db_models.Place) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, place)
	return nil
}

func catalogPlace(name, externalID string, rating float64, reviews int, aliases ...string) db_models.Place {
	return db_models.Place{
		BaseModel:   db_models.BaseModel{ID: uuid.New()},
		Name:        name,
		Aliases:     aliases,
		Latitude:    48.85,
		Longitude:   2.35,
		ExternalID:  externalID,
		Rating:      rating,
		ReviewCount: reviews,
	}
}

func buildIndex(city *db_models.City, places ...db_models.Place) *CatalogIndex {
	idx := &CatalogIndex{City: city, places: places, byKey: map[string]*db_models.Place{}}
	for i := range idx.places {
		p := &idx.places[i]
		addKey(idx.byKey, p.Name, p)
		addKey(idx.byKey, p.LocalName, p)
		addKey(idx.byKey, p.ExternalID, p)
		for _, alias := range p.Aliases {
			addKey(idx.byKey, alias, p)
		}
	}
	return idx
}

func parisCity() *db_models.City {
	return &db_models.City{
		BaseModel:    db_models.BaseModel{ID: uuid.New()},
		Name:         "Paris",
		CurrencyCode: "EUR",
		CentroidLat:  48.8566,
		CentroidLng:  2.3522,
	}
}

func TestMatchCandidatesExactMatch(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	idx := buildIndex(parisCity(), catalogPlace("Eiffel Tower", "ext-eiffel", 4.7, 250000))
	svc := NewMatcherService(nil, repo, queue, nil)

	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "Eiffel Tower", Reason: "Iconic"},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceCatalogExact, got[0].Provenance)
	assert.NotNil(t, got[0].CatalogID)
	assert.True(t, got[0].HasCoords)
	// 6.0 base + 2 for rating >= 4.5 + 2 for reviews >= 1000.
	assert.InDelta(t, 10.0, got[0].Confidence, 1e-9)
	assert.Equal(t, plan_models.TierHigh, got[0].Tier)

	// Canonical spelling: nothing to learn.
	queue.Drain()
	assert.Empty(t, repo.aliases)
}

func TestMatchCandidatesFuzzyMatchLearnsAlias(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	eiffel := catalogPlace("Eiffel Tower", "ext-eiffel", 4.2, 500)
	idx := buildIndex(parisCity(), eiffel)
	svc := NewMatcherService(nil, repo, queue, nil)

	// "Tour Eiffel" shares one of two tokens with "Eiffel Tower":
	// overlap 1/2 = 0.5, right on the acceptance threshold.
	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "Tour Eiffel"},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceCatalogFuzzy, got[0].Provenance)
	require.NotNil(t, got[0].CatalogID)

	queue.Drain()
	assert.Equal(t, []string{"Tour Eiffel"}, repo.aliases[*got[0].CatalogID])
}

func TestMatchCandidatesAliasListOnlyGrows(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	idx := buildIndex(parisCity(), catalogPlace("Eiffel Tower", "ext-eiffel", 4.2, 500, "Tour Eiffel"))
	svc := NewMatcherService(nil, repo, queue, nil)

	for i := 0; i < 3; i++ {
		svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
			{Name: "Tour Eiffel"},
		}, idx)
	}
	queue.Drain()

	// Known alias hits exactly and re-learning it is a repo-level
	// no-op, so the list never shrinks or duplicates.
	for _, aliases := range repo.aliases {
		assert.LessOrEqual(t, len(aliases), 1)
	}
}

func TestMatchCandidatesSubstringMatch(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	idx := buildIndex(parisCity(), catalogPlace("Musee du Louvre", "ext-louvre", 4.8, 150000))
	svc := NewMatcherService(nil, repo, queue, nil)

	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "Louvre"},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceCatalogFuzzy, got[0].Provenance)
}

func TestMatchCandidatesExternalIDKeyHit(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	idx := buildIndex(parisCity(), catalogPlace("Eiffel Tower", "ext-eiffel", 4.7, 250000))
	svc := NewMatcherService(nil, repo, queue, nil)

	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "ext-eiffel"},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceCatalogByExternalID, got[0].Provenance)
}

func TestMatchCandidatesSearchFallbackNewPlace(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	search := &fakeSearchClient{results: map[string]*PlaceSearchResult{
		"Cafe Obscur Paris": {
			Name:       "Cafe Obscur",
			Latitude:   48.86,
			Longitude:  2.34,
			ExternalID: "ext-obscur",
			Rating:     4.1,
		},
	}}
	gate := quota.NewSearchGate(10)
	idx := buildIndex(parisCity())
	svc := NewMatcherService(search, repo, queue, gate)

	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "Cafe Obscur", IsFood: true},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceExternalNew, got[0].Provenance)
	assert.InDelta(t, externalSearchConfidence, got[0].Confidence, 1e-9)
	assert.True(t, got[0].HasCoords)
	assert.Equal(t, "ext-obscur", got[0].ExternalID)

	queue.Drain()
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "Cafe Obscur", repo.inserted[0].Name)
	assert.Equal(t, []string{"Cafe Obscur"}, []string(repo.inserted[0].Aliases))
}

func TestMatchCandidatesSearchReconciledAgainstCatalog(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)

	// Catalogued under a name the candidate does not resemble, but the
	// search result carries its external identifier.
	hidden := catalogPlace("Le Procope", "ext-procope", 4.3, 8000)
	repo.byExternal["ext-procope"] = &hidden

	search := &fakeSearchClient{results: map[string]*PlaceSearchResult{
		"Oldest Restaurant Paris": {
			Name:       "Le Procope",
			Latitude:   48.853,
			Longitude:  2.339,
			ExternalID: "ext-procope",
		},
	}}
	gate := quota.NewSearchGate(10)
	idx := buildIndex(parisCity())
	svc := NewMatcherService(search, repo, queue, gate)

	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "Oldest Restaurant", IsFood: true},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceExternalReconciled, got[0].Provenance)
	require.NotNil(t, got[0].CatalogID)
	assert.Equal(t, hidden.ID, *got[0].CatalogID)

	queue.Drain()
	assert.Equal(t, []string{"Oldest Restaurant"}, repo.aliases[hidden.ID])
	assert.Empty(t, repo.inserted)
}

func TestMatchCandidatesQuotaExhaustedLeavesUnresolved(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	search := &fakeSearchClient{}
	gate := quota.NewSearchGate(0)
	idx := buildIndex(parisCity())
	svc := NewMatcherService(search, repo, queue, gate)

	got := svc.MatchCandidates(context.Background(), []plan_models.CandidatePlace{
		{Name: "Somewhere Unknown"},
	}, idx)

	require.Len(t, got, 1)
	assert.Equal(t, plan_models.ProvenanceUnresolved, got[0].Provenance)
	assert.False(t, got[0].HasCoords)
	assert.InDelta(t, unresolvedConfidence, got[0].Confidence, 1e-9)
	assert.Equal(t, plan_models.TierLow, got[0].Tier)
	assert.Empty(t, search.calls)
}

func TestMatchCandidatesPreservesInputOrder(t *testing.T) {
	repo := newFakePlaceRepo()
	queue := background.NewQueue(1)
	idx := buildIndex(parisCity(),
		catalogPlace("Eiffel Tower", "ext-eiffel", 4.7, 250000),
		catalogPlace("Musee du Louvre", "ext-louvre", 4.8, 150000),
	)
	gate := quota.NewSearchGate(10)
	svc := NewMatcherService(&fakeSearchClient{}, repo, queue, gate)

	names := []string{"Eiffel Tower", "Nowhere One", "Musee du Louvre", "Nowhere Two"}
	candidates := make([]plan_models.CandidatePlace, len(names))
	for i, n := range names {
		candidates[i] = plan_models.CandidatePlace{Name: n}
	}

	got := svc.MatchCandidates(context.Background(), candidates, idx)
	require.Len(t, got, len(names))
	for i, n := range names {
		assert.Equal(t, n, got[i].Candidate.Name)
	}
	assert.Equal(t, plan_models.ProvenanceCatalogExact, got[0].Provenance)
	assert.Equal(t, plan_models.ProvenanceUnresolved, got[1].Provenance)
	assert.Equal(t, plan_models.ProvenanceCatalogExact, got[2].Provenance)
	assert.Equal(t, plan_models.ProvenanceUnresolved, got[3].Provenance)
}
