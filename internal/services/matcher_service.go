package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/db_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/repositories"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/background"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/quota"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	fuzzyMatchThreshold = 0.5

	// In-flight cap for fallback searches; keeps us polite with the
	// search provider on top of the rate limiter.
	maxSearchInFlight = 3

	externalSearchConfidence = 5.0
	unresolvedConfidence     = 2.0
)

type MatcherServiceInterface interface {
	// MatchCandidates reconciles every candidate against the catalog
	// index. Output has the same length and order as the input.
	MatchCandidates(ctx context.Context, candidates []plan_models.CandidatePlace, idx *CatalogIndex) []plan_models.EnrichedPlace
}

type MatcherService struct {
	search    PlaceSearchClientInterface
	placeRepo repositories.PlaceRepository
	queue     *background.Queue
	gate      *quota.SearchGate
	limiter   *rate.Limiter
}

func NewMatcherService(
	search PlaceSearchClientInterface,
	placeRepo repositories.PlaceRepository,
	queue *background.Queue,
	gate *quota.SearchGate,
) MatcherServiceInterface {
	return &MatcherService{
		search:    search,
		placeRepo: placeRepo,
		queue:     queue,
		gate:      gate,
		limiter:   rate.NewLimiter(rate.Limit(5), 1),
	}
}

func (m *MatcherService) MatchCandidates(ctx context.Context, candidates []plan_models.CandidatePlace, idx *CatalogIndex) []plan_models.EnrichedPlace {
	enriched := make([]plan_models.EnrichedPlace, len(candidates))

	// Catalog passes are pure and run in input order; only candidates
	// that miss the catalog go to the bounded search fan-out below.
	var unmatched []int
	for i, cand := range candidates {
		if ep, ok := m.matchAgainstCatalog(cand, idx); ok {
			enriched[i] = ep
		} else {
			unmatched = append(unmatched, i)
		}
	}

	if len(unmatched) > 0 {
		var wg sync.WaitGroup
		sem := make(chan struct{}, maxSearchInFlight)
		for _, i := range unmatched {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				enriched[i] = m.resolveExternally(ctx, candidates[i], idx)
			}(i)
		}
		wg.Wait()
	}

	return enriched
}

func (m *MatcherService) matchAgainstCatalog(cand plan_models.CandidatePlace, idx *CatalogIndex) (plan_models.EnrichedPlace, bool) {
	// 1. Exact key match.
	if p := idx.Lookup(cand.Name); p != nil {
		prov := plan_models.ProvenanceCatalogExact
		reason := "exact catalog name match"
		if foldKey(cand.Name) == foldKey(p.ExternalID) {
			prov = plan_models.ProvenanceCatalogByExternalID
			reason = "matched catalog entry by external identifier"
		}
		m.learnAlias(p, cand.Name)
		return m.fromCatalog(cand, p, prov, reason), true
	}

	// 2. Substring containment, either direction.
	if p, key := substringMatch(cand.Name, idx); p != nil {
		m.learnAlias(p, cand.Name)
		return m.fromCatalog(cand, p, plan_models.ProvenanceCatalogFuzzy,
			fmt.Sprintf("name contains catalog key %q", key)), true
	}

	// 3. Token-overlap fuzzy match; order- and punctuation-insensitive
	// so localized names like "Tour Eiffel" still land on "Eiffel
	// Tower".
	if p, score := fuzzyMatch(cand.Name, idx); p != nil {
		m.learnAlias(p, cand.Name)
		return m.fromCatalog(cand, p, plan_models.ProvenanceCatalogFuzzy,
			fmt.Sprintf("token overlap %.2f with %q", score, p.Name)), true
	}

	return plan_models.EnrichedPlace{}, false
}

func (m *MatcherService) resolveExternally(ctx context.Context, cand plan_models.CandidatePlace, idx *CatalogIndex) plan_models.EnrichedPlace {
	if m.search == nil || m.gate == nil || !m.gate.TryAcquire("place-search") {
		return unresolved(cand, "no catalog match; search quota unavailable")
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return unresolved(cand, "no catalog match; search cancelled")
	}

	query := cand.Name
	if city := idx.CityName(); city != "" {
		query = cand.Name + " " + city
	}
	result, err := m.search.SearchBest(ctx, query)
	if err != nil {
		log.Printf("place search for %q failed: %v", cand.Name, err)
		return unresolved(cand, "no catalog match; search failed")
	}
	if result == nil {
		return unresolved(cand, "no catalog match; search returned nothing")
	}

	// The place may already be catalogued under a name we have not
	// learned yet: reverse-lookup its external identifier first.
	if p := m.reverseLookup(ctx, result.ExternalID, idx); p != nil {
		m.learnAlias(p, cand.Name)
		return m.fromCatalog(cand, p, plan_models.ProvenanceExternalReconciled,
			fmt.Sprintf("search result reconciled to catalog entry %q", p.Name))
	}

	m.scheduleBackfill(cand, result, idx)

	ep := plan_models.EnrichedPlace{
		Candidate:   cand,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
		HasCoords:   true,
		Confidence:  externalSearchConfidence,
		Provenance:  plan_models.ProvenanceExternalNew,
		Reasons:     []string{"resolved via external place search"},
		ExternalID:  result.ExternalID,
		PhotoRef:    result.PhotoRef,
		Rating:      result.Rating,
		ReviewCount: result.ReviewCount,
	}
	ep.Tier = plan_models.TierFor(ep.Confidence)
	return ep
}

func (m *MatcherService) reverseLookup(ctx context.Context, externalID string, idx *CatalogIndex) *db_models.Place {
	if externalID == "" {
		return nil
	}
	if p := idx.Lookup(externalID); p != nil {
		return p
	}
	if m.placeRepo == nil {
		return nil
	}
	p, err := m.placeRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		log.Printf("reverse lookup for %q failed: %v", externalID, err)
		return nil
	}
	return p
}

// learnAlias schedules the fire-and-forget alias write when the
// authored name is a spelling the catalog does not know yet.
func (m *MatcherService) learnAlias(p *db_models.Place, authored string) {
	if m.queue == nil || m.placeRepo == nil {
		return
	}
	if foldKey(authored) == foldKey(p.Name) || foldKey(authored) == foldKey(p.ExternalID) {
		return
	}
	placeID := p.ID
	m.queue.Submit("alias-learn", func(ctx context.Context) error {
		return m.placeRepo.AppendAlias(ctx, placeID, authored)
	})
}

// scheduleBackfill queues the newly discovered place for catalog
// insertion, with the authored name recorded as its sole alias.
func (m *MatcherService) scheduleBackfill(cand plan_models.CandidatePlace, result *PlaceSearchResult, idx *CatalogIndex) {
	if m.queue == nil || m.placeRepo == nil {
		return
	}
	var cityID uuid.UUID
	if idx.Resolved() {
		cityID = idx.City.ID
	}
	place := &db_models.Place{
		CityID:      cityID,
		Name:        result.Name,
		Aliases:     []string{cand.Name},
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
		ExternalID:  result.ExternalID,
		PhotoRef:    result.PhotoRef,
		Rating:      result.Rating,
		ReviewCount: result.ReviewCount,
		IsFood:      cand.IsFood,
	}
	m.queue.Submit("place-backfill", func(ctx context.Context) error {
		return m.placeRepo.InsertIfAbsent(ctx, place)
	})
}

func (m *MatcherService) fromCatalog(cand plan_models.CandidatePlace, p *db_models.Place, prov plan_models.Provenance, reason string) plan_models.EnrichedPlace {
	id := p.ID
	ep := plan_models.EnrichedPlace{
		Candidate:   cand,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		HasCoords:   true,
		Confidence:  catalogConfidence(p),
		Provenance:  prov,
		Reasons:     []string{reason},
		CatalogID:   &id,
		ExternalID:  p.ExternalID,
		PhotoRef:    p.PhotoRef,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Summary:     p.Summary,
		EntranceFee: p.EntranceFee,
		MealPrice:   p.MealPrice,
	}
	ep.Tier = plan_models.TierFor(ep.Confidence)
	return ep
}

func unresolved(cand plan_models.CandidatePlace, reason string) plan_models.EnrichedPlace {
	return plan_models.EnrichedPlace{
		Candidate:  cand,
		Confidence: unresolvedConfidence,
		Tier:       plan_models.TierFor(unresolvedConfidence),
		Provenance: plan_models.ProvenanceUnresolved,
		Reasons:    []string{reason},
	}
}

// catalogConfidence derives a 0-10 score from the catalog's rating and
// popularity signals.
func catalogConfidence(p *db_models.Place) float64 {
	c := 6.0
	switch {
	case p.Rating >= 4.5:
		c += 2
	case p.Rating >= 4.0:
		c += 1.5
	case p.Rating >= 3.5:
		c += 1
	}
	switch {
	case p.ReviewCount >= 1000:
		c += 2
	case p.ReviewCount >= 100:
		c += 1
	}
	if c > 10 {
		c = 10
	}
	return c
}

func substringMatch(name string, idx *CatalogIndex) (*db_models.Place, string) {
	needle := foldKey(name)
	if len(needle) < 3 {
		return nil, ""
	}

	// Longest containing key wins; iterate sorted for determinism.
	keys := sortedKeys(idx)
	var best *db_models.Place
	var bestKey string
	for _, key := range keys {
		if len(key) < 3 {
			continue
		}
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			if len(key) > len(bestKey) {
				best = idx.Entries()[key]
				bestKey = key
			}
		}
	}
	return best, bestKey
}

func fuzzyMatch(name string, idx *CatalogIndex) (*db_models.Place, float64) {
	candTokens := tokenize(name)
	if len(candTokens) == 0 {
		return nil, 0
	}

	var best *db_models.Place
	bestScore := 0.0
	for _, key := range sortedKeys(idx) {
		score := tokenOverlapScore(candTokens, tokenize(key))
		if score > bestScore {
			bestScore = score
			best = idx.Entries()[key]
		}
	}
	if bestScore < fuzzyMatchThreshold {
		return nil, 0
	}
	return best, bestScore
}

func sortedKeys(idx *CatalogIndex) []string {
	entries := idx.Entries()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// tokenize strips punctuation, lower-cases, and drops tokens of two
// characters or fewer.
func tokenize(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len([]rune(tok)) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func tokenOverlapScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	shared := 0
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if set[t] && !seen[t] {
			shared++
			seen[t] = true
		}
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return float64(shared) / float64(max)
}
