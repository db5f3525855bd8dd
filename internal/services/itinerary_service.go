package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/request_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/response_models"
)

// pipelineDeadline bounds the whole synthesis run end to end.
const pipelineDeadline = 8 * time.Second

type ItineraryServiceInterface interface {
	// GenerateItinerary runs the full synthesis pipeline. It returns
	// either a complete Itinerary or a typed fatal error, never a
	// partial result.
	GenerateItinerary(ctx context.Context, req request_models.TripRequest) (*response_models.Itinerary, error)
}

type ItineraryService struct {
	skeleton  SkeletonServiceInterface
	recommend RecommendServiceInterface
	catalog   CatalogServiceInterface
	matcher   MatcherServiceInterface
	finalize  FinalizeServiceInterface
}

func NewItineraryService(
	skeleton SkeletonServiceInterface,
	recommend RecommendServiceInterface,
	catalog CatalogServiceInterface,
	matcher MatcherServiceInterface,
	finalize FinalizeServiceInterface,
) ItineraryServiceInterface {
	return &ItineraryService{
		skeleton:  skeleton,
		recommend: recommend,
		catalog:   catalog,
		matcher:   matcher,
		finalize:  finalize,
	}
}

func (s *ItineraryService) GenerateItinerary(ctx context.Context, req request_models.TripRequest) (*response_models.Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, pipelineDeadline)
	defer cancel()

	started := time.Now()

	skel, err := s.skeleton.BuildSkeleton(req)
	if err != nil {
		return nil, err
	}

	// Sentiment, recommendation, and catalog preload are mutually
	// independent; fan them out and join what each consumer needs.
	var (
		wg         sync.WaitGroup
		candidates []plan_models.CandidatePlace
		recErr     error
		idx        *CatalogIndex
	)
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.skeleton.AttachSentimentBonus(ctx, skel)
	}()
	go func() {
		defer wg.Done()
		candidates, recErr = s.recommend.RecommendCandidates(ctx, skel, partyDescriptor(req))
	}()
	go func() {
		defer wg.Done()
		var catErr error
		idx, catErr = s.catalog.PreloadCity(ctx, req.Destination, lodgingHint(req))
		if catErr != nil {
			log.Printf("catalog preload for %q failed: %v", req.Destination, catErr)
			idx = &CatalogIndex{}
		}
	}()

	wg.Wait()
	if recErr != nil {
		return nil, recErr
	}

	enriched := s.matcher.MatchCandidates(ctx, candidates, idx)

	itinerary := s.finalize.Finalize(ctx, req, *skel, enriched, idx)
	log.Printf("itinerary for %q: %d days, %d candidates, took %s",
		req.Destination, len(itinerary.Days), len(candidates), time.Since(started).Round(time.Millisecond))
	return &itinerary, nil
}

// partyDescriptor renders the party fields into prompt-ready text.
func partyDescriptor(req request_models.TripRequest) string {
	count := req.PartyCount
	if count < 1 {
		count = 1
	}
	parts := []string{fmt.Sprintf("%d traveler(s)", count)}
	if req.PartyType != "" {
		parts = append(parts, req.PartyType)
	}
	if len(req.PartyAges) > 0 {
		ages := make([]string, len(req.PartyAges))
		for i, a := range req.PartyAges {
			ages[i] = fmt.Sprintf("%d", a)
		}
		parts = append(parts, "ages "+strings.Join(ages, ", "))
	}
	return strings.Join(parts, ", ")
}

// lodgingHint surfaces any usable lodging coordinates so the catalog
// resolver can fall back to nearest-centroid lookup.
func lodgingHint(req request_models.TripRequest) *GeoHint {
	for _, l := range req.Lodging {
		if l.Latitude != 0 || l.Longitude != 0 {
			return &GeoHint{Lat: l.Latitude, Lng: l.Longitude}
		}
	}
	return nil
}
