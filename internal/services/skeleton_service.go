package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/request_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
)

const (
	defaultStartClock = "09:00"
	defaultEndClock   = "21:00"

	// Extra candidates requested beyond the slot total so downstream
	// match failures never force a second recommendation round-trip.
	candidateBuffer = 4
)

// Minutes per slot by pacing.
var pacingSlotMinutes = map[plan_models.PacingLevel]int{
	plan_models.PacingPacked:  120,
	plan_models.PacingNormal:  180,
	plan_models.PacingRelaxed: 240,
}

type SkeletonServiceInterface interface {
	// BuildSkeleton is pure computation; it never touches the network.
	BuildSkeleton(req request_models.TripRequest) (*plan_models.Skeleton, error)

	// AttachSentimentBonus runs the one best-effort enrichment call.
	// Failures are logged and leave the bonus nil; this never blocks
	// or fails the run beyond its own context deadline.
	AttachSentimentBonus(ctx context.Context, skeleton *plan_models.Skeleton)
}

type SkeletonService struct {
	scorer SentimentScorerInterface
}

func NewSkeletonService(scorer SentimentScorerInterface) SkeletonServiceInterface {
	return &SkeletonService{scorer: scorer}
}

func (s *SkeletonService) BuildSkeleton(req request_models.TripRequest) (*plan_models.Skeleton, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, utils.ErrInvalidInput
	}

	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, utils.ErrInvalidTripDates
	}
	endDate, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, utils.ErrInvalidTripDates
	}

	dayCount := utils.DaysBetween(startDate, endDate)
	if dayCount < 1 {
		return nil, utils.ErrInvalidTripDates
	}

	pacing := normalizePacing(req.Pacing)
	slotMinutes := pacingSlotMinutes[pacing]

	userStart := clockOrDefault(req.StartClock, defaultStartClock)
	userEnd := clockOrDefault(req.EndClock, defaultEndClock)
	defStart, _ := utils.ParseClock(defaultStartClock)
	defEnd, _ := utils.ParseClock(defaultEndClock)

	days := make([]plan_models.DaySlotConfig, 0, dayCount)
	totalSlots := 0
	for day := 1; day <= dayCount; day++ {
		start, end := defStart, defEnd
		switch {
		case dayCount == 1:
			start, end = userStart, userEnd
		case day == 1:
			start = userStart
		case day == dayCount:
			end = userEnd
		}
		if end <= start {
			start, end = defStart, defEnd
		}

		slots := (end - start) / slotMinutes
		if slots < 1 {
			slots = 1
		}
		totalSlots += slots

		days = append(days, plan_models.DaySlotConfig{
			Day:        day,
			StartClock: utils.FormatClock(start),
			EndClock:   utils.FormatClock(end),
			SlotCount:  slots,
		})
	}

	partySize := req.PartyCount
	if partySize < 1 {
		partySize = 1
	}

	return &plan_models.Skeleton{
		Destination:   strings.TrimSpace(req.Destination),
		StartDate:     startDate,
		Days:          days,
		RequiredCount: totalSlots + candidateBuffer,
		PartySize:     partySize,
		Pacing:        pacing,
		WeightedTags:  PreferenceWeights(req.Tags),
	}, nil
}

func (s *SkeletonService) AttachSentimentBonus(ctx context.Context, skeleton *plan_models.Skeleton) {
	if s.scorer == nil || len(skeleton.WeightedTags) == 0 {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	bonus, err := s.scorer.DestinationBonus(ctxWithTimeout, skeleton.Destination, skeleton.WeightedTags)
	if err != nil {
		log.Printf("sentiment bonus for %q skipped: %v", skeleton.Destination, err)
		return
	}
	skeleton.SentimentBonus = &bonus
}

// PreferenceWeights maps a priority-ordered tag list onto percentage
// weights. Fixed tables for up to three tags; longer lists reuse the
// three-tag table and taper off.
func PreferenceWeights(tags []string) []plan_models.WeightedTag {
	weightTables := map[int][]int{
		1: {100},
		2: {60, 40},
		3: {50, 30, 20},
	}

	out := make([]plan_models.WeightedTag, 0, len(tags))
	for i, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		var w int
		switch {
		case len(tags) <= 3:
			w = weightTables[len(tags)][i]
		case i < 3:
			w = weightTables[3][i]
		default:
			w = 20 - 5*(i-2)
			if w < 5 {
				w = 5
			}
		}
		out = append(out, plan_models.WeightedTag{Tag: tag, Weight: w})
	}
	return out
}

func normalizePacing(s string) plan_models.PacingLevel {
	switch plan_models.PacingLevel(strings.ToLower(strings.TrimSpace(s))) {
	case plan_models.PacingPacked:
		return plan_models.PacingPacked
	case plan_models.PacingRelaxed:
		return plan_models.PacingRelaxed
	default:
		return plan_models.PacingNormal
	}
}

func clockOrDefault(s, def string) int {
	if s == "" {
		s = def
	}
	minutes, err := utils.ParseClock(s)
	if err != nil {
		minutes, _ = utils.ParseClock(def)
	}
	return minutes
}
