package services

import (
	"context"
	"log"
	"time"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/request_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/response_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
)

const (
	lunchWindowStart  = 12 * 60
	lunchWindowEnd    = 14 * 60
	dinnerWindowStart = 18 * 60
	dinnerWindowEnd   = 20*60 + 30

	// Static transit fallback used when the route service errors.
	fallbackLegMeters  = 3000
	fallbackLegMinutes = 20

	defaultCurrency = "USD"
)

// Meal budget per person by budget tier, destination-currency units.
var mealBudgets = map[string]struct{ Lunch, Dinner float64 }{
	"budget":   {Lunch: 12, Dinner: 18},
	"standard": {Lunch: 20, Dinner: 35},
	"luxury":   {Lunch: 45, Dinner: 80},
}

type FinalizeServiceInterface interface {
	// Finalize binds enriched places into per-day schedules and rolls up
	// transit and cost figures. Every external dependency here is
	// degraded-continue: the returned Itinerary is always complete.
	Finalize(ctx context.Context, req request_models.TripRequest, skel plan_models.Skeleton, enriched []plan_models.EnrichedPlace, idx *CatalogIndex) response_models.Itinerary
}

type FinalizeService struct {
	routes     RouteClientInterface
	rates      RateClientInterface
	advisories AdvisoryClientInterface
}

func NewFinalizeService(routes RouteClientInterface, rates RateClientInterface, advisories AdvisoryClientInterface) FinalizeServiceInterface {
	return &FinalizeService{routes: routes, rates: rates, advisories: advisories}
}

func (s *FinalizeService) Finalize(ctx context.Context, req request_models.TripRequest, skel plan_models.Skeleton, enriched []plan_models.EnrichedPlace, idx *CatalogIndex) response_models.Itinerary {
	currency := defaultCurrency
	if idx.Resolved() && idx.City.CurrencyCode != "" {
		currency = idx.City.CurrencyCode
	}
	homeCurrency := req.HomeCurrency
	if homeCurrency == "" {
		homeCurrency = currency
	}

	// One rate for the whole itinerary, fetched once.
	homeRate := 1.0
	if s.rates != nil && homeCurrency != currency {
		homeRate = s.rates.Rate(ctx, currency, homeCurrency)
	}

	mode := req.Mobility
	if mode == "" {
		mode = "transit"
	}
	partySize := skel.PartySize
	if partySize < 1 {
		partySize = 1
	}

	buckets := bucketByDay(skel, enriched, req.BudgetTier)

	it := response_models.Itinerary{
		Destination: skel.Destination,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if idx.Resolved() {
		it.CityID = idx.City.ID.String()
	}

	for _, dayCfg := range skel.Days {
		slots := buckets[dayCfg.Day]
		applySentimentBonus(slots, skel.SentimentBonus)
		validateSlotCoords(slots)

		anchor := s.resolveLodging(req, dayCfg.Day, idx, slots)
		transit := s.buildTransit(ctx, anchor, slots, mode)

		date := skel.StartDate.AddDate(0, 0, dayCfg.Day-1)
		day := response_models.DayPlan{
			Day:     dayCfg.Day,
			Date:    utils.FormatDate(date),
			Lodging: anchor,
			Slots:   slots,
			Transit: transit,
			Costs:   rollUpCosts(slots, transit, currency, homeCurrency, homeRate, partySize),
		}
		if s.advisories != nil && validCoords(anchor.Latitude, anchor.Longitude) {
			day.Advisory = s.advisories.DailyAdvisory(ctx, anchor.Latitude, anchor.Longitude, day.Date)
		}
		it.Days = append(it.Days, day)
	}

	return it
}

// bucketByDay fills each day's slot windows greedily from the enriched
// list, pulling meal-flagged places forward for windows overlapping the
// midday and evening meal ranges.
func bucketByDay(skel plan_models.Skeleton, enriched []plan_models.EnrichedPlace, budgetTier string) map[int][]response_models.ScheduleSlot {
	used := make([]bool, len(enriched))

	take := func(wantFood bool) *plan_models.EnrichedPlace {
		for i := range enriched {
			if !used[i] && enriched[i].Candidate.IsFood == wantFood {
				used[i] = true
				return &enriched[i]
			}
		}
		// Fall back to anything still unused.
		for i := range enriched {
			if !used[i] {
				used[i] = true
				return &enriched[i]
			}
		}
		return nil
	}

	budgets, ok := mealBudgets[budgetTier]
	if !ok {
		budgets = mealBudgets["standard"]
	}

	out := make(map[int][]response_models.ScheduleSlot, len(skel.Days))
	for _, day := range skel.Days {
		start, _ := utils.ParseClock(day.StartClock)
		end, _ := utils.ParseClock(day.EndClock)
		if day.SlotCount < 1 || end <= start {
			continue
		}
		slotLen := (end - start) / day.SlotCount

		var slots []response_models.ScheduleSlot
		for i := 0; i < day.SlotCount; i++ {
			slotStart := start + i*slotLen
			slotEnd := slotStart + slotLen

			meal := mealDesignation(slotStart, slotEnd)
			ep := take(meal != "none")
			if ep == nil {
				break
			}
			if meal != "none" && !ep.Candidate.IsFood {
				// No food venue left; keep the slot but drop the
				// designation so costs stay honest.
				meal = "none"
			}

			slot := response_models.ScheduleSlot{
				StartTime:  utils.FormatClock(slotStart),
				EndTime:    utils.FormatClock(slotEnd),
				PlaceName:  ep.Candidate.Name,
				Latitude:   ep.Latitude,
				Longitude:  ep.Longitude,
				MealSlot:   meal,
				Reason:     ep.Candidate.Reason,
				Provenance: string(ep.Provenance),
				Confidence: ep.Confidence,
				Tier:       string(ep.Tier),
			}
			if meal == "lunch" {
				slot.MealBudget = budgets.Lunch
			} else if meal == "dinner" {
				slot.MealBudget = budgets.Dinner
			}
			if meal != "none" && ep.MealPrice > 0 {
				slot.MealBudget = ep.MealPrice
			}
			if !ep.Candidate.IsFood && ep.EntranceFee > 0 {
				slot.EntranceFee = ep.EntranceFee
			}
			if !ep.HasCoords {
				slot.Flagged = true
				slot.Notes = append(slot.Notes, "location could not be resolved")
			}
			slots = append(slots, slot)
		}
		out[day.Day] = slots
	}

	return out
}

func mealDesignation(startMin, endMin int) string {
	if overlaps(startMin, endMin, lunchWindowStart, lunchWindowEnd) {
		return "lunch"
	}
	if overlaps(startMin, endMin, dinnerWindowStart, dinnerWindowEnd) {
		return "dinner"
	}
	return "none"
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// applySentimentBonus nudges confidence by the destination-level bonus
// in [0,1]; tiers are not recomputed, the bonus is a display signal.
func applySentimentBonus(slots []response_models.ScheduleSlot, bonus *float64) {
	if bonus == nil || *bonus <= 0 {
		return
	}
	for i := range slots {
		slots[i].Confidence += *bonus
		if slots[i].Confidence > 10 {
			slots[i].Confidence = 10
		}
	}
}

func validateSlotCoords(slots []response_models.ScheduleSlot) {
	for i := range slots {
		if slots[i].Flagged {
			continue
		}
		if !validCoords(slots[i].Latitude, slots[i].Longitude) {
			log.Printf("invalid coordinates for %q: %f,%f", slots[i].PlaceName, slots[i].Latitude, slots[i].Longitude)
			slots[i].Flagged = true
			slots[i].Notes = append(slots[i].Notes, "coordinates failed validation")
		}
	}
}

func validCoords(lat, lng float64) bool {
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// resolveLodging walks the anchor chain: explicit day lodging, trip-wide
// lodging (day 0), city centroid, then the day's first stop.
func (s *FinalizeService) resolveLodging(req request_models.TripRequest, day int, idx *CatalogIndex, slots []response_models.ScheduleSlot) response_models.LodgingAnchor {
	for _, l := range req.Lodging {
		if l.Day == day && validCoords(l.Latitude, l.Longitude) {
			return response_models.LodgingAnchor{Latitude: l.Latitude, Longitude: l.Longitude, Source: "day-lodging"}
		}
	}
	for _, l := range req.Lodging {
		if l.Day == 0 && validCoords(l.Latitude, l.Longitude) {
			return response_models.LodgingAnchor{Latitude: l.Latitude, Longitude: l.Longitude, Source: "trip-lodging"}
		}
	}
	if idx.Resolved() && validCoords(idx.City.CentroidLat, idx.City.CentroidLng) {
		return response_models.LodgingAnchor{Latitude: idx.City.CentroidLat, Longitude: idx.City.CentroidLng, Source: "city-centroid"}
	}
	for _, slot := range slots {
		if !slot.Flagged && validCoords(slot.Latitude, slot.Longitude) {
			return response_models.LodgingAnchor{Latitude: slot.Latitude, Longitude: slot.Longitude, Source: "first-stop"}
		}
	}
	return response_models.LodgingAnchor{Source: "first-stop"}
}

// buildTransit computes legs anchor→first, stop→stop, last→anchor,
// sequentially within the day. Legs touching a flagged or anchorless
// endpoint use the static estimate without calling out.
func (s *FinalizeService) buildTransit(ctx context.Context, anchor response_models.LodgingAnchor, slots []response_models.ScheduleSlot, mode string) []response_models.TransitLeg {
	if len(slots) == 0 {
		return nil
	}

	type stop struct {
		name     string
		lat, lng float64
		routable bool
	}
	stops := make([]stop, 0, len(slots)+2)
	stops = append(stops, stop{
		name:     "lodging",
		lat:      anchor.Latitude,
		lng:      anchor.Longitude,
		routable: validCoords(anchor.Latitude, anchor.Longitude),
	})
	for _, sl := range slots {
		stops = append(stops, stop{
			name:     sl.PlaceName,
			lat:      sl.Latitude,
			lng:      sl.Longitude,
			routable: !sl.Flagged && validCoords(sl.Latitude, sl.Longitude),
		})
	}
	stops = append(stops, stops[0])

	legs := make([]response_models.TransitLeg, 0, len(stops)-1)
	for i := 0; i+1 < len(stops); i++ {
		from, to := stops[i], stops[i+1]
		leg := response_models.TransitLeg{
			FromName:        from.name,
			ToName:          to.name,
			Mode:            mode,
			DistanceMeters:  fallbackLegMeters,
			DurationMinutes: fallbackLegMinutes,
			Estimated:       true,
		}
		if s.routes != nil && from.routable && to.routable {
			if routed, err := s.routes.Leg(ctx, from.lat, from.lng, to.lat, to.lng, mode); err == nil {
				leg.DistanceMeters = routed.DistanceMeters
				leg.DurationMinutes = routed.DurationMinutes
				leg.Cost = routed.Cost
				leg.Estimated = false
			} else {
				log.Printf("transit leg %s -> %s failed, using static estimate: %v", from.name, to.name, err)
			}
		}
		legs = append(legs, leg)
	}
	return legs
}

func rollUpCosts(slots []response_models.ScheduleSlot, transit []response_models.TransitLeg, currency, homeCurrency string, homeRate float64, partySize int) response_models.CostBreakdown {
	var costs response_models.CostBreakdown
	costs.Currency = currency
	costs.HomeCurrency = homeCurrency

	for _, sl := range slots {
		if sl.MealSlot != "none" {
			costs.Meals += sl.MealBudget * float64(partySize)
		}
	}
	for _, sl := range slots {
		costs.Entrance += sl.EntranceFee * float64(partySize)
	}
	for _, leg := range transit {
		costs.Transport += leg.Cost
	}

	costs.Total = costs.Meals + costs.Entrance + costs.Transport
	costs.TotalHome = costs.Total * homeRate
	costs.PerPerson = costs.Total / float64(partySize)
	costs.PerPersonHome = costs.TotalHome / float64(partySize)
	return costs
}
