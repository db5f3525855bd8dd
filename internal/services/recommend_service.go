package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/quota"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
)

type RecommendServiceInterface interface {
	// RecommendCandidates makes exactly one generative call. An empty
	// result is a valid, degraded outcome; the only hard failure is a
	// missing API credential.
	RecommendCandidates(ctx context.Context, skeleton *plan_models.Skeleton, partyDescriptor string) ([]plan_models.CandidatePlace, error)
}

type RecommendService struct {
	client utils.RecommendClientInterface
	gate   *quota.SearchGate
}

func NewRecommendService(client utils.RecommendClientInterface, gate *quota.SearchGate) RecommendServiceInterface {
	return &RecommendService{client: client, gate: gate}
}

func (r *RecommendService) RecommendCandidates(ctx context.Context, skeleton *plan_models.Skeleton, partyDescriptor string) ([]plan_models.CandidatePlace, error) {
	prompt := buildCandidatePrompt(skeleton, partyDescriptor)

	grounded := r.gate != nil && r.gate.TryAcquire("recommend-grounded")

	raw, err := r.client.GenerateCandidateJSON(ctx, prompt, grounded)
	if err != nil {
		if errors.Is(err, utils.ErrMissingAPIKey) {
			return nil, err
		}
		// Timeouts and transport errors degrade to zero candidates.
		log.Printf("recommendation call failed, continuing with no candidates: %v", err)
		return []plan_models.CandidatePlace{}, nil
	}

	candidates := ParseCandidatePlaces(raw)
	if len(candidates) == 0 {
		log.Printf("recommendation response yielded no usable candidates (%d bytes)", len(raw))
	}
	return candidates, nil
}

func buildCandidatePrompt(skeleton *plan_models.Skeleton, partyDescriptor string) string {
	foodCount := skeleton.RequiredCount * 2 / 5
	if foodCount < 1 {
		foodCount = 1
	}
	otherCount := skeleton.RequiredCount - foodCount

	var tagBuf strings.Builder
	for i, wt := range skeleton.WeightedTags {
		if i > 0 {
			tagBuf.WriteString(", ")
		}
		fmt.Fprintf(&tagBuf, "%s (%d%%)", wt.Tag, wt.Weight)
	}
	if tagBuf.Len() == 0 {
		tagBuf.WriteString("general sightseeing")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recommend exactly %d real places to visit in %s: %d food venues and %d other attractions.\n",
		skeleton.RequiredCount, skeleton.Destination, foodCount, otherCount)
	fmt.Fprintf(&b, "Travelers: %s. Interests by priority: %s.\n", partyDescriptor, tagBuf.String())
	b.WriteString("Return one JSON object and nothing else, matching this example exactly:\n")
	b.WriteString(`{"places":[{"name":"Louvre Museum","reason":"World-class art collection","isFood":false,"timeOfDay":"morning"},{"name":"Le Comptoir","reason":"Classic neo-bistro lunch","isFood":true,"timeOfDay":"afternoon"}]}`)
	b.WriteString("\nUse the local official place names. No markdown, no prose.")
	return b.String()
}

// ParseCandidatePlaces runs the defensive parsing cascade: balanced
// object extraction, strict parse, truncation repair, and finally an
// empty list. It never returns an error; a broken response is a
// degraded outcome, not a failure.
func ParseCandidatePlaces(raw string) []plan_models.CandidatePlace {
	candidate := extractBalancedObject(raw)
	if candidate == "" {
		return []plan_models.CandidatePlace{}
	}

	if places, ok := decodeCandidates(candidate); ok {
		return places
	}

	repaired := RepairTruncatedJSON(candidate)
	if places, ok := decodeCandidates(repaired); ok {
		return places
	}
	return []plan_models.CandidatePlace{}
}

// extractBalancedObject returns the first balanced {...} substring, or
// everything from the first brace onward when the text is truncated.
func extractBalancedObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	if end := findMatchingBrace(s, start); end >= 0 {
		return s[start : end+1]
	}
	return s[start:]
}

func findMatchingBrace(s string, start int) int {
	if start >= len(s) || s[start] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// RepairTruncatedJSON recovers a response cut off mid-stream: it scans
// the places array tracking string/escape state and brace depth, drops
// everything after the last fully-closed element, and closes the array
// and object. Well-formed input is returned unchanged.
func RepairTruncatedJSON(raw string) string {
	if json.Valid([]byte(raw)) {
		return raw
	}

	objStart := strings.Index(raw, "{")
	if objStart < 0 {
		return raw
	}
	arrKey := strings.Index(raw, `"places"`)
	if arrKey < 0 {
		return raw
	}
	arrStart := strings.Index(raw[arrKey:], "[")
	if arrStart < 0 {
		return `{"places":[]}`
	}
	arrStart += arrKey

	depth := 0
	inString := false
	escaped := false
	lastComplete := -1
	for i := arrStart + 1; i < len(raw); i++ {
		ch := raw[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				lastComplete = i
			}
		case ']':
			if depth == 0 {
				// Array closed; only the outer object was cut off.
				return raw[objStart:i+1] + "}"
			}
		}
	}

	if lastComplete < 0 {
		return `{"places":[]}`
	}
	return raw[objStart:lastComplete+1] + "]}"
}

// decodeCandidates parses into a loose tree first and then checks field
// presence and types, so an unexpected shape downgrades to "no result"
// instead of trusting the decoder.
func decodeCandidates(jsonStr string) ([]plan_models.CandidatePlace, bool) {
	var tree map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &tree); err != nil {
		return nil, false
	}

	rawPlaces, ok := tree["places"].([]interface{})
	if !ok {
		return nil, false
	}

	out := make([]plan_models.CandidatePlace, 0, len(rawPlaces))
	for _, rp := range rawPlaces {
		entry, ok := rp.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		reason, _ := entry["reason"].(string)
		isFood, _ := entry["isFood"].(bool)
		timeOfDay, _ := entry["timeOfDay"].(string)

		out = append(out, plan_models.CandidatePlace{
			Name:      strings.TrimSpace(name),
			Reason:    reason,
			IsFood:    isFood,
			TimeOfDay: timeOfDay,
		})
	}
	return out, true
}
