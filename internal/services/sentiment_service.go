package services

import (
	"context"
	"errors"
	"strings"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/models/plan_models"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
)

type SentimentScorerInterface interface {
	// DestinationBonus scores how well a destination fits the weighted
	// preference tags, in [0,1].
	DestinationBonus(ctx context.Context, destination string, tags []plan_models.WeightedTag) (float64, error)
}

type SentimentScorer struct {
	embeddings utils.EmbeddingClientInterface
}

func NewSentimentScorer(embeddings utils.EmbeddingClientInterface) SentimentScorerInterface {
	return &SentimentScorer{embeddings: embeddings}
}

func (s *SentimentScorer) DestinationBonus(ctx context.Context, destination string, tags []plan_models.WeightedTag) (float64, error) {
	if s.embeddings == nil {
		return 0, errors.New("no embedding provider configured")
	}

	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, t.Tag)
	}

	destVec, err := s.embeddings.GetEmbedding(ctx, "travel destination: "+destination)
	if err != nil {
		return 0, err
	}
	tagVec, err := s.embeddings.GetEmbedding(ctx, "trip interests: "+strings.Join(parts, ", "))
	if err != nil {
		return 0, err
	}

	// Map cosine [-1,1] onto [0,1].
	bonus := (utils.CosineSimilarity(destVec, tagVec) + 1) / 2
	if bonus < 0 {
		bonus = 0
	}
	if bonus > 1 {
		bonus = 1
	}
	return bonus, nil
}
