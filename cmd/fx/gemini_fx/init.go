package gemini_fx

import (
	"log"
	"os"

	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/internal/services"
	"github.com/VROIS/namaneul-wihan-yeohaeng-iljeong-sub000/pkg/utils"
	"go.uber.org/fx"
)

var Module = fx.Provide(provideRecommendClient, provideEmbeddingClient, provideSentimentScorer)

func provideRecommendClient() utils.RecommendClientInterface {
	client, err := utils.NewGeminiRecommendClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("failed to initialize gemini client: %v", err)
	}
	return client
}

// provideEmbeddingClient may return nil when no provider is configured;
// the sentiment scorer treats that as "no bonus available".
func provideEmbeddingClient() utils.EmbeddingClientInterface {
	provider := os.Getenv("EMBEDDING_PROVIDER")
	apiKey := os.Getenv("OPENAI_API_KEY")
	if provider == "gemini" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	client, err := utils.NewEmbeddingClient(provider, apiKey, os.Getenv("EMBEDDING_MODEL"))
	if err != nil {
		log.Printf("embedding client unavailable, sentiment bonus disabled: %v", err)
		return nil
	}
	return client
}

func provideSentimentScorer(embeddings utils.EmbeddingClientInterface) services.SentimentScorerInterface {
	return services.NewSentimentScorer(embeddings)
}
