package embedding

import "fmt"

// NewProvider picks the embedding backend by name
func NewProvider(name, ollamaBaseURL, ollamaModel, geminiKey string) (EmbeddingProvider, error) {
	switch name {
	case "", "ollama":
		return NewOllamaProvider(ollamaBaseURL, ollamaModel), nil
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires GOOGLE_GEMINI_API_KEY")
		}
		return NewGeminiProvider(geminiKey), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", name)
	}
}
