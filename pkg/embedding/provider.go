package embedding

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding is returned when a provider answers without a vector
var ErrEmptyEmbedding = errors.New("embedding provider returned an empty vector")

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) (*EmbeddingResponse, error)
}

// Embedder unwraps provider responses into plain vectors
type Embedder struct {
	provider EmbeddingProvider
}

// AsEmbedder adapts a provider to the vector store's embedder port
func AsEmbedder(provider EmbeddingProvider) *Embedder {
	return &Embedder{provider: provider}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.provider.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Embedding.Values) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return res.Embedding.Values, nil
}
