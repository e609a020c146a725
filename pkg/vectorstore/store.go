package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the store's dimensionality
	ErrDimensionMismatch = errors.New("vectorstore: embedding dimension mismatch")
	// ErrEmptyEmbedding is returned when the embedder yields a zero-length vector
	ErrEmptyEmbedding = errors.New("vectorstore: empty embedding")
)

// Embedder turns text into a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Document is one indexed passage
type Document struct {
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"-"`
}

// Match is a scored search hit
type Match struct {
	Index      int            `json:"index"`
	Text       string         `json:"text"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Store holds documents and embeddings in insertion order.
// AddDocument calls are serialized; Search calls may run concurrently.
type Store struct {
	mu         sync.RWMutex
	embedder   Embedder
	logger     *zap.Logger
	documents  []Document
	embeddings [][]float32
}

func New(embedder Embedder, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		embedder: embedder,
		logger:   logger,
	}
}

// AddDocument embeds text and appends it. Embedding failures are returned
// unchanged and leave the store as it was.
func (s *Store) AddDocument(ctx context.Context, text string, metadata map[string]any) error {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed document: %w", err)
	}
	if len(vec) == 0 {
		return ErrEmptyEmbedding
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.embeddings) > 0 && len(s.embeddings[0]) != len(vec) {
		return fmt.Errorf("%w: store has %d, got %d", ErrDimensionMismatch, len(s.embeddings[0]), len(vec))
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)

	s.documents = append(s.documents, Document{Text: text, Metadata: copyMetadata(metadata), Embedding: stored})
	s.embeddings = append(s.embeddings, stored)

	s.logger.Debug("document indexed",
		zap.Int("index", len(s.documents)-1),
		zap.Int("dimension", len(stored)),
		zap.Int("text_length", len(text)),
	)
	return nil
}

// Search returns the text of the topK most similar documents
func (s *Store) Search(ctx context.Context, query string, topK int) ([]string, error) {
	matches, err := s.SearchScored(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts, nil
}

// SearchScored ranks every stored document by cosine similarity to the
// query. Ties keep insertion order. At most topK matches are returned.
func (s *Store) SearchScored(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.embeddings) == 0 {
		return []Match{}, nil
	}
	if len(qvec) != len(s.embeddings[0]) {
		return nil, fmt.Errorf("%w: store has %d, query has %d", ErrDimensionMismatch, len(s.embeddings[0]), len(qvec))
	}

	matches := make([]Match, len(s.embeddings))
	for i, emb := range s.embeddings {
		matches[i] = Match{
			Index:      i,
			Text:       s.documents[i].Text,
			Similarity: CosineSimilarity(qvec, emb),
			Metadata:   s.documents[i].Metadata,
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len is the number of stored documents
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Dimension is the vector size of the store, 0 while empty
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.embeddings) == 0 {
		return 0
	}
	return len(s.embeddings[0])
}

// Documents returns a copy of the stored documents in insertion order
func (s *Store) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Document{}, s.documents...)
}

func copyMetadata(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
