package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "closures", req.Input)
		assert.True(t, req.Truncate)

		_ = json.NewEncoder(w).Encode(map[string]any{"model": "nomic-embed-text", "embeddings": [][]float64{{3, 4}}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "")
	res, err := p.Generate(context.Background(), "closures")
	require.NoError(t, err)

	values := res.Embedding.Values
	require.Len(t, values, 2)
	assert.InDelta(t, 0.6, values[0], 1e-6)
	assert.InDelta(t, 0.8, values[1], 1e-6)
}

func TestOllamaProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "ollama embed missing: status 404")
}

func TestEmbedder_RejectsEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer srv.Close()

	_, err := AsEmbedder(NewOllamaProvider(srv.URL, "")).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestNormalizeVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, normalizeVector(zero))

	v := normalizeVector([]float32{1, 2, 2})
	var mag float64
	for _, x := range v {
		mag += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("ollama", "", "", "")
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, p)

	_, err = NewProvider("gemini", "", "", "")
	assert.Error(t, err)

	_, err = NewProvider("word2vec", "", "", "")
	assert.ErrorContains(t, err, "unknown embedding provider")
}
