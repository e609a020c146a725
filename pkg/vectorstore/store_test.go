package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bagOfLetters embeds text as letter frequencies a-z, enough to make
// identical strings score 1 and disjoint ones score 0.
type bagOfLetters struct{}

func (bagOfLetters) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

type fixedEmbedder map[string][]float32

func (f fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := f[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"zero left", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"zero right", []float32{1, 2, 3}, []float32{0, 0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStore_SelfRetrieval(t *testing.T) {
	ctx := context.Background()
	s := New(bagOfLetters{}, nil)

	docs := []string{
		"loops repeat a block of code",
		"variables hold values",
		"xyz quiz jazz",
	}
	for _, d := range docs {
		require.NoError(t, s.AddDocument(ctx, d, map[string]any{"course": "javascript"}))
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 26, s.Dimension())

	for _, d := range docs {
		got, err := s.Search(ctx, d, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, d, got[0])
	}
}

func TestStore_SearchOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	emb := fixedEmbedder{
		"a":     {1, 0},
		"b":     {0, 1},
		"c":     {1, 0},
		"d":     {1, 1},
		"zero":  {0, 0},
		"query": {1, 0},
	}
	s := New(emb, nil)
	for _, d := range []string{"a", "b", "c", "d", "zero"} {
		require.NoError(t, s.AddDocument(ctx, d, nil))
	}

	matches, err := s.SearchScored(ctx, "query", 10)
	require.NoError(t, err)
	require.Len(t, matches, 5)

	// a and c tie at 1; insertion order decides
	assert.Equal(t, "a", matches[0].Text)
	assert.Equal(t, 0, matches[0].Index)
	assert.Equal(t, "c", matches[1].Text)
	assert.Equal(t, "d", matches[2].Text)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
	// b and zero tie at 0
	assert.Equal(t, "b", matches[3].Text)
	assert.Equal(t, "zero", matches[4].Text)

	top, err := s.Search(ctx, "query", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, top)

	none, err := s.Search(ctx, "query", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SearchEmpty(t *testing.T) {
	s := New(bagOfLetters{}, nil)
	got, err := s.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ProviderFailureLeavesStoreUsable(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("provider down")
	fail := true
	s := New(embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		if fail && text == "bad" {
			return nil, boom
		}
		return bagOfLetters{}.Embed(ctx, text)
	}), nil)

	require.NoError(t, s.AddDocument(ctx, "good", nil))

	err := s.AddDocument(ctx, "bad", nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Len())

	fail = false
	require.NoError(t, s.AddDocument(ctx, "bad", nil))
	assert.Equal(t, 2, s.Len())

	got, err := s.Search(ctx, "good", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, got)
}

func TestStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := New(fixedEmbedder{
		"two":   {1, 2},
		"three": {1, 2, 3},
		"empty": {},
	}, nil)

	require.NoError(t, s.AddDocument(ctx, "two", nil))

	err := s.AddDocument(ctx, "three", nil)
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = s.AddDocument(ctx, "empty", nil)
	require.ErrorIs(t, err, ErrEmptyEmbedding)

	assert.Equal(t, 1, s.Len())
	assert.Len(t, s.Documents(), 1)

	_, err = s.Search(ctx, "three", 1)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStore_MetadataIsCopied(t *testing.T) {
	ctx := context.Background()
	s := New(bagOfLetters{}, nil)

	meta := map[string]any{"course": "python"}
	require.NoError(t, s.AddDocument(ctx, "lists", meta))
	meta["course"] = "changed"

	matches, err := s.SearchScored(ctx, "lists", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "python", matches[0].Metadata["course"])
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := New(bagOfLetters{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.AddDocument(ctx, fmt.Sprintf("doc %d about loops", i), map[string]any{"i": i})
			_, _ = s.Search(ctx, "loops", 3)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	for _, d := range s.Documents() {
		assert.Equal(t, fmt.Sprintf("doc %d about loops", d.Metadata["i"]), d.Text)
		assert.Len(t, d.Embedding, 26)
	}
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
