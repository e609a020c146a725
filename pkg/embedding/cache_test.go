package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func TestCachingEmbedder_ReusesVectors(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewCachingEmbedder(inner, 10)
	require.NoError(t, err)
	defer c.Close()

	first, err := c.Embed(context.Background(), "closures")
	require.NoError(t, err)
	c.cache.Wait()

	second, err := c.Embed(context.Background(), "closures")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	// callers may modify what they get back
	second[0] = 99
	third, err := c.Embed(context.Background(), "closures")
	require.NoError(t, err)
	assert.Equal(t, float32(8), third[0])
}

func TestCachingEmbedder_DoesNotCacheFailures(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("provider down")}
	c, err := NewCachingEmbedder(inner, 0)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	c.cache.Wait()
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}
