package memory

import (
	"context"
	"testing"
	"time"

	"ai-tutor-be/pkg/tutor/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noopEvaluator = session.EvaluatorFunc(func(ctx context.Context, req session.EvaluationRequest) ([]byte, error) {
	return []byte(`{}`), nil
})

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(time.Minute, time.Minute)
	m := session.New("s-1", noopEvaluator)

	repo.Save(m)
	assert.Equal(t, 1, repo.Count())

	got, ok := repo.Get("s-1")
	require.True(t, ok)
	assert.Same(t, m, got)

	repo.Delete("s-1")
	_, ok = repo.Get("s-1")
	assert.False(t, ok)
}

func TestSessionRepository_Expires(t *testing.T) {
	repo := NewSessionRepository(20*time.Millisecond, time.Hour)
	repo.Save(session.New("s-1", noopEvaluator))

	require.Eventually(t, func() bool {
		_, ok := repo.Get("s-1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
