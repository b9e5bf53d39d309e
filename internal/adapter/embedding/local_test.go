package embedding_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaluasi/cv-evaluator/internal/adapter/embedding"
)

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestLocal_Deterministic(t *testing.T) {
	t.Parallel()
	l := embedding.NewLocal()
	ctx := context.Background()
	a, err := l.Embed(ctx, "5 years Node.js backend, AWS, Docker")
	require.NoError(t, err)
	b, err := l.Embed(ctx, "5 years Node.js backend, AWS, Docker")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, embedding.Dimension)
}

func TestLocal_UnitNorm(t *testing.T) {
	t.Parallel()
	l := embedding.NewLocal()
	vec, err := l.Embed(context.Background(), "golang postgres redis qdrant")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(vec), 1e-6)
}

func TestLocal_ZeroVectorStaysZero(t *testing.T) {
	t.Parallel()
	l := embedding.NewLocal()
	// No token longer than two runes qualifies, so the vector stays zero and
	// must not be divided by a zero norm.
	vec, err := l.Embed(context.Background(), "a an of to it")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, norm(vec), 1e-12)
	for _, v := range vec {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestLocal_CaseInsensitive(t *testing.T) {
	t.Parallel()
	l := embedding.NewLocal()
	ctx := context.Background()
	a, _ := l.Embed(ctx, "Docker KUBERNETES")
	b, _ := l.Embed(ctx, "docker kubernetes")
	assert.Equal(t, a, b)
}
