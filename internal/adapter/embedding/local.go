// Package embedding provides the embedding generators used by the retrieval
// stage: a remote model-backed generator and a deterministic local fallback.
package embedding

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/evaluasi/cv-evaluator/internal/domain"
)

// Dimension is the fixed embedding dimensionality shared by the generators
// and the vacancy collection. A mismatch is a configuration error caught at
// collection-creation time.
const Dimension = 384

// Local is a deterministic hashing embedder. It needs no external backend:
// the same input text always yields the same vector, which lets tests assert
// exact retrieval behavior.
type Local struct {
	dim int
}

// NewLocal constructs a Local embedder with the shared Dimension.
func NewLocal() *Local { return &Local{dim: Dimension} }

// Embed tokenizes text into lowercase words longer than two runes, hashes
// each word to a bucket, increments that bucket, and L2-normalizes the
// result. A vector with zero norm is returned as-is.
func (l *Local) Embed(_ domain.Context, text string) ([]float32, error) {
	vec := make([]float32, l.dim)
	for _, w := range tokenize(text) {
		vec[bucket(w, l.dim)]++
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := words[:0]
	for _, w := range words {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

func bucket(word string, dim int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return int(h.Sum32() % uint32(dim))
}
