package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// localDimension matches the store's fixed vector width so the local
// backend is usable as the default, zero-configuration embedder.
const localDimension = 384

// LocalEmbedder is a deterministic, dependency-free embedder: each
// token is hashed into one of Dimension buckets with a signed
// contribution, and the resulting vector is L2-normalized. It exists
// so the full indexing and query pipeline is runnable and testable
// without a model file or network call, the role a local model plays
// in the system this module's behavior is grounded on.
type LocalEmbedder struct{}

// NewLocal returns a ready-to-use LocalEmbedder.
func NewLocal() *LocalEmbedder {
	return &LocalEmbedder{}
}

func (e *LocalEmbedder) Dimension() int  { return localDimension }
func (e *LocalEmbedder) ModelName() string { return "local-hashing-v1" }

func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return embedOne(text), nil
}

func (e *LocalEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t)
	}
	return out, nil
}

func embedOne(text string) []float32 {
	vec := make([]float64, localDimension)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, tok := range tokens {
		tok = strings.ToLower(tok)
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % uint64(localDimension))
		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		vec[bucket] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, localDimension)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
