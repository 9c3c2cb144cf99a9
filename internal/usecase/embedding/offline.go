package embedding

import (
	"hash/fnv"
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/alr-main/better-beans-server/internal/domain"
)

// positionsPerTag is how many vector positions each tag activates.
const positionsPerTag = 3

// Offline is a deterministic hash-based embedding generator. It has no
// semantic fidelity; its only job is to keep the pipeline alive when the
// hosted provider is unreachable. Identical tag sets always produce identical
// vectors.
type Offline struct {
	dimensions int
}

// NewOffline creates an offline generator. dimensions falls back to the
// domain default when non-positive.
func NewOffline(dimensions int) *Offline {
	if dimensions <= 0 {
		dimensions = domain.EmbeddingDimensions
	}
	return &Offline{dimensions: dimensions}
}

// Generate hashes each tag to several positions in the vector space, sets
// those positions to a unit value, and L2-normalizes the result.
func (o *Offline) Generate(tags []string) []float32 {
	vector := make([]float32, o.dimensions)

	for _, tag := range tags {
		for salt := 0; salt < positionsPerTag; salt++ {
			h := fnv.New64a()
			_, _ = h.Write([]byte(tag))
			_, _ = h.Write([]byte{byte(salt)})
			pos := h.Sum64() % uint64(o.dimensions)
			vector[pos] = 1
		}
	}

	norm := float32(math.Sqrt(float64(vek32.Dot(vector, vector))))
	if norm > 0 {
		vek32.DivNumber_Inplace(vector, norm)
	}
	return vector
}
