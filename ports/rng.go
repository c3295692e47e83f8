package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic resampling
type RNGPort interface {
	// Stream creates a deterministic RNG stream for one operation on one key
	// (e.g. the ΔR² bootstrap of a single model pair). The same stage, key and
	// base seed always yield the same sequence, independent of call order.
	Stream(ctx context.Context, stageName, key string, baseSeed int64) (*rand.Rand, error)
}
