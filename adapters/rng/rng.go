package rng

import (
	"context"
	"math/rand"

	"apareport/ports"
)

// Adapter implements ports.RNGPort with math/rand sources
type Adapter struct{}

var _ ports.RNGPort = (*Adapter)(nil)

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Stream creates a deterministic RNG stream for a stage/key pair
func (a *Adapter) Stream(ctx context.Context, stageName, key string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := baseSeed
	if stageName != "" {
		seed = int64(hashString(stageName)) + seed
	}
	if key != "" {
		seed = int64(hashString(key)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString is djb2
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
