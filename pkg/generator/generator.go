// Package generator holds the scalar value generators and the registry that
// hands them out per schema position.
package generator

import (
	"math/rand/v2"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Generator produces one value per call. Implementations may keep state
// between calls; the registry guarantees one instance per PathKey.
type Generator interface {
	Generate() (any, error)
}

// Func adapts a function to the Generator interface.
type Func func() (any, error)

// Generate implements Generator.
func (f Func) Generate() (any, error) {
	return f()
}

// Env carries the shared collaborators every factory may draw on.
type Env struct {
	// Rand is the producer's random source. Generators must not create their
	// own so that a seeded producer stays reproducible.
	Rand *rand.Rand
	// Formats supplies values for well-known string formats.
	Formats FormatValueProvider
}

// Factory builds a generator for a node. Bounds are validated here so
// contradictory schemas fail before any value is produced.
type Factory func(node *schema.Node, env Env) (Generator, error)

// pick returns a uniformly chosen enum member.
func pick(rng *rand.Rand, values []any) any {
	return values[rng.IntN(len(values))]
}
