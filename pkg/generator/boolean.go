package generator

import (
	"math/rand/v2"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Boolean flips a fair coin.
type Boolean struct {
	rng  *rand.Rand
	enum []any
}

// NewBoolean builds a boolean generator.
func NewBoolean(node *schema.Node, env Env) (Generator, error) {
	return &Boolean{rng: env.Rand, enum: node.Enum}, nil
}

// Generate implements Generator.
func (g *Boolean) Generate() (any, error) {
	if len(g.enum) > 0 {
		return pick(g.rng, g.enum), nil
	}
	return g.rng.IntN(2) == 1, nil
}
