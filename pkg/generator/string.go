package generator

import (
	"math/rand/v2"
	"regexp"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	defaultMinLength = 1
	defaultMaxLength = 10
)

// String emits enum picks, pattern matches, or alphanumeric strings.
type String struct {
	rng  *rand.Rand
	enum []any

	pattern string
	faker   *gofakeit.Faker

	minLength, maxLength int
}

// NewString builds a string generator. Lengths default to [1, 10]; a lone
// minLength above the default maximum widens it to minLength+9.
func NewString(node *schema.Node, env Env) (Generator, error) {
	g := &String{rng: env.Rand, enum: node.Enum}
	if len(node.Enum) > 0 {
		return g, nil
	}

	if node.Pattern != "" {
		if _, err := regexp.Compile(node.Pattern); err != nil {
			return nil, &schema.SchemaError{Message: "invalid pattern " + node.Pattern, Err: err}
		}
		g.pattern = node.Pattern
		g.faker = gofakeit.New(env.Rand.Uint64())
		return g, nil
	}

	g.minLength, g.maxLength = defaultMinLength, defaultMaxLength
	switch {
	case node.MinLength != nil && node.MaxLength != nil:
		g.minLength, g.maxLength = *node.MinLength, *node.MaxLength
	case node.MinLength != nil:
		g.minLength = *node.MinLength
		if g.minLength > defaultMaxLength {
			g.maxLength = g.minLength + defaultMaxLength - 1
		}
	case node.MaxLength != nil:
		g.maxLength = *node.MaxLength
		if g.maxLength < defaultMinLength {
			g.minLength = g.maxLength
		}
	}
	if g.minLength < 0 || g.maxLength < 0 {
		return nil, rangeErr("string", "lengths must not be negative")
	}
	if g.maxLength < g.minLength {
		return nil, rangeErr("string", "maxLength %d is less than minLength %d", g.maxLength, g.minLength)
	}
	return g, nil
}

// Generate implements Generator.
func (g *String) Generate() (any, error) {
	switch {
	case len(g.enum) > 0:
		return pick(g.rng, g.enum), nil
	case g.pattern != "":
		return g.faker.Regex(g.pattern), nil
	}
	size := g.minLength + g.rng.IntN(g.maxLength-g.minLength+1)
	out := make([]byte, size)
	for idx := range out {
		out[idx] = alphanumeric[g.rng.IntN(len(alphanumeric))]
	}
	return string(out), nil
}
