package generator

import (
	"math"
	"math/rand/v2"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const (
	defaultNumberSpan = 1000.0
	maxScaledIndex    = float64(1 << 62)
)

// Number draws floats. With a multipleOf other than 1 it draws an integer
// index in [start, end] and scales it back by step.
type Number struct {
	rng  *rand.Rand
	enum []any

	min, max     float64
	exclusiveMin bool
	exclusiveMax bool

	step       float64
	start, end int64
	// divisor is 1/step when that is a whole number, so decimal steps such
	// as 0.01 scale by division and land on the nearest float.
	divisor float64
}

// NewNumber builds a number generator. Missing bounds default to [0, 1000];
// a single bound places the other 1000 away.
func NewNumber(node *schema.Node, env Env) (Generator, error) {
	if len(node.Enum) > 0 {
		return &Number{rng: env.Rand, enum: node.Enum}, nil
	}

	g := &Number{
		rng:          env.Rand,
		min:          0,
		max:          defaultNumberSpan,
		exclusiveMin: node.ExclusiveMinimum && node.Minimum != nil,
		exclusiveMax: node.ExclusiveMaximum && node.Maximum != nil,
	}
	switch {
	case node.Minimum != nil && node.Maximum != nil:
		g.min, g.max = *node.Minimum, *node.Maximum
	case node.Minimum != nil:
		g.min, g.max = *node.Minimum, *node.Minimum+defaultNumberSpan
	case node.Maximum != nil:
		g.min, g.max = *node.Maximum-defaultNumberSpan, *node.Maximum
	}
	if g.min > g.max {
		return nil, rangeErr("number", "minimum %v is greater than maximum %v", g.min, g.max)
	}

	if node.MultipleOf != nil && *node.MultipleOf != 1 {
		step := math.Abs(*node.MultipleOf)
		if step == 0 {
			return nil, rangeErr("number", "multipleOf must not be zero")
		}
		start := math.Ceil(g.min / step)
		end := math.Floor(g.max / step)
		if g.exclusiveMin && start*step == g.min {
			start++
		}
		if g.exclusiveMax && end*step == g.max {
			end--
		}
		if start > end {
			return nil, rangeErr("number", "no multiple of %v in [%v, %v]", step, g.min, g.max)
		}
		if start < -maxScaledIndex || end > maxScaledIndex {
			return nil, rangeErr("number", "range [%v, %v] is too wide for multipleOf %v", g.min, g.max, step)
		}
		g.step = step
		g.start, g.end = int64(start), int64(end)
		if inv := math.Round(1 / step); step < 1 && math.Abs(1/step-inv) < 1e-9 {
			g.divisor = inv
		}
		return g, nil
	}

	if (g.exclusiveMin || g.exclusiveMax) && g.min == g.max {
		return nil, rangeErr("number", "exclusive bounds leave no value in [%v, %v]", g.min, g.max)
	}
	return g, nil
}

// Generate implements Generator.
func (g *Number) Generate() (any, error) {
	if len(g.enum) > 0 {
		return pick(g.rng, g.enum), nil
	}
	if g.step != 0 {
		idx := g.start + g.rng.Int64N(g.end-g.start+1)
		if g.divisor != 0 {
			return float64(idx) / g.divisor, nil
		}
		return float64(idx) * g.step, nil
	}
	for {
		value := g.min + g.rng.Float64()*(g.max-g.min)
		if g.exclusiveMin && value == g.min {
			continue
		}
		if g.exclusiveMax && value == g.max {
			continue
		}
		return value, nil
	}
}
