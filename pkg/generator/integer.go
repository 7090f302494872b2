package generator

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Integer draws uniformly from the multiples of step in [low, high]. The
// bounds are already aligned to step and already exclude exclusive limits.
type Integer struct {
	rng  *rand.Rand
	enum []any

	low  int64
	step uint64
	// count is the number of candidates; zero stands for the full 2^64 domain.
	count uint64
}

// NewInteger builds an integer generator from the node's numeric keywords.
func NewInteger(node *schema.Node, env Env) (Generator, error) {
	if len(node.Enum) > 0 {
		return &Integer{rng: env.Rand, enum: node.Enum}, nil
	}

	step := int64(1)
	if node.MultipleOf != nil {
		raw, _ := rawBound(node, "multipleOf", node.MultipleOf)
		k, ok := exactInt(raw)
		if !ok {
			return nil, rangeErr("integer", "multipleOf %v is not an integer", *node.MultipleOf)
		}
		if k == 0 {
			return nil, rangeErr("integer", "multipleOf must not be zero")
		}
		if k == math.MinInt64 {
			return nil, rangeErr("integer", "multipleOf %d is out of range", k)
		}
		if k < 0 {
			k = -k
		}
		step = k
	}

	low, err := integerBound(node, "minimum", node.Minimum, true)
	if err != nil {
		return nil, err
	}
	high, err := integerBound(node, "maximum", node.Maximum, false)
	if err != nil {
		return nil, err
	}

	realMin, okMin := alignUp(low, step)
	realMax, okMax := alignDown(high, step)
	if !okMin || !okMax || realMin > realMax {
		return nil, rangeErr("integer", "no multiple of %d in [%d, %d]", step, low, high)
	}

	if node.ExclusiveMinimum && node.Minimum != nil && realMin == low && float64(low) == *node.Minimum {
		if uint64(realMax)-uint64(realMin) < uint64(step) {
			return nil, rangeErr("integer", "exclusive bounds leave no value in [%d, %d]", low, high)
		}
		realMin += step
	}
	if node.ExclusiveMaximum && node.Maximum != nil && realMax == high && float64(high) == *node.Maximum {
		if uint64(realMax)-uint64(realMin) < uint64(step) {
			return nil, rangeErr("integer", "exclusive bounds leave no value in [%d, %d]", low, high)
		}
		realMax -= step
	}

	span := uint64(realMax) - uint64(realMin)
	return &Integer{
		rng:   env.Rand,
		low:   realMin,
		step:  uint64(step),
		count: span/uint64(step) + 1,
	}, nil
}

// Generate implements Generator.
func (g *Integer) Generate() (any, error) {
	if len(g.enum) > 0 {
		return pick(g.rng, g.enum), nil
	}
	var idx uint64
	if g.count == 0 {
		idx = g.rng.Uint64()
	} else {
		idx = g.rng.Uint64N(g.count)
	}
	return int64(uint64(g.low) + idx*g.step), nil
}

// integerBound returns the ceiling of a lower bound or the floor of an upper
// bound, defaulting to the int64 limits.
func integerBound(node *schema.Node, key string, decoded *float64, lower bool) (int64, error) {
	raw, ok := rawBound(node, key, decoded)
	if !ok {
		if lower {
			return math.MinInt64, nil
		}
		return math.MaxInt64, nil
	}
	if value, ok := exactInt(raw); ok {
		return value, nil
	}
	f, ok := asFloat(raw)
	if !ok {
		return 0, fmt.Errorf("generator: %s must be a number", key)
	}
	if lower {
		f = math.Ceil(f)
	} else {
		f = math.Floor(f)
	}
	switch {
	case f <= math.MinInt64:
		return math.MinInt64, nil
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	default:
		return int64(f), nil
	}
}

// alignUp returns the smallest multiple of step that is >= value.
func alignUp(value, step int64) (int64, bool) {
	rem := value % step
	switch {
	case rem == 0:
		return value, true
	case rem < 0:
		return value - rem, true
	default:
		if value > math.MaxInt64-(step-rem) {
			return 0, false
		}
		return value + (step - rem), true
	}
}

// alignDown returns the largest multiple of step that is <= value.
func alignDown(value, step int64) (int64, bool) {
	rem := value % step
	switch {
	case rem == 0:
		return value, true
	case rem > 0:
		return value - rem, true
	default:
		if value < math.MinInt64+(step+rem) {
			return 0, false
		}
		return value - (step + rem), true
	}
}

func rangeErr(generator, format string, args ...any) error {
	return &schema.RangeError{Generator: generator, Message: fmt.Sprintf(format, args...)}
}
