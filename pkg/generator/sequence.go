package generator

import (
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Sequence returns start on its first call and adds step on every call after.
// Integral settings yield int64 values, anything else float64.
type Sequence struct {
	integral bool

	nextInt, stepInt     int64
	nextFloat, stepFloat float64
}

// NewSequence reads start and step from the node's generator config. Both
// default to 0 and 1.
func NewSequence(node *schema.Node, _ Env) (Generator, error) {
	startRaw, hasStart := node.Generator.Option("start")
	stepRaw, hasStep := node.Generator.Option("step")
	if !hasStart {
		startRaw = int64(0)
	}
	if !hasStep {
		stepRaw = int64(1)
	}

	startInt, startIsInt := exactInt(startRaw)
	stepInt, stepIsInt := exactInt(stepRaw)
	if startIsInt && stepIsInt {
		return &Sequence{integral: true, nextInt: startInt, stepInt: stepInt}, nil
	}

	start, ok := asFloat(startRaw)
	if !ok {
		return nil, rangeErr("sequence", "start must be a number, got %v", startRaw)
	}
	step, ok := asFloat(stepRaw)
	if !ok {
		return nil, rangeErr("sequence", "step must be a number, got %v", stepRaw)
	}
	return &Sequence{nextFloat: start, stepFloat: step}, nil
}

// Generate implements Generator.
func (g *Sequence) Generate() (any, error) {
	if g.integral {
		value := g.nextInt
		g.nextInt += g.stepInt
		return value, nil
	}
	value := g.nextFloat
	g.nextFloat += g.stepFloat
	return value, nil
}
