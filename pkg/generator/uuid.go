package generator

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// UUID emits random version 4 UUIDs drawn from the producer's source.
type UUID struct {
	reader *randReader
}

// NewUUID builds a UUID generator.
func NewUUID(_ *schema.Node, env Env) (Generator, error) {
	return &UUID{reader: &randReader{rng: env.Rand}}, nil
}

// Generate implements Generator.
func (g *UUID) Generate() (any, error) {
	id, err := uuid.NewRandomFromReader(g.reader)
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}

// randReader exposes a *rand.Rand as an io.Reader.
type randReader struct {
	rng *rand.Rand
}

func (r *randReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for n := 0; n < len(p); n += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.rng.Uint64())
		copy(p[n:], buf[:])
	}
	return len(p), nil
}
