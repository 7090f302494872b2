// Package producer walks a resolved schema and synthesizes values for it.
//
// A Producer is built once per schema. Construction loads the document,
// expands every $ref, checks the result against the Draft 4 meta-schema, and
// decodes it into a schema.Node tree. Each call to Produce then re-walks the
// tree from the root: required properties are always emitted, optional ones
// are included on a coin flip, arrays draw a length between minItems and
// maxItems, and scalars are delegated to generators cached per PathKey.
//
//	p, err := producer.NewFromFile(ctx, "person.json", producer.WithSeed(42))
//	if err != nil {
//		return err
//	}
//	people, err := p.ProduceBatch(10)
package producer
