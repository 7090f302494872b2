package producer

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-schemagen/pkg/testsupport"
	"github.com/goliatone/go-schemagen/pkg/validation"
)

func TestNew_ResolvedPayloadGolden(t *testing.T) {
	doc := testsupport.LoadDocument(t, filepath.Join("testdata", "person.json"))

	p, err := New(testsupport.Context(), doc, WithSeed(1))
	if err != nil {
		t.Fatalf("producer: %v", err)
	}

	golden := filepath.Join("testdata", "person.resolved.golden.json")
	if testsupport.WriteGolden(t, golden, p.Payload()) {
		return
	}
	if diff := testsupport.CompareGolden(t, golden, p.Payload()); diff != "" {
		t.Fatalf("resolved payload mismatch (-want +got):\n%s", diff)
	}
}

func TestProduce_ValuesValidateAgainstPayload(t *testing.T) {
	doc := testsupport.LoadDocument(t, filepath.Join("testdata", "person.yaml"))

	p, err := New(testsupport.Context(), doc, WithSeed(8))
	if err != nil {
		t.Fatalf("producer: %v", err)
	}
	values, err := p.ProduceBatch(25)
	if err != nil {
		t.Fatalf("produce: %v", err)
	}

	validator, err := validation.New(p.Payload())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	if err := validator.ValidateBatch(values).Err(); err != nil {
		t.Fatalf("produced values do not validate: %v", err)
	}
}
