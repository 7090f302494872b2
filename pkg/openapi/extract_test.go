package openapi

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/producer"
)

const petstore = `
openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: object
      required: [id, name, owner, tags]
      properties:
        id:
          type: integer
          minimum: 1
          maximum: 100
          x-generator-config:
            generator: sequence
            start: 1
        name:
          type: string
          minLength: 2
          maxLength: 8
        owner:
          $ref: '#/components/schemas/Owner'
        tags:
          type: array
          minItems: 1
          maxItems: 3
          items:
            $ref: '#/components/schemas/Tag'
    Owner:
      allOf:
        - $ref: '#/components/schemas/Named'
        - type: object
          required: [email]
          properties:
            email:
              type: string
              format: email
    Named:
      type: object
      required: [name]
      properties:
        name:
          type: string
    Tag:
      type: string
      enum: [dog, cat, bird]
    Unused:
      type: boolean
`

func TestComponentPayload_CollectsReachableComponents(t *testing.T) {
	payload, err := SchemaPayload(context.Background(), []byte(petstore), "Pet")
	if err != nil {
		t.Fatalf("schema payload: %v", err)
	}

	if payload["$schema"] != draft4URI {
		t.Fatalf("expected draft-04 dialect, got %v", payload["$schema"])
	}
	props := payload["properties"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"$ref": "#/components/schemas/Owner"}, props["owner"]); diff != "" {
		t.Fatalf("owner ref mismatch (-want +got):\n%s", diff)
	}
	id := props["id"].(map[string]any)
	if _, ok := id["_generator_config"]; !ok {
		t.Fatalf("expected x-generator-config to map onto _generator_config, got %v", id)
	}

	components := payload["components"].(map[string]any)["schemas"].(map[string]any)
	var names []string
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{"Owner", "Tag"}, names); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	owner := components["Owner"].(map[string]any)
	if diff := cmp.Diff([]any{"name", "email"}, owner["required"]); diff != "" {
		t.Fatalf("allOf required mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentPayload_FeedsProducer(t *testing.T) {
	payload, err := SchemaPayload(context.Background(), []byte(petstore), "Pet")
	if err != nil {
		t.Fatalf("schema payload: %v", err)
	}
	p, err := producer.NewFromPayload(context.Background(), payload, producer.WithSeed(4))
	if err != nil {
		t.Fatalf("producer: %v", err)
	}

	for i := 0; i < 20; i++ {
		value, err := p.Produce()
		if err != nil {
			t.Fatalf("produce: %v", err)
		}
		pet := value.(map[string]any)
		if pet["id"] != int64(i+1) {
			t.Fatalf("expected id %d, got %v", i+1, pet["id"])
		}
		owner := pet["owner"].(map[string]any)
		if !strings.Contains(owner["email"].(string), "@") {
			t.Fatalf("expected email, got %v", owner["email"])
		}
		for _, tag := range pet["tags"].([]any) {
			switch tag {
			case "dog", "cat", "bird":
			default:
				t.Fatalf("unexpected tag %v", tag)
			}
		}
	}
}

func TestComponentPayload_UnknownName(t *testing.T) {
	doc, err := Load(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = ComponentPayload(doc, "Missing")
	if err == nil || !strings.Contains(err.Error(), "Named, Owner, Pet, Tag, Unused") {
		t.Fatalf("expected error listing available schemas, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{raw: petstore, want: true},
		{raw: `{"swagger":"2.0"}`, want: true},
		{raw: `{"type":"object"}`, want: false},
		{raw: ``, want: false},
	}
	for _, tc := range cases {
		if got := Detect([]byte(tc.raw)); got != tc.want {
			t.Fatalf("Detect(%.20q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
