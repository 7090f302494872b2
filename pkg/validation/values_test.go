package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemagen/pkg/producer"
)

func personPayload() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"name", "age"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 2, "maxLength": 8},
			"age":  map[string]any{"type": "integer", "minimum": 18, "maximum": 99},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": []any{"a", "b", "c"}},
				"uniqueItems": true,
				"maxItems":    3,
			},
		},
	}
}

func TestValidator_ProducedValuesConform(t *testing.T) {
	p, err := producer.NewFromPayload(context.Background(), personPayload(), producer.WithSeed(11))
	if err != nil {
		t.Fatalf("producer: %v", err)
	}
	values, err := p.ProduceBatch(50)
	if err != nil {
		t.Fatalf("produce: %v", err)
	}

	validator, err := New(p.Payload())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	if result := validator.ValidateBatch(values); !result.Valid {
		t.Fatalf("expected produced values to validate: %v", result.Err())
	}
}

func TestValidator_ReportsIssues(t *testing.T) {
	validator, err := New(personPayload())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	values := []any{
		map[string]any{"name": "ok", "age": int64(30)},
		map[string]any{"name": "ok", "age": int64(3)},
	}
	result := validator.ValidateBatch(values)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}

	got := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		got = append(got, issue.Field+"/"+issue.Keyword)
		if issue.Index != 1 {
			t.Fatalf("expected issue on value 1, got %+v", issue)
		}
	}
	if diff := cmp.Diff([]string{"age/minimum"}, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if err := result.Err(); err == nil || !strings.Contains(err.Error(), "value 1: age:") {
		t.Fatalf("unexpected folded error: %v", err)
	}
}

func TestValidator_RootIssue(t *testing.T) {
	validator, err := New(personPayload())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	result := validator.Validate(map[string]any{"name": "ok"})
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %+v", result)
	}
	issue := result.Issues[0]
	if issue.Field != "" || issue.Keyword != "required" {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if !strings.Contains(issue.String(), "(root)") {
		t.Fatalf("expected root marker in %q", issue.String())
	}
}

func TestValidator_NestedField(t *testing.T) {
	validator, err := New(personPayload())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	result := validator.Validate(map[string]any{
		"name": "ok",
		"age":  int64(20),
		"tags": []any{"a", "z"},
	})
	if result.Valid || len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %+v", result)
	}
	if got := result.Issues[0]; got.Field != "tags.1" || got.Keyword != "enum" {
		t.Fatalf("unexpected issue %+v", got)
	}
}

func TestValidator_NumericValues(t *testing.T) {
	validator, err := New(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":    map[string]any{"type": "integer", "maximum": int64(9007199254740992)},
			"ratio": map[string]any{"type": "number", "multipleOf": 0.5},
		},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	tests := []struct {
		name    string
		value   map[string]any
		keyword string
	}{
		{name: "integer and decimal", value: map[string]any{"id": int64(42), "ratio": 1.5}},
		{name: "int64 above float precision", value: map[string]any{"id": int64(9007199254740993)}, keyword: "maximum"},
		{name: "fraction for integer", value: map[string]any{"id": 2.5}, keyword: "type"},
		{name: "decimal off step", value: map[string]any{"ratio": 0.3}, keyword: "multipleOf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Validate(tt.value)
			if tt.keyword == "" {
				if !result.Valid {
					t.Fatalf("expected valid, got %+v", result.Issues)
				}
				return
			}
			if result.Valid || len(result.Issues) != 1 {
				t.Fatalf("expected one issue, got %+v", result)
			}
			if got := result.Issues[0].Keyword; got != tt.keyword {
				t.Fatalf("keyword = %q, want %q", got, tt.keyword)
			}
		})
	}
}

func TestNew_RejectsInvalidSchema(t *testing.T) {
	if _, err := New(map[string]any{"type": "object", "minProperties": "two"}); err == nil {
		t.Fatalf("expected meta-schema error")
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"/":          "",
		"/a/0/b":     "a.0.b",
		"/a~1b/c~0d": "a/b.c~d",
		"#/addr/zip": "addr.zip",
	}
	for pointer, want := range tests {
		if got := fieldPathFromPointer(pointer); got != want {
			t.Fatalf("fieldPathFromPointer(%q) = %q, want %q", pointer, got, want)
		}
	}
}
