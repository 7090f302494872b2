// Package validation checks produced values against the schema they were
// produced from.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-schemagen/pkg/jsonschema"
)

// Issue is one failed keyword for one value.
type Issue struct {
	// Index is the position of the value in a batch, 0 for single values.
	Index   int    `json:"index"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	field := i.Field
	if field == "" {
		field = "(root)"
	}
	return fmt.Sprintf("value %d: %s: %s", i.Index, field, i.Message)
}

// Result captures validation outcomes for a value or a batch.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Err folds the issues into one error, nil when the result is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, issue.String())
	}
	return errors.New("validation: " + strings.Join(lines, "; "))
}

// Validator checks values against one resolved schema.
type Validator struct {
	schema *santhosh.Schema
}

// New compiles a resolved payload, such as Producer.Payload, for instance
// validation.
func New(payload map[string]any) (*Validator, error) {
	compiled, err := jsonschema.CompileDraft4(payload)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks a single value.
func (v *Validator) Validate(value any) Result {
	return v.ValidateBatch([]any{value})
}

// ValidateBatch checks every value and collects all issues.
func (v *Validator) ValidateBatch(values []any) Result {
	result := Result{Valid: true}
	for idx, value := range values {
		issues := v.check(value)
		for i := range issues {
			issues[i].Index = idx
		}
		if len(issues) > 0 {
			result.Valid = false
			result.Issues = append(result.Issues, issues...)
		}
	}
	return result
}

func (v *Validator) check(value any) []Issue {
	// Round-trip through JSON so Go numeric types reach the validator as
	// json.Number.
	raw, err := json.Marshal(value)
	if err != nil {
		return []Issue{{Message: fmt.Sprintf("encode value: %v", err)}}
	}
	var instance any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return []Issue{{Message: fmt.Sprintf("decode value: %v", err)}}
	}

	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *santhosh.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: strings.TrimSpace(err.Error())}}
	}

	var issues []Issue
	var collect func(*santhosh.ValidationError)
	collect = func(ve *santhosh.ValidationError) {
		if len(ve.Causes) == 0 {
			issues = append(issues, Issue{
				Path:    ve.InstanceLocation,
				Field:   fieldPathFromPointer(ve.InstanceLocation),
				Keyword: lastSegment(ve.KeywordLocation),
				Message: strings.TrimSpace(ve.Message),
			})
			return
		}
		for _, cause := range ve.Causes {
			collect(cause)
		}
	}
	collect(verr)
	return issues
}

func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for idx, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[idx] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}

func lastSegment(pointer string) string {
	if idx := strings.LastIndex(pointer, "/"); idx >= 0 {
		return pointer[idx+1:]
	}
	return pointer
}
