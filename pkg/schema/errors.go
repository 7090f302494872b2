package schema

import (
	"fmt"
	"strings"
)

// SchemaError reports a document that fails the Draft 4 meta-schema check,
// declares an unsupported draft, or carries a keyword of the wrong shape.
type SchemaError struct {
	Path    string
	Message string
	Err     error
}

func (e *SchemaError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invalid schema"
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		return "schema: " + msg + ": " + e.Err.Error()
	}
	return "schema: " + msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// RefResolutionError reports a $ref whose document or pointer target could
// not be reached.
type RefResolutionError struct {
	Ref     string
	Message string
	Err     error
}

func (e *RefResolutionError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "cannot resolve reference"
	}
	out := fmt.Sprintf("schema: %s %q", msg, e.Ref)
	if e.Err != nil {
		out += ": " + e.Err.Error()
	}
	return out
}

func (e *RefResolutionError) Unwrap() error { return e.Err }

// CyclicReferenceError reports a $ref chain whose expansion revisits a
// reference that is still being expanded.
type CyclicReferenceError struct {
	Ref   string
	Chain []string
}

func (e *CyclicReferenceError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("schema: ref cycle detected at %q", e.Ref)
	}
	return fmt.Sprintf("schema: ref cycle detected at %q (%s)", e.Ref, strings.Join(e.Chain, " -> "))
}

// RangeError reports contradictory bounds found while constructing a
// generator.
type RangeError struct {
	Generator string
	Message   string
}

func (e *RangeError) Error() string {
	if e.Generator == "" {
		return "schema: invalid range: " + e.Message
	}
	return fmt.Sprintf("schema: invalid range for %s generator: %s", e.Generator, e.Message)
}

// UnsupportedTypeError reports a type, format, or generator name that has no
// registered implementation.
type UnsupportedTypeError struct {
	Type      string
	Format    string
	Generator string
}

func (e *UnsupportedTypeError) Error() string {
	switch {
	case e.Generator != "":
		return fmt.Sprintf("schema: unknown generator %q", e.Generator)
	case e.Format != "":
		return fmt.Sprintf("schema: no generator for format %q (type %q)", e.Format, e.Type)
	case e.Type == "":
		return "schema: node has no type"
	default:
		return fmt.Sprintf("schema: unsupported type %q", e.Type)
	}
}
