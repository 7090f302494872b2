// Package openapi lifts named component schemas out of OpenAPI 3 documents
// and rewrites them as Draft 4 payloads the jsonschema resolver understands.
// Component refs stay as $ref pointers into a components block carried with
// the payload, so nested components are expanded by the regular resolver.
package openapi
