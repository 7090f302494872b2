package generator

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

const draws = 500

func testEnv(seed uint64) Env {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return Env{Rand: rng, Formats: NewFakerProvider(rng.Uint64())}
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func mustBuild(t *testing.T, factory Factory, node *schema.Node) Generator {
	t.Helper()
	gen, err := factory(node, testEnv(7))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return gen
}

func drawSet(t *testing.T, gen Generator, n int) map[any]int {
	t.Helper()
	seen := make(map[any]int)
	for i := 0; i < n; i++ {
		value, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[value]++
	}
	return seen
}

func keys(seen map[any]int) map[any]bool {
	out := make(map[any]bool, len(seen))
	for key := range seen {
		out[key] = true
	}
	return out
}

func expectRangeError(t *testing.T, err error) {
	t.Helper()
	var rangeErr *schema.RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
}

func TestInteger_MultipleOf(t *testing.T) {
	want := map[any]bool{int64(5): true, int64(10): true, int64(15): true, int64(20): true}
	for _, k := range []float64{5, -5} {
		gen := mustBuild(t, NewInteger, &schema.Node{
			Type:       schema.TypeInteger,
			Minimum:    f64(1),
			Maximum:    f64(20),
			MultipleOf: f64(k),
		})
		if diff := cmp.Diff(want, keys(drawSet(t, gen, draws))); diff != "" {
			t.Fatalf("multipleOf %v values mismatch (-want +got):\n%s", k, diff)
		}
	}
}

func TestInteger_ExclusiveBounds(t *testing.T) {
	cases := []struct {
		name     string
		exclMin  bool
		exclMax  bool
		expected int64
	}{
		{name: "exclusive maximum", exclMax: true, expected: 1},
		{name: "exclusive minimum", exclMin: true, expected: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := mustBuild(t, NewInteger, &schema.Node{
				Type:             schema.TypeInteger,
				Minimum:          f64(1),
				Maximum:          f64(2),
				ExclusiveMinimum: tc.exclMin,
				ExclusiveMaximum: tc.exclMax,
			})
			want := map[any]bool{tc.expected: true}
			if diff := cmp.Diff(want, keys(drawSet(t, gen, 100))); diff != "" {
				t.Fatalf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := NewInteger(&schema.Node{
		Minimum:          f64(1),
		Maximum:          f64(2),
		ExclusiveMinimum: true,
		ExclusiveMaximum: true,
	}, testEnv(1))
	expectRangeError(t, err)
}

func TestInteger_RangeErrors(t *testing.T) {
	cases := []struct {
		name string
		node *schema.Node
	}{
		{name: "max below min", node: &schema.Node{Minimum: f64(10), Maximum: f64(1)}},
		{name: "no multiple in range", node: &schema.Node{Minimum: f64(1), Maximum: f64(4), MultipleOf: f64(5)}},
		{name: "zero multipleOf", node: &schema.Node{MultipleOf: f64(0)}},
		{name: "fractional multipleOf", node: &schema.Node{MultipleOf: f64(2.5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInteger(tc.node, testEnv(1))
			expectRangeError(t, err)
		})
	}
}

func TestInteger_FractionalBoundsAreRounded(t *testing.T) {
	gen := mustBuild(t, NewInteger, &schema.Node{Minimum: f64(1.5), Maximum: f64(3.5)})
	want := map[any]bool{int64(2): true, int64(3): true}
	if diff := cmp.Diff(want, keys(drawSet(t, gen, 200))); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestInteger_PreciseLargeBounds(t *testing.T) {
	node := &schema.Node{
		Minimum: f64(math.MaxInt64 - 1),
		Maximum: f64(math.MaxInt64),
		Raw: map[string]any{
			"minimum": json.Number("9223372036854775806"),
			"maximum": json.Number("9223372036854775807"),
		},
	}
	gen := mustBuild(t, NewInteger, node)
	want := map[any]bool{int64(math.MaxInt64 - 1): true, int64(math.MaxInt64): true}
	if diff := cmp.Diff(want, keys(drawSet(t, gen, 200))); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestInteger_FullDomainByDefault(t *testing.T) {
	gen := mustBuild(t, NewInteger, &schema.Node{Type: schema.TypeInteger})
	var negative, positive bool
	for value := range drawSet(t, gen, 200) {
		n := value.(int64)
		negative = negative || n < 0
		positive = positive || n > 0
	}
	if !negative || !positive {
		t.Fatalf("expected draws on both sides of zero")
	}
}

func TestInteger_Enum(t *testing.T) {
	gen := mustBuild(t, NewInteger, &schema.Node{
		Enum:    []any{int64(3), int64(7)},
		Minimum: f64(100),
		Maximum: f64(1),
	})
	want := map[any]bool{int64(3): true, int64(7): true}
	if diff := cmp.Diff(want, keys(drawSet(t, gen, 200))); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestNumber_Bounds(t *testing.T) {
	cases := []struct {
		name     string
		node     *schema.Node
		min, max float64
	}{
		{name: "defaults", node: &schema.Node{}, min: 0, max: 1000},
		{name: "minimum only", node: &schema.Node{Minimum: f64(5000)}, min: 5000, max: 6000},
		{name: "maximum only", node: &schema.Node{Maximum: f64(-10)}, min: -1010, max: -10},
		{name: "both", node: &schema.Node{Minimum: f64(1), Maximum: f64(1.5)}, min: 1, max: 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := mustBuild(t, NewNumber, tc.node)
			for value := range drawSet(t, gen, draws) {
				f := value.(float64)
				if f < tc.min || f > tc.max {
					t.Fatalf("value %v outside [%v, %v]", f, tc.min, tc.max)
				}
			}
		})
	}
}

func TestNumber_MultipleOf(t *testing.T) {
	gen := mustBuild(t, NewNumber, &schema.Node{
		Minimum:          f64(1),
		Maximum:          f64(3),
		MultipleOf:       f64(0.5),
		ExclusiveMaximum: true,
	})
	want := map[any]bool{1.0: true, 1.5: true, 2.0: true, 2.5: true}
	if diff := cmp.Diff(want, keys(drawSet(t, gen, draws))); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestNumber_DecimalMultipleOf(t *testing.T) {
	gen := mustBuild(t, NewNumber, &schema.Node{Minimum: f64(0), Maximum: f64(1), MultipleOf: f64(0.01)})
	for i := 0; i < draws; i++ {
		value, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		text := strconv.FormatFloat(value.(float64), 'f', -1, 64)
		if _, frac, ok := strings.Cut(text, "."); ok && len(frac) > 2 {
			t.Fatalf("value %s is not a clean multiple of 0.01", text)
		}
	}
}

func TestNumber_RangeErrors(t *testing.T) {
	_, err := NewNumber(&schema.Node{Minimum: f64(2), Maximum: f64(1)}, testEnv(1))
	expectRangeError(t, err)

	_, err = NewNumber(&schema.Node{Minimum: f64(1.1), Maximum: f64(1.4), MultipleOf: f64(0.5)}, testEnv(1))
	expectRangeError(t, err)

	_, err = NewNumber(&schema.Node{Minimum: f64(3), Maximum: f64(3), ExclusiveMaximum: true}, testEnv(1))
	expectRangeError(t, err)
}

func TestString_Lengths(t *testing.T) {
	cases := []struct {
		name     string
		node     *schema.Node
		min, max int
	}{
		{name: "defaults", node: &schema.Node{}, min: 1, max: 10},
		{name: "both", node: &schema.Node{MinLength: intp(3), MaxLength: intp(5)}, min: 3, max: 5},
		{name: "lone minLength", node: &schema.Node{MinLength: intp(15)}, min: 15, max: 24},
		{name: "lone maxLength", node: &schema.Node{MaxLength: intp(4)}, min: 1, max: 4},
		{name: "empty only", node: &schema.Node{MaxLength: intp(0)}, min: 0, max: 0},
	}
	alnum := regexp.MustCompile(`^[a-zA-Z0-9]*$`)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := mustBuild(t, NewString, tc.node)
			for value := range drawSet(t, gen, draws) {
				s := value.(string)
				if len(s) < tc.min || len(s) > tc.max {
					t.Fatalf("length %d outside [%d, %d]", len(s), tc.min, tc.max)
				}
				if !alnum.MatchString(s) {
					t.Fatalf("expected alphanumeric string, got %q", s)
				}
			}
		})
	}
}

func TestString_Pattern(t *testing.T) {
	pattern := `^[a-f]{4}-[0-9]{2}$`
	gen := mustBuild(t, NewString, &schema.Node{Pattern: pattern})
	re := regexp.MustCompile(pattern)
	for value := range drawSet(t, gen, 100) {
		if !re.MatchString(value.(string)) {
			t.Fatalf("value %q does not match %s", value, pattern)
		}
	}
}

func TestString_Errors(t *testing.T) {
	_, err := NewString(&schema.Node{MinLength: intp(5), MaxLength: intp(2)}, testEnv(1))
	expectRangeError(t, err)

	_, err = NewString(&schema.Node{Pattern: "(["}, testEnv(1))
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for invalid pattern, got %v", err)
	}
}

func TestString_Enum(t *testing.T) {
	gen := mustBuild(t, NewString, &schema.Node{Enum: []any{"red", "green"}, Pattern: "^x$"})
	want := map[any]bool{"red": true, "green": true}
	if diff := cmp.Diff(want, keys(drawSet(t, gen, 100))); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestBoolean(t *testing.T) {
	gen := mustBuild(t, NewBoolean, &schema.Node{})
	want := map[any]bool{true: true, false: true}
	if diff := cmp.Diff(want, keys(drawSet(t, gen, 100))); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence(t *testing.T) {
	cases := []struct {
		name    string
		options map[string]any
		want    []any
	}{
		{
			name:    "integral",
			options: map[string]any{"start": int64(0), "step": int64(100)},
			want:    []any{int64(0), int64(100), int64(200), int64(300), int64(400)},
		},
		{
			name:    "defaults",
			options: map[string]any{},
			want:    []any{int64(0), int64(1), int64(2)},
		},
		{
			name:    "fractional",
			options: map[string]any{"start": 0.5, "step": 0.25},
			want:    []any{0.5, 0.75, 1.0},
		},
		{
			name:    "negative step",
			options: map[string]any{"start": int64(10), "step": int64(-3)},
			want:    []any{int64(10), int64(7), int64(4)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := mustBuild(t, NewSequence, &schema.Node{
				Generator: &schema.GeneratorConfig{Name: NameSequence, Options: tc.options},
			})
			got := make([]any, 0, len(tc.want))
			for range tc.want {
				value, err := gen.Generate()
				if err != nil {
					t.Fatalf("generate: %v", err)
				}
				got = append(got, value)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := NewSequence(&schema.Node{
		Generator: &schema.GeneratorConfig{Options: map[string]any{"start": "zero"}},
	}, testEnv(1))
	expectRangeError(t, err)
}

func TestDateTime(t *testing.T) {
	gen := mustBuild(t, NewDateTime, &schema.Node{
		Generator: &schema.GeneratorConfig{Options: map[string]any{
			"date_format": "%Y-%m-%d",
			"from":        "2014-12-31",
			"to":          "2015-10-03",
		}},
	})
	from := time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2015, 10, 3, 0, 0, 0, 0, time.UTC)
	for value := range drawSet(t, gen, 200) {
		parsed, err := time.Parse("2006-01-02", value.(string))
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if parsed.Before(from) || parsed.After(to) {
			t.Fatalf("date %s outside bounds", parsed)
		}
	}

	defaults := mustBuild(t, NewDateTime, &schema.Node{Format: NameDateTime})
	value, err := defaults.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, value.(string)); err != nil {
		t.Fatalf("expected RFC 3339 value, got %q", value)
	}

	_, err = NewDateTime(&schema.Node{
		Generator: &schema.GeneratorConfig{Options: map[string]any{
			"layout": "2006-01-02",
			"from":   "2020-01-02",
			"to":     "2020-01-01",
		}},
	}, testEnv(1))
	expectRangeError(t, err)
}

func TestFormats(t *testing.T) {
	checks := map[string]func(string) bool{
		FormatEmail: func(v string) bool { return strings.Contains(v, "@") },
		FormatIPv4:  func(v string) bool { ip := net.ParseIP(v); return ip != nil && ip.To4() != nil },
		FormatIPv6:  func(v string) bool { ip := net.ParseIP(v); return ip != nil && strings.Contains(v, ":") },
		FormatURI: func(v string) bool {
			u, err := url.Parse(v)
			return err == nil && u.Scheme != "" && u.Host != ""
		},
		FormatHostname: func(v string) bool { return strings.Contains(v, ".") && !strings.Contains(v, "/") },
	}
	for format, check := range checks {
		t.Run(format, func(t *testing.T) {
			gen := mustBuild(t, FormatFactory(format), &schema.Node{Type: schema.TypeString, Format: format})
			for value := range drawSet(t, gen, 20) {
				if !check(value.(string)) {
					t.Fatalf("value %q is not a valid %s", value, format)
				}
			}
		})
	}

	_, err := NewFakerProvider(1).Generate("isbn")
	var unsupported *schema.UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
}

func TestUUID(t *testing.T) {
	first := mustBuild(t, NewUUID, &schema.Node{})
	second := mustBuild(t, NewUUID, &schema.Node{})

	a, err := first.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := second.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a != b {
		t.Fatalf("expected same seed to give same uuid, got %v and %v", a, b)
	}
	parsed, err := uuid.Parse(a.(string))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected version 4, got %d", parsed.Version())
	}

	next, _ := first.Generate()
	if next == a {
		t.Fatalf("expected fresh uuid per call")
	}
}
