package generator

import (
	"github.com/brianvoe/gofakeit/v7"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Well-known string formats served by a FormatValueProvider.
const (
	FormatEmail    = "email"
	FormatURI      = "uri"
	FormatIPv4     = "ipv4"
	FormatIPv6     = "ipv6"
	FormatHostname = "hostname"
)

// FormatValueProvider supplies realistic values for string formats.
type FormatValueProvider interface {
	Generate(format string) (string, error)
}

// FakerProvider serves formats from gofakeit.
type FakerProvider struct {
	faker *gofakeit.Faker
}

// NewFakerProvider returns a provider whose draws are fixed by seed.
func NewFakerProvider(seed uint64) *FakerProvider {
	return &FakerProvider{faker: gofakeit.New(seed)}
}

// Generate implements FormatValueProvider.
func (p *FakerProvider) Generate(format string) (string, error) {
	switch format {
	case FormatEmail:
		return p.faker.Email(), nil
	case FormatURI:
		return p.faker.URL(), nil
	case FormatIPv4:
		return p.faker.IPv4Address(), nil
	case FormatIPv6:
		return p.faker.IPv6Address(), nil
	case FormatHostname:
		return p.faker.DomainName(), nil
	default:
		return "", &schema.UnsupportedTypeError{Type: schema.TypeString, Format: format}
	}
}

// Format delegates every draw to the provider.
type Format struct {
	format   string
	provider FormatValueProvider
}

// FormatFactory returns a factory bound to one format name.
func FormatFactory(format string) Factory {
	return func(_ *schema.Node, env Env) (Generator, error) {
		if env.Formats == nil {
			return nil, &schema.UnsupportedTypeError{Type: schema.TypeString, Format: format}
		}
		return &Format{format: format, provider: env.Formats}, nil
	}
}

// Generate implements Generator.
func (g *Format) Generate() (any, error) {
	return g.provider.Generate(g.format)
}
