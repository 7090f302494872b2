package generator

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Built-in generator names.
const (
	NameInteger  = "integer"
	NameNumber   = "number"
	NameString   = "string"
	NameBoolean  = "boolean"
	NameSequence = "sequence"
	NameDateTime = "date-time"
	NameUUID     = "uuid"
)

// legacyNames keeps the generator names older schemas spell out in
// _generator_config.
var legacyNames = map[string]string{
	"StdIntegerRandom":    NameInteger,
	"StdIntegerSequence":  NameSequence,
	"StdNumberRandom":     NameNumber,
	"StdStringRandom":     NameString,
	"StdBooleanRandom":    NameBoolean,
	"StdDateTimeRandom":   NameDateTime,
	"StdEmailRandom":      FormatEmail,
	"StdIPv4Random":       FormatIPv4,
	"StdIPv6Random":       FormatIPv6,
	"StdURIRandom":        FormatURI,
	"StdDomainNameRandom": FormatHostname,
}

// Catalog stores generator factories by name. It is closed: names resolve
// only to factories registered here.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewCatalog returns a catalog holding the built-in factories and their
// legacy aliases.
func NewCatalog() *Catalog {
	c := &Catalog{factories: make(map[string]Factory)}
	c.MustRegister(NameInteger, NewInteger)
	c.MustRegister(NameNumber, NewNumber)
	c.MustRegister(NameString, NewString)
	c.MustRegister(NameBoolean, NewBoolean)
	c.MustRegister(NameSequence, NewSequence)
	c.MustRegister(NameDateTime, NewDateTime)
	c.MustRegister(NameUUID, NewUUID)
	for _, format := range []string{FormatEmail, FormatURI, FormatIPv4, FormatIPv6, FormatHostname} {
		c.MustRegister(format, FormatFactory(format))
	}
	for alias, target := range legacyNames {
		c.MustRegister(alias, c.factories[target])
	}
	return c
}

// Register adds a factory. Duplicate names return an error.
func (c *Catalog) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("generator: factory is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("generator: factory name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("generator: factory %q already registered", name)
	}
	c.factories[name] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (c *Catalog) MustRegister(name string, factory Factory) {
	if err := c.Register(name, factory); err != nil {
		panic(err)
	}
}

// Set adds or replaces a factory.
func (c *Catalog) Set(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("generator: factory is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("generator: factory name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
	return nil
}

// Get retrieves a factory by name.
func (c *Catalog) Get(name string) (Factory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	factory, ok := c.factories[name]
	if !ok {
		return nil, &schema.UnsupportedTypeError{Generator: name}
	}
	return factory, nil
}

// Has reports whether a factory is registered.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.factories[name]
	return ok
}

// List returns a sorted list of factory names.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
