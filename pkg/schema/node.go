package schema

// Node types understood by the producer.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// GeneratorConfigKey is the non-standard keyword used to pin a generator to a
// node and pass it generator-specific options.
const GeneratorConfigKey = "_generator_config"

// Node is one resolved, typed schema fragment. Nodes are built once by the
// decoder and never mutated afterwards.
type Node struct {
	Type   string
	Format string

	// Properties are kept sorted by name so repeated walks with a seeded
	// random source visit them in the same order.
	Properties  []Property
	Required    []string
	HasRequired bool

	// Items is set for homogeneous arrays, Tuple for positional ones.
	Items *Node
	Tuple []*Node

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64

	MinLength *int
	MaxLength *int
	Pattern   string

	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	Enum []any

	Generator   *GeneratorConfig
	Definitions map[string]*Node

	// Raw is the resolved payload the node was decoded from.
	Raw map[string]any
}

// Property is a named child schema of an object node.
type Property struct {
	Name   string
	Schema *Node
}

// GeneratorConfig carries the _generator_config extension: the generator
// name plus every other key as an option.
type GeneratorConfig struct {
	Name    string
	Options map[string]any
}

// Option returns a generator option by key.
func (c *GeneratorConfig) Option(key string) (any, bool) {
	if c == nil || c.Options == nil {
		return nil, false
	}
	value, ok := c.Options[key]
	return value, ok
}

// IsRequired reports whether name is listed in the node's required set.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, candidate := range n.Required {
		if candidate == name {
			return true
		}
	}
	return false
}

// Property looks up a declared property by name.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, prop := range n.Properties {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// IsTuple reports whether the node is a positional array.
func (n *Node) IsTuple() bool {
	return n != nil && n.Tuple != nil
}

// GeneratorName returns the explicitly configured generator, if any.
func (n *Node) GeneratorName() string {
	if n == nil || n.Generator == nil {
		return ""
	}
	return n.Generator.Name
}
