package schema

import (
	"strconv"
	"strings"
)

// RootPath is the key of the top-level node.
const RootPath PathKey = "root"

// itemsSegment names the shared slot of homogeneous array items.
const itemsSegment = "items"

// PathKey identifies a structural position in a resolved tree. The same
// position always yields the same key, which lets generator instances persist
// across producer calls.
type PathKey string

var segmentEscaper = strings.NewReplacer("~", "~0", ".", "~1")

// Child returns the key of a named object property. Dots and tildes in the
// name are escaped so a property called "a.b" never collides with a nested
// "a" -> "b".
func (p PathKey) Child(name string) PathKey {
	return p + "." + PathKey(segmentEscaper.Replace(name))
}

// Index returns the key of a tuple position.
func (p PathKey) Index(idx int) PathKey {
	return p + "." + PathKey(strconv.Itoa(idx))
}

// Items returns the key shared by every element of a homogeneous array.
func (p PathKey) Items() PathKey {
	return p + "." + itemsSegment
}

// String implements fmt.Stringer.
func (p PathKey) String() string {
	return string(p)
}

// Segments splits the key into unescaped segments.
func (p PathKey) Segments() []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(string(p), ".")
	unescaper := strings.NewReplacer("~1", ".", "~0", "~")
	for idx, part := range parts {
		parts[idx] = unescaper.Replace(part)
	}
	return parts
}
