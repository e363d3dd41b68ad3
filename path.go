package diffx

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes the three ways of stepping into a composite value
type SegmentKind uint8

const (
	// KeySegment addresses an object member
	KeySegment SegmentKind = iota
	// IndexSegment addresses an array element by position
	IndexSegment
	// IdentitySegment addresses an array element by the value of its identity key
	IdentitySegment
)

// Segment is one step of a Path
type Segment struct {
	Kind SegmentKind
	// Key is the object key for KeySegment, the identity key name for
	// IdentitySegment
	Key string
	// Index is the array position for IndexSegment
	Index int
	// ID is the identity key's value for IdentitySegment
	ID Value
}

// Path locates a value within a tree as a sequence of segments. The empty path
// is the root. Paths are only rendered to text by String, so keys containing
// '.' or '[' never make two distinct locations collide internally
type Path []Segment

// Key returns a new path stepping into object member k
func (p Path) Key(k string) Path {
	return p.with(Segment{Kind: KeySegment, Key: k})
}

// Index returns a new path stepping into array position i
func (p Path) Index(i int) Path {
	return p.with(Segment{Kind: IndexSegment, Index: i})
}

// Identity returns a new path stepping into the array element whose key has
// value id
func (p Path) Identity(key string, id Value) Path {
	return p.with(Segment{Kind: IdentitySegment, Key: key, ID: id})
}

// with never appends in place, sibling paths share a parent
func (p Path) with(s Segment) Path {
	np := make(Path, len(p), len(p)+1)
	copy(np, p)
	return append(np, s)
}

// String renders the path: "" for root, "a.b" for members, "a[0]" for
// positions and "a[id=1]" for identity-matched elements
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		switch s.Kind {
		case KeySegment:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Key)
		case IndexSegment:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		case IdentitySegment:
			b.WriteByte('[')
			b.WriteString(s.Key)
			b.WriteByte('=')
			b.WriteString(s.ID.String())
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Depth is the nesting level of the path, used to indent rendered output.
// A leading member key sits at depth zero
func (p Path) Depth() int {
	if len(p) == 0 {
		return 0
	}
	if p[0].Kind == KeySegment {
		return len(p) - 1
	}
	return len(p)
}

// HasPrefix reports whether the rendered path begins with prefix
func (p Path) HasPrefix(prefix string) bool {
	return strings.HasPrefix(p.String(), prefix)
}
