package diffx

import (
	"encoding/json"
	"sort"
)

// ChangeKind defines the classification of a Change
type ChangeKind uint8

const (
	// Added means a path is present in the second tree and absent in the first
	Added ChangeKind = iota
	// Removed means a path is present in the first tree and absent in the second
	Removed
	// Modified means both trees hold the same type of value at a path, but the
	// values differ
	Modified
	// TypeChanged means both trees hold a value at a path, of different types
	TypeChanged
)

// String returns the name of the change kind
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "Added"
	case Removed:
		return "Removed"
	case Modified:
		return "Modified"
	case TypeChanged:
		return "TypeChanged"
	default:
		return "Unknown"
	}
}

// Change is a single difference between two trees
type Change struct {
	// the type of change
	Kind ChangeKind
	// location of the change
	Path Path
	// value in the first tree, unset for Added
	Old Value
	// value in the second tree, unset for Removed
	New Value
}

// fields lists the path & relevant values of a change, in report order
func (c Change) fields() []interface{} {
	switch c.Kind {
	case Added:
		return []interface{}{c.Path.String(), c.New}
	case Removed:
		return []interface{}{c.Path.String(), c.Old}
	default:
		return []interface{}{c.Path.String(), c.Old, c.New}
	}
}

// MarshalJSON encodes a change keyed by its kind, eg: {"Modified":["b",2,3]}
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{c.Kind.String(): c.fields()})
}

// MarshalYAML implements yaml.Marshaler with the same shape as MarshalJSON
func (c Change) MarshalYAML() (interface{}, error) {
	return map[string]interface{}{c.Kind.String(): c.fields()}, nil
}

// SortByPath orders changes by rendered path for presentation. The sort is
// stable, so changes sharing a path keep their discovery order
func SortByPath(changes []Change) {
	keys := make([]string, len(changes))
	for i, c := range changes {
		keys[i] = c.Path.String()
	}
	sort.Stable(byPath{changes, keys})
}

type byPath struct {
	changes []Change
	keys    []string
}

func (b byPath) Len() int           { return len(b.changes) }
func (b byPath) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byPath) Swap(i, j int) {
	b.changes[i], b.changes[j] = b.changes[j], b.changes[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// FilterPath keeps the changes whose rendered path starts with prefix
func FilterPath(changes []Change, prefix string) []Change {
	if prefix == "" {
		return changes
	}
	kept := make([]Change, 0, len(changes))
	for _, c := range changes {
		if c.Path.HasPrefix(prefix) {
			kept = append(kept, c)
		}
	}
	return kept
}
