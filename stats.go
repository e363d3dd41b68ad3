package diffx

import "strconv"

// Stats holds statistical metadata about a diff
type Stats struct {
	Left  int `json:"leftNodes"`  // count of nodes in the left tree
	Right int `json:"rightNodes"` // count of nodes in the right tree

	LeftWeight  int `json:"leftWeight"`  // byte-ish count of left tree
	RightWeight int `json:"rightWeight"` // byte-ish count of right tree

	Added       int `json:"added,omitempty"`       // number of added records
	Removed     int `json:"removed,omitempty"`     // number of removed records
	Modified    int `json:"modified,omitempty"`    // number of modified records
	TypeChanged int `json:"typeChanged,omitempty"` // number of type change records
}

// NodeChange returns a count of the shift between left & right trees
func (s Stats) NodeChange() int {
	return s.Right - s.Left
}

// PctWeightChange returns a value from -1.0 to max(float64) representing the size shift
// between left & right trees
func (s Stats) PctWeightChange() float64 {
	if s.RightWeight == 0 {
		return 0
	}
	return float64(s.LeftWeight) / float64(s.RightWeight)
}

// Changes is the total number of change records
func (s Stats) Changes() int {
	return s.Added + s.Removed + s.Modified + s.TypeChanged
}

func calcStats(a, b Value, changes []Change) Stats {
	st := Stats{}
	st.Left, st.LeftWeight = measure(a)
	st.Right, st.RightWeight = measure(b)
	for _, c := range changes {
		switch c.Kind {
		case Added:
			st.Added++
		case Removed:
			st.Removed++
		case Modified:
			st.Modified++
		case TypeChanged:
			st.TypeChanged++
		}
	}
	return st
}

// measure counts nodes & weight of a tree. scalars weigh the length of their
// text form, composites weigh one plus the weight of their children
func measure(v Value) (nodes, weight int) {
	stack := []Value{v}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nodes++
		switch v.kind {
		case KindNull:
			weight++
		case KindBool:
			weight += len(strconv.FormatBool(v.b))
		case KindNumber:
			weight += len(formatNumber(v.num))
		case KindString:
			weight += len(v.s)
		case KindArray:
			weight++
			stack = append(stack, v.arr...)
		case KindObject:
			weight++
			for _, el := range v.obj {
				stack = append(stack, el)
			}
		}
	}
	return nodes, weight
}
