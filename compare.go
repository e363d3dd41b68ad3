package diffx

import "regexp"

// opKind is the type of a unit of comparison work
type opKind uint8

const (
	// compare a value pair, possibly expanding into child ops
	opCompare opKind = iota
	// report b as added
	opAdded
	// report a as removed
	opRemoved
)

// op is a unit of work on the comparator's stack
type op struct {
	kind opKind
	path Path
	a, b Value
}

// comparator walks two trees in lockstep. It holds no per-call state and
// never mutates its inputs
type comparator struct {
	ignore  *regexp.Regexp
	epsilon *float64
	idKey   string
}

// run processes ops depth first with an explicit stack, so deeply nested input
// can't exhaust the goroutine stack. Children are pushed in reverse to keep
// discovery order identical to a recursive walk
func (c *comparator) run(ops []op) []Change {
	var (
		changes []Change
		stack   = pushReversed(make([]op, 0, len(ops)), ops)
	)

	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ch, children := c.step(o)
		if ch != nil {
			changes = append(changes, *ch)
		}
		stack = pushReversed(stack, children)
	}
	return changes
}

func pushReversed(stack, ops []op) []op {
	for i := len(ops) - 1; i >= 0; i-- {
		stack = append(stack, ops[i])
	}
	return stack
}

// step resolves a single op, yielding either a change, a list of child ops or
// nothing at all
func (c *comparator) step(o op) (*Change, []op) {
	switch o.kind {
	case opAdded:
		return &Change{Kind: Added, Path: o.path, New: o.b}, nil
	case opRemoved:
		return &Change{Kind: Removed, Path: o.path, Old: o.a}, nil
	}

	switch {
	case o.a.kind == KindObject && o.b.kind == KindObject:
		return nil, c.objectOps(o.path, o.a.obj, o.b.obj)
	case o.a.kind == KindArray && o.b.kind == KindArray:
		return nil, c.arrayOps(o.path, o.a.arr, o.b.arr)
	}
	return c.compareLeaf(o.path, o.a, o.b), nil
}

// compareLeaf reports a change for two values that won't be recursed into.
// Differing variants always yield TypeChanged, whatever the tolerance
func (c *comparator) compareLeaf(p Path, a, b Value) *Change {
	if !sameKind(a, b) {
		return &Change{Kind: TypeChanged, Path: p, Old: a, New: b}
	}
	if equal(a, b, c.epsilon) {
		return nil
	}
	return &Change{Kind: Modified, Path: p, Old: a, New: b}
}

func (c *comparator) ignored(key string) bool {
	return c.ignore != nil && c.ignore.MatchString(key)
}

// objectOps lists work for two objects: removed & shared keys of the first
// object in key order, then keys only the second object has
func (c *comparator) objectOps(p Path, m1, m2 map[string]Value) []op {
	ops := make([]op, 0, len(m1))
	for _, k := range sortedKeys(m1) {
		if c.ignored(k) {
			continue
		}
		if v2, ok := m2[k]; ok {
			ops = append(ops, op{kind: opCompare, path: p.Key(k), a: m1[k], b: v2})
		} else {
			ops = append(ops, op{kind: opRemoved, path: p.Key(k), a: m1[k]})
		}
	}
	for _, k := range sortedKeys(m2) {
		if _, ok := m1[k]; ok || c.ignored(k) {
			continue
		}
		ops = append(ops, op{kind: opAdded, path: p.Key(k), b: m2[k]})
	}
	return ops
}
