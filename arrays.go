package diffx

// element is an array member along with its position in the source array
type element struct {
	index int
	v     Value
}

// keyed is an array member matched by identity
type keyed struct {
	id Value
	v  Value
}

// identitySide is one array split by identity key: members holding the key,
// indexed by identityKey of the key's value, and everything else in original
// order
type identitySide struct {
	order []string
	byID  map[string]keyed
	rest  []element
}

// arrayOps picks a matching strategy once per array pair. Without an identity
// key elements pair up by position
func (c *comparator) arrayOps(p Path, a1, a2 []Value) []op {
	if c.idKey == "" {
		return pairOps(p, positional(a1), positional(a2))
	}
	return c.identityOps(p, a1, a2)
}

func positional(arr []Value) []element {
	els := make([]element, len(arr))
	for i, v := range arr {
		els[i] = element{index: i, v: v}
	}
	return els
}

// pairOps pairs elements of l1 & l2 by their position in the lists. Paired and
// removed elements are addressed by their index in the first array, added ones
// by their index in the second
func pairOps(p Path, l1, l2 []element) []op {
	n := len(l1)
	if len(l2) > n {
		n = len(l2)
	}

	ops := make([]op, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(l1) && i < len(l2):
			ops = append(ops, op{kind: opCompare, path: p.Index(l1[i].index), a: l1[i].v, b: l2[i].v})
		case i < len(l1):
			ops = append(ops, op{kind: opRemoved, path: p.Index(l1[i].index), a: l1[i].v})
		default:
			ops = append(ops, op{kind: opAdded, path: p.Index(l2[i].index), b: l2[i].v})
		}
	}
	return ops
}

// identityOps matches objects holding the identity key across both arrays by
// the key's value, in order of first appearance. Elements without the key fall
// back to positional pairing amongst themselves
func (c *comparator) identityOps(p Path, a1, a2 []Value) []op {
	s1 := c.splitByIdentity(a1)
	s2 := c.splitByIdentity(a2)

	ops := make([]op, 0, len(a1))
	for _, id := range s1.order {
		k1 := s1.byID[id]
		path := p.Identity(c.idKey, k1.id)
		if k2, ok := s2.byID[id]; ok {
			ops = append(ops, op{kind: opCompare, path: path, a: k1.v, b: k2.v})
		} else {
			ops = append(ops, op{kind: opRemoved, path: path, a: k1.v})
		}
	}
	for _, id := range s2.order {
		if _, ok := s1.byID[id]; ok {
			continue
		}
		k2 := s2.byID[id]
		ops = append(ops, op{kind: opAdded, path: p.Identity(c.idKey, k2.id), b: k2.v})
	}

	return append(ops, pairOps(p, s1.rest, s2.rest)...)
}

// splitByIdentity partitions arr. When several elements share an identity
// value the last one wins, keeping the position of the first
func (c *comparator) splitByIdentity(arr []Value) identitySide {
	side := identitySide{byID: map[string]keyed{}}
	for i, v := range arr {
		id, ok := v.Get(c.idKey)
		if !ok {
			side.rest = append(side.rest, element{index: i, v: v})
			continue
		}
		key := identityKey(id)
		if _, seen := side.byID[key]; !seen {
			side.order = append(side.order, key)
		}
		side.byID[key] = keyed{id: id, v: v}
	}
	return side
}

// identityKey tags the rendered value with its kind. Rendering alone is
// ambiguous, NaN renders the same as the string "NaN"
func identityKey(id Value) string {
	return id.Kind().String() + ":" + id.String()
}
