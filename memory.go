package diffx

import "unsafe"

var valueSize = int(unsafe.Sizeof(Value{}))

// EstimateMemoryUsage approximates the bytes held by a value tree: the value
// headers, string contents, object keys and container overhead
func EstimateMemoryUsage(v Value) int {
	size := 0
	stack := []Value{v}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		size += valueSize
		switch v.kind {
		case KindString:
			size += len(v.s)
		case KindArray:
			stack = append(stack, v.arr...)
		case KindObject:
			for k, el := range v.obj {
				// string header plus key bytes
				size += 16 + len(k)
				stack = append(stack, el)
			}
		}
	}
	return size
}

// WouldExceedMemoryLimit reports whether comparing a & b is estimated to hold
// more than DefaultMemoryLimit bytes
func WouldExceedMemoryLimit(a, b Value) bool {
	return exceedsMemoryLimit(a, b, DefaultMemoryLimit)
}

func exceedsMemoryLimit(a, b Value, limit int) bool {
	return EstimateMemoryUsage(a)+EstimateMemoryUsage(b) > limit
}
