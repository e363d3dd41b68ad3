package diffx

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// runBatched is the memory optimized walk. It drains an explicit stack like
// run, except that composites with more than size children are split into
// pages of size children which are compared in parallel. Each page writes to
// its own slot and slots are joined in page order, so the result is identical
// to run, order included
func (c *comparator) runBatched(ops []op, size int) []Change {
	var (
		changes []Change
		stack   = pushReversed(make([]op, 0, len(ops)), ops)
	)

	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ch, children := c.step(o)
		switch {
		case ch != nil:
			changes = append(changes, *ch)
		case len(children) > size:
			changes = append(changes, c.runPages(children, size)...)
		default:
			stack = pushReversed(stack, children)
		}
	}
	return changes
}

func (c *comparator) runPages(ops []op, size int) []Change {
	pages := (len(ops) + size - 1) / size
	results := make([][]Change, pages)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < pages; i++ {
		i := i
		start := i * size
		end := start + size
		if end > len(ops) {
			end = len(ops)
		}
		g.Go(func() error {
			results[i] = c.runBatched(ops[start:end], size)
			return nil
		})
	}
	// comparison can't fail, Wait only joins
	_ = g.Wait()

	n := 0
	for _, r := range results {
		n += len(r)
	}
	changes := make([]Change, 0, n)
	for _, r := range results {
		changes = append(changes, r...)
	}
	return changes
}
