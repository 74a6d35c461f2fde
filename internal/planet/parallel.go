package planet

import (
	"runtime"

	"github.com/alitto/pond/v2"
)

// minChunk keeps tiny meshes from paying per-task overhead.
const minChunk = 64

// forEachFace runs fn for every face index. Each call writes only its own
// face's slots, so the outcome does not depend on scheduling.
func forEachFace(pool pond.Pool, n int, fn func(i int)) error {
	if pool == nil || n <= minChunk {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return nil
	}
	chunk := n / (4 * runtime.GOMAXPROCS(0))
	if chunk < minChunk {
		chunk = minChunk
	}
	group := pool.NewGroup()
	for start := 0; start < n; start += chunk {
		lo, hi := start, min(start+chunk, n)
		group.Submit(func() {
			for i := lo; i < hi; i++ {
				fn(i)
			}
		})
	}
	return group.Wait()
}
