package branch

import (
	"container/heap"

	"github.com/healthflow/roster/core/colgen"
)

// node is one branch-and-bound node. Nodes live in an arena and reference
// each other by index, never by pointer.
type node struct {
	id     int
	parent int // -1 for the root
	depth  int
	// bound is the best proven lower bound known for the subtree when the
	// node is popped. Converged children inherit their own LP objective,
	// budget-stopped ones keep the parent bound.
	bound float64
	res   colgen.Restrictions
}

// arena is the append-only node store.
type arena struct {
	nodes []node
}

func (a *arena) add(parent, depth int, bound float64, res colgen.Restrictions) int {
	id := len(a.nodes)
	a.nodes = append(a.nodes, node{id: id, parent: parent, depth: depth, bound: bound, res: res})
	return id
}

func (a *arena) at(id int) *node { return &a.nodes[id] }

// frontier is a best-bound priority queue over arena node ids. Equal
// bounds pop in creation order, which keeps the search deterministic.
type frontier struct {
	arena *arena
	ids   []int
}

func newFrontier(a *arena) *frontier {
	f := &frontier{arena: a}
	heap.Init(f)
	return f
}

func (f *frontier) Len() int { return len(f.ids) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.arena.at(f.ids[i]), f.arena.at(f.ids[j])
	if a.bound != b.bound {
		return a.bound < b.bound
	}
	return a.id < b.id
}

func (f *frontier) Swap(i, j int) { f.ids[i], f.ids[j] = f.ids[j], f.ids[i] }

func (f *frontier) Push(x any) { f.ids = append(f.ids, x.(int)) }

func (f *frontier) Pop() any {
	last := f.ids[len(f.ids)-1]
	f.ids = f.ids[:len(f.ids)-1]
	return last
}

func (f *frontier) push(id int) { heap.Push(f, id) }

func (f *frontier) pop() int { return heap.Pop(f).(int) }
