package search

import "github.com/wricardo/astar-visualizer/board/grid"

type frontierItem struct {
	pos   grid.Position
	f     int
	order int
}

// frontier is a min-heap ordered by fScore then insertion order
type frontier []*frontierItem

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].order < q[j].order
}

func (q frontier) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *frontier) Push(x any) {
	*q = append(*q, x.(*frontierItem))
}

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
