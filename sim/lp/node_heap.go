package lp

import "container/heap"

// searchNode is one pending branch of the disjunction search.
type searchNode struct {
	id      int
	depth   int
	score   float64 // objective bound inherited from the parent relaxation
	choices []Choice
}

// nodeHeap orders pending nodes depth-first so an incumbent is found early.
// Ordering: depth (deeper first) → score (higher first) → node ID.
type nodeHeap struct {
	nodes []*searchNode
}

func newNodeHeap() *nodeHeap {
	h := &nodeHeap{nodes: make([]*searchNode, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *nodeHeap) Len() int { return len(h.nodes) }

// Less implements heap.Interface
func (h *nodeHeap) Less(i, j int) bool {
	ni, nj := h.nodes[i], h.nodes[j]
	if ni.depth != nj.depth {
		return ni.depth > nj.depth
	}
	if ni.score != nj.score {
		return ni.score > nj.score
	}
	return ni.id < nj.id
}

// Swap implements heap.Interface
func (h *nodeHeap) Swap(i, j int) { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }

// Push implements heap.Interface
func (h *nodeHeap) Push(x any) { h.nodes = append(h.nodes, x.(*searchNode)) }

// Pop implements heap.Interface
func (h *nodeHeap) Pop() any {
	old := h.nodes
	n := len(old)
	item := old[n-1]
	h.nodes = old[:n-1]
	return item
}

func (h *nodeHeap) schedule(n *searchNode) { heap.Push(h, n) }

func (h *nodeHeap) popNext() *searchNode {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*searchNode)
}
