package lp

import (
	"errors"
	"math"
	"slices"

	"github.com/sirupsen/logrus"
)

// pruneTolerance absorbs rounding when comparing a bound to the incumbent.
const pruneTolerance = 1e-9

// branchAndBound searches the disjunction choices for the best complete
// assignment. Every node solves the LP relaxation in which undecided
// disjunctions use their big-M rows; that relaxation bounds every leaf
// below it, so a node whose bound cannot beat the incumbent is discarded.
func (p *LinearProblem) branchAndBound(obj reducedObjective, stats *Stats) (*nodeResult, error) {
	var (
		best      *nodeResult
		bestScore = math.Inf(-1)
		nextID    int
		limit     = p.opts.maxNodes()
	)
	beats := func(score float64) bool {
		return best == nil || score > bestScore+pruneTolerance*math.Max(1, math.Abs(bestScore))
	}

	queue := newNodeHeap()
	queue.schedule(&searchNode{
		id:      nextID,
		score:   math.Inf(-1),
		choices: make([]Choice, len(p.disjunctions)),
	})
	nextID++

	for queue.Len() > 0 {
		node := queue.popNext()
		if best != nil && !beats(node.score) {
			continue
		}
		if limit > 0 && stats.Nodes >= limit {
			if best == nil {
				return nil, ErrNodeLimit
			}
			stats.Truncated = true
			logrus.Warnf("lp: branch-and-bound stopped after %d nodes with %d pending; returning best solution found", stats.Nodes, queue.Len()+1)
			return best, nil
		}

		stats.Nodes++
		res, err := p.solveNode(obj, node.choices, stats)
		if errors.Is(err, ErrInfeasible) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !beats(res.objective) {
			continue
		}

		adopted := res.adoptIntegral()
		branch := slices.Index(adopted, Unknown)
		if branch < 0 {
			leaf := res
			if slices.Contains(node.choices, Unknown) {
				// The relaxation picked a side for every open disjunction;
				// re-solve without big-M rows to get an exact leaf.
				stats.Nodes++
				leaf, err = p.solveNode(obj, adopted, stats)
				if errors.Is(err, ErrInfeasible) {
					leaf = nil
				} else if err != nil {
					return nil, err
				}
			}
			if leaf != nil && beats(leaf.objective) {
				best, bestScore = leaf, leaf.objective
				if p.opts.Trace {
					logrus.Debugf("lp: new incumbent %g at node %d", bestScore, node.id)
				}
			}
			if leaf == res {
				continue
			}
			// The subtree is settled once its leaf reaches the node's bound;
			// a z within tolerance of 0 or 1 can still hide an M·z slack.
			if leaf != nil && !beats(res.objective) {
				continue
			}
		}

		for _, choices := range splitChoices(node.choices, adopted, branch) {
			queue.schedule(&searchNode{
				id:      nextID,
				depth:   decided(choices),
				score:   res.objective,
				choices: choices,
			})
			nextID++
		}
	}

	if best == nil {
		return nil, ErrInfeasible
	}
	return best, nil
}

// splitChoices lists the children of a node whose relaxation settled the
// adopted sides. When branch >= 0 the adopted assignment branches there.
// Each adopted disjunction j also yields a child that keeps the adoptions
// before j and takes the other side of j, so the children together cover
// every assignment below parent.
func splitChoices(parent, adopted []Choice, branch int) [][]Choice {
	var out [][]Choice
	if branch >= 0 {
		for _, side := range []Choice{Left, Right} {
			choices := slices.Clone(adopted)
			choices[branch] = side
			out = append(out, choices)
		}
	}
	prefix := slices.Clone(parent)
	for j, c := range adopted {
		if parent[j] != Unknown || c == Unknown {
			continue
		}
		alt := slices.Clone(prefix)
		alt[j] = c.opposite()
		out = append(out, alt)
		prefix[j] = c
	}
	return out
}

func decided(choices []Choice) int {
	n := 0
	for _, c := range choices {
		if c != Unknown {
			n++
		}
	}
	return n
}
