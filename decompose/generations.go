package decompose

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle indicates the dependency graph contains a circular dependency.
// This is the single fatal orchestration condition: it aborts a call
// before any subtask runs.
var ErrCycle = errors.New("dependency graph contains a cycle")

// Generations computes the topological layering of the graph using Kahn's
// algorithm: generation 0 holds subtasks with no prerequisites, and
// generation k holds subtasks whose prerequisites all sit in generations
// 0..k-1. Ids within a generation are sorted so the layering is
// deterministic.
//
// It returns ErrCycle for cyclic graphs and an error for edges that
// reference ids absent from the graph.
func Generations(g Graph) ([][]string, error) {
	inDegree := make(map[string]int, len(g))
	dependents := make(map[string][]string)

	for id := range g {
		inDegree[id] = 0
	}
	for id, deps := range g {
		for _, dep := range deps {
			if _, ok := g[dep]; !ok {
				return nil, fmt.Errorf("subtask %s depends on unknown subtask %s", id, dep)
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var current []string
	for id, deg := range inDegree {
		if deg == 0 {
			current = append(current, id)
		}
	}

	var generations [][]string
	processed := 0
	for len(current) > 0 {
		sort.Strings(current)
		generations = append(generations, current)
		processed += len(current)

		var next []string
		for _, id := range current {
			for _, dependent := range dependents[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if processed != len(g) {
		return nil, ErrCycle
	}
	return generations, nil
}
