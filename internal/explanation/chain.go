package explanation

import (
	"rankcausal/internal/srm"
)

// RootCauseChain returns the shortest directed path from source to target,
// found breadth first along child edges. It is [target] when source is the
// target and empty when target is unreachable.
func RootCauseChain(m *srm.Model, source, target string) []string {
	if source == target {
		return []string{target}
	}
	visited := map[string]struct{}{source: {}}
	queue := [][]string{{source}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, child := range m.ChildrenOf(p[len(p)-1]) {
			if _, ok := visited[child]; ok {
				continue
			}
			next := make([]string, len(p)+1)
			copy(next, p)
			next[len(p)] = child
			if child == target {
				return next
			}
			visited[child] = struct{}{}
			queue = append(queue, next)
		}
	}
	return []string{}
}

// RootCauseChains traces a chain for every member of a repair set, in order.
func RootCauseChains(m *srm.Model, repairSet []string, target string) [][]string {
	out := make([][]string, 0, len(repairSet))
	for _, src := range repairSet {
		out = append(out, RootCauseChain(m, src, target))
	}
	return out
}
