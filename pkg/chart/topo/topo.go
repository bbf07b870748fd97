// Package topo orders the distinct values of the second dimension so that
// every relative order observed in the data is respected.
//
// The observed orderings are expressed as directed edges between values.
// [Order] returns a topological order that breaks ties by first-encounter
// position, so data that is already consistent keeps its natural order. When
// the edges contain a cycle there is no consistent order; [Order] then
// reports ok=false and returns the encounter order unchanged so that callers
// can degrade instead of failing.
package topo

// Edge states that From was observed before To.
type Edge struct {
	From, To string
}

// Order topologically sorts nodes under edges. nodes must be distinct and in
// first-encounter order; edges referring to unknown nodes and self-loops are
// ignored. Among the nodes that are ready at any step the earliest encountered
// one is emitted first.
//
// If the edges form a cycle, Order returns a copy of nodes and ok=false.
func Order(nodes []string, edges []Edge) (order []string, ok bool) {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	indegree := make([]int, len(nodes))
	succ := make([][]int, len(nodes))
	seen := make(map[[2]int]struct{}, len(edges))
	for _, e := range edges {
		from, okF := index[e.From]
		to, okT := index[e.To]
		if !okF || !okT || from == to {
			continue
		}
		key := [2]int{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		succ[from] = append(succ[from], to)
		indegree[to]++
	}

	done := make([]bool, len(nodes))
	order = make([]string, 0, len(nodes))
	for len(order) < len(nodes) {
		next := -1
		for i := range nodes {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return append([]string(nil), nodes...), false
		}
		done[next] = true
		order = append(order, nodes[next])
		for _, s := range succ[next] {
			indegree[s]--
		}
	}
	return order, true
}

// FindCycle returns the nodes of one cycle reachable under edges, or nil when
// the graph is acyclic. It is used for diagnostics only.
func FindCycle(nodes []string, edges []Edge) []string {
	const (
		white = iota
		gray
		black
	)

	adj := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if e.From != e.To {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}

	color := make(map[string]int, len(nodes))
	var stack []string
	var cycle []string

	var dfs func(n string) bool
	dfs = func(n string) bool {
		color[n] = gray
		stack = append(stack, n)
		for _, next := range adj[n] {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == next {
						cycle = append([]string(nil), stack[i:]...)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for _, n := range nodes {
		if color[n] == white && dfs(n) {
			return cycle
		}
	}
	return nil
}
