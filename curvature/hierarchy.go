package curvature

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Hierarchy maps each node to its parents. Nodes that only appear as parents
// are part of the hierarchy too. The input may contain cycles; depth and
// distance computations tolerate them.
type Hierarchy map[string][]string

// Nodes returns every node referenced by h, sorted.
func (h Hierarchy) Nodes() []string {
	set := make(map[string]struct{}, len(h))
	for child, parents := range h {
		set[child] = struct{}{}
		for _, p := range parents {
			set[p] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Roots returns the nodes without parents, sorted.
func (h Hierarchy) Roots() []string {
	var roots []string
	for _, n := range h.Nodes() {
		if len(h[n]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Children inverts h into a parent to sorted children mapping. Leaves are
// absent from the result.
func (h Hierarchy) Children() map[string][]string {
	children := make(map[string][]string)
	for child, parents := range h {
		for _, p := range parents {
			if !slices.Contains(children[p], child) {
				children[p] = append(children[p], child)
			}
		}
	}
	for _, c := range children {
		slices.Sort(c)
	}
	return children
}

// Parent returns the first parent of node, if any.
func (h Hierarchy) Parent(node string) (string, bool) {
	if ps := h[node]; len(ps) > 0 {
		return ps[0], true
	}
	return "", false
}

// MaxDepth returns the number of nodes on the longest root-to-leaf path.
// A single root counts as depth 1; an empty hierarchy has depth 0. A path
// never revisits a node: an edge back into the current path ends it.
func (h Hierarchy) MaxDepth() int {
	children := h.Children()
	memo := make(map[string]int)
	onStack := make(map[string]bool)

	// depth reports whether the result is independent of the current path.
	// Results that cut a back edge are recomputed on every visit.
	var depth func(n string) (int, bool)
	depth = func(n string) (int, bool) {
		if d, ok := memo[n]; ok {
			return d, true
		}
		if onStack[n] {
			return 0, false
		}
		onStack[n] = true
		best, exact := 0, true
		for _, c := range children[n] {
			d, ok := depth(c)
			best = max(best, d)
			exact = exact && ok
		}
		onStack[n] = false
		if exact {
			memo[n] = best + 1
		}
		return best + 1, exact
	}

	maxDepth := 0
	for _, r := range h.Roots() {
		d, _ := depth(r)
		maxDepth = max(maxDepth, d)
	}
	return maxDepth
}

// AvgBranchingFactor returns the mean number of children over non-leaf nodes,
// or 0 when every node is a leaf.
func (h Hierarchy) AvgBranchingFactor() float64 {
	children := h.Children()
	if len(children) == 0 {
		return 0
	}
	total := 0
	for _, c := range children {
		total += len(c)
	}
	return float64(total) / float64(len(children))
}

// HopDistances returns shortest-path hop counts between all connected pairs,
// treating parent links as undirected edges. Unreachable pairs are absent.
func (h Hierarchy) HopDistances() map[string]map[string]int {
	graph := make(map[string]map[string]struct{})
	link := func(a, b string) {
		if graph[a] == nil {
			graph[a] = make(map[string]struct{})
		}
		graph[a][b] = struct{}{}
	}
	for child, parents := range h {
		if graph[child] == nil {
			graph[child] = make(map[string]struct{})
		}
		for _, p := range parents {
			link(child, p)
			link(p, child)
		}
	}

	out := make(map[string]map[string]int, len(graph))
	for src := range graph {
		dist := map[string]int{src: 0}
		queue := []string{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for nb := range graph[cur] {
				if _, seen := dist[nb]; !seen {
					dist[nb] = dist[cur] + 1
					queue = append(queue, nb)
				}
			}
		}
		out[src] = dist
	}
	return out
}

// IsAncestor reports whether a is reachable from b by following parent links.
func (h Hierarchy) IsAncestor(a, b string) bool {
	seen := map[string]bool{b: true}
	stack := slices.Clone(h[b])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == a {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, h[n]...)
	}
	return false
}

// Related reports whether a and b are hierarchically related: one is an
// ancestor of the other, they share a parent, or they share a grandparent.
func (h Hierarchy) Related(a, b string) bool {
	if a == b {
		return true
	}
	if h.IsAncestor(a, b) || h.IsAncestor(b, a) {
		return true
	}
	pa, okA := h.Parent(a)
	pb, okB := h.Parent(b)
	if !okA || !okB {
		return false
	}
	if pa == pb {
		return true
	}
	ga, okA := h.Parent(pa)
	gb, okB := h.Parent(pb)
	return okA && okB && ga == gb
}

// ReadTSV parses a taxonomy with one "child<TAB>parent" edge per line. Blank
// lines and lines starting with '#' are skipped. A line holding only a child
// declares a root.
func ReadTSV(r io.Reader) (Hierarchy, error) {
	h := make(Hierarchy)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if trimmed := strings.TrimSpace(text); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		child := strings.TrimSpace(fields[0])
		if child == "" {
			return nil, fmt.Errorf("curvature: line %d: empty child", line)
		}
		if _, ok := h[child]; !ok {
			h[child] = nil
		}
		if len(fields) < 2 {
			continue
		}
		if parent := strings.TrimSpace(fields[1]); parent != "" && !slices.Contains(h[child], parent) {
			h[child] = append(h[child], parent)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("curvature: read taxonomy: %w", err)
	}
	return h, nil
}
