package graph

import "fmt"

// noEdge marks a DFS root, which was not entered through any edge.
const noEdge = ^uint32(0)

// frame is one level of the explicit DFS stack.
type frame struct {
	vertex  uint32
	via     uint32 // edge id the vertex was entered through, noEdge for roots
	nextArc uint32 // next arc of vertex to examine
}

// Label assigns a value in [0, n) to every vertex such that, for the i-th
// tree edge traversed, g[u] + g[v] ≡ i (mod n). Since the graph is a forest
// with exactly n edges, every edge is a tree edge and receives a distinct
// counter in [0, n): k ↦ (g[h1(k)] + g[h2(k)]) mod n is a bijection.
//
// Components are visited from vertex 0 upwards; each root gets 0, as do
// isolated vertices. The traversal is iterative.
//
// Label panics if it meets a cycle or does not traverse exactly n edges; both
// mean the graph builder broke its acyclicity guarantee.
func Label(g *Graph) []uint32 {
	m := g.numVertices
	n := uint64(g.numEdges)
	labels := make([]uint32, m)
	visited := make([]bool, m)

	var counter uint64
	var stack []frame
	for r := uint32(0); r < m; r++ {
		if visited[r] {
			continue
		}
		visited[r] = true
		if g.offsets[r] == g.offsets[r+1] {
			continue // isolated
		}

		stack = append(stack[:0], frame{vertex: r, via: noEdge, nextArc: g.offsets[r]})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.nextArc == g.offsets[top.vertex+1] {
				stack = stack[:len(stack)-1]
				continue
			}
			arc := top.nextArc
			top.nextArc++

			id := g.edge[arc]
			if id == top.via {
				continue
			}
			child := g.adj[arc]
			if visited[child] {
				panic(fmt.Sprintf("graph: cycle through edge %d at vertex %d", id, child))
			}
			visited[child] = true
			labels[child] = uint32((n + counter - uint64(labels[top.vertex])) % n)
			counter++
			stack = append(stack, frame{vertex: child, via: id, nextArc: g.offsets[child]})
		}
	}

	if counter != n {
		panic(fmt.Sprintf("graph: labeled %d edges, want %d", counter, n))
	}
	return labels
}
