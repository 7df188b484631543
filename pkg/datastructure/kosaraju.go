package datastructure

// RunKosaraju. runs kosaraju's algorithm to find strongly connected components (SCCs) of the graph
// and the condensation DAG between them. used to reject unreachable queries without searching.
func (g *Graph) RunKosaraju() {
	n := g.NumberOfVertices()

	// first pass: finishing order on the forward graph
	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for s := 0; s < n; s++ {
		if visited[s] {
			continue
		}
		g.dfsFinishOrder(Index(s), visited, &order)
	}

	// reverse adjacency in CSR form
	revFirst := make([]Index, n+1)
	for _, e := range g.outEdges {
		revFirst[e.head+1]++
	}
	for v := 1; v <= n; v++ {
		revFirst[v] += revFirst[v-1]
	}
	revAdj := make([]Index, len(g.outEdges))
	fill := make([]Index, n)
	copy(fill, revFirst[:n])
	for _, e := range g.outEdges {
		revAdj[fill[e.head]] = e.tail
		fill[e.head]++
	}

	// second pass: reversed graph in decreasing finishing time
	sccs := make([]Index, n)
	for i := range sccs {
		sccs[i] = INVALID_VERTEX_ID
	}
	numSCC := Index(0)
	stack := make([]Index, 0)
	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if sccs[root] != INVALID_VERTEX_ID {
			continue
		}
		sccs[root] = numSCC
		stack = append(stack[:0], root)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for j := revFirst[u]; j < revFirst[u+1]; j++ {
				w := revAdj[j]
				if sccs[w] == INVALID_VERTEX_ID {
					sccs[w] = numSCC
					stack = append(stack, w)
				}
			}
		}
		numSCC++
	}

	condAdj := make([][]Index, numSCC)
	seen := make(map[[2]Index]struct{})
	for _, e := range g.outEdges {
		from, to := sccs[e.tail], sccs[e.head]
		if from == to {
			continue
		}
		if _, ok := seen[[2]Index{from, to}]; ok {
			continue
		}
		seen[[2]Index{from, to}] = struct{}{}
		condAdj[from] = append(condAdj[from], to)
	}

	g.SetSCCs(sccs)
	g.SetSCCCondensationAdj(condAdj)
}

// iterative dfs, road graphs are deep enough to make recursion painful
func (g *Graph) dfsFinishOrder(s Index, visited []bool, order *[]Index) {
	type frame struct {
		v    Index
		next Index // next out edge to explore
	}
	visited[s] = true
	stack := []frame{{v: s, next: g.vertices[s].firstOut}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < g.vertices[top.v+1].firstOut {
			head := g.outEdges[top.next].head
			top.next++
			if !visited[head] {
				visited[head] = true
				stack = append(stack, frame{v: head, next: g.vertices[head].firstOut})
			}
			continue
		}
		*order = append(*order, top.v)
		stack = stack[:len(stack)-1]
	}
}

// LargestSCCSize. number of vertices in the biggest strongly connected component
func (g *Graph) LargestSCCSize() int {
	counts := make(map[Index]int)
	best := 0
	for _, c := range g.sccs {
		counts[c]++
		if counts[c] > best {
			best = counts[c]
		}
	}
	return best
}
