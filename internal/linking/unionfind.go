package linking

// unionFind is a disjoint-set forest over file paths.
type unionFind struct {
	parent map[string]string
	size   map[string]int
}

func newUnionFind(items []string) *unionFind {
	uf := &unionFind{
		parent: make(map[string]string, len(items)),
		size:   make(map[string]int, len(items)),
	}
	for _, item := range items {
		uf.add(item)
	}
	return uf
}

func (uf *unionFind) add(x string) {
	if _, ok := uf.parent[x]; ok {
		return
	}
	uf.parent[x] = x
	uf.size[x] = 1
}

func (uf *unionFind) find(x string) string {
	uf.add(x)

	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	// path compression
	for x != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

func (uf *unionFind) union(a, b string) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
