package linking

import (
	"slices"
	"sort"

	"github.com/agusespa/hunkgraph/internal/types"
)

// BuildDependencyGraph creates directed edges from files that changed a
// symbol to files that reference it, then groups files into connected
// clusters. Every input file appears in exactly one cluster, including files
// without a grammar or without any relationship.
func BuildDependencyGraph(files []types.FileSymbolDiff) types.DependencyGraph {
	return buildDependencyGraph(files, BuildSymbolIndex(files))
}

func buildDependencyGraph(files []types.FileSymbolDiff, idx *SymbolIndex) types.DependencyGraph {
	type edgeKey struct{ defines, references string }
	edgeSymbols := make(map[edgeKey]map[string]struct{})

	for i := range files {
		fd := &files[i]
		for _, ref := range fd.SymbolReferences {
			for _, definingFile := range idx.DefiningFiles(ref.SymbolName) {
				if definingFile == fd.FilePath {
					continue // no self-edges
				}
				key := edgeKey{definingFile, fd.FilePath}
				if edgeSymbols[key] == nil {
					edgeSymbols[key] = make(map[string]struct{})
				}
				edgeSymbols[key][ref.SymbolName] = struct{}{}
			}
		}
	}

	edges := make([]types.SymbolEdge, 0, len(edgeSymbols))
	for key, set := range edgeSymbols {
		symbols := make([]string, 0, len(set))
		for name := range set {
			symbols = append(symbols, name)
		}
		sort.Strings(symbols)
		edges = append(edges, types.SymbolEdge{
			DefinesFile:    key.defines,
			ReferencesFile: key.references,
			Symbols:        symbols,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].DefinesFile != edges[j].DefinesFile {
			return edges[i].DefinesFile < edges[j].DefinesFile
		}
		return edges[i].ReferencesFile < edges[j].ReferencesFile
	})

	allFiles := uniqueFilePaths(files)
	uf := newUnionFind(allFiles)
	for _, e := range edges {
		uf.union(e.DefinesFile, e.ReferencesFile)
	}

	components := make(map[string][]string)
	var roots []string
	for _, f := range allFiles {
		root := uf.find(f)
		if _, ok := components[root]; !ok {
			roots = append(roots, root)
		}
		components[root] = append(components[root], f)
	}

	clusters := make([]types.FileCluster, 0, len(roots))
	for _, root := range roots {
		members := components[root]
		sort.Strings(members)

		inCluster := make(map[string]struct{}, len(members))
		for _, f := range members {
			inCluster[f] = struct{}{}
		}

		clusterEdges := make([]types.SymbolEdge, 0)
		for _, e := range edges {
			_, fromIn := inCluster[e.DefinesFile]
			_, toIn := inCluster[e.ReferencesFile]
			if fromIn || toIn {
				clusterEdges = append(clusterEdges, e)
			}
		}

		clusters = append(clusters, types.FileCluster{Files: members, Edges: clusterEdges})
	}
	sortClusters(clusters)

	return types.DependencyGraph{Edges: edges, Clusters: clusters}
}

// sortClusters puts multi-file clusters first, largest first with ties broken
// by their file lists, followed by singletons in path order.
func sortClusters(clusters []types.FileCluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i].Files, clusters[j].Files
		aMulti, bMulti := len(a) > 1, len(b) > 1
		switch {
		case aMulti && !bMulti:
			return true
		case !aMulti && bMulti:
			return false
		case aMulti && bMulti && len(a) != len(b):
			return len(a) > len(b)
		default:
			return slices.Compare(a, b) < 0
		}
	})
}

func uniqueFilePaths(files []types.FileSymbolDiff) []string {
	seen := make(map[string]struct{}, len(files))
	paths := make([]string, 0, len(files))
	for i := range files {
		p := files[i].FilePath
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths
}
