package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/agusespa/hunkgraph/internal/types"
)

// WriteDOT draws the file dependency graph as a Graphviz digraph. Edges point
// from the defining file to the referencing one and are labelled with the
// shared symbols.
func WriteDOT(w io.Writer, dg types.DependencyGraph) error {
	g := graph.New(graph.StringHash, graph.Directed())

	for _, c := range dg.Clusters {
		for _, f := range c.Files {
			if err := g.AddVertex(f, graph.VertexAttribute("shape", "box")); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return fmt.Errorf("failed to add file %s: %w", f, err)
			}
		}
	}

	for _, e := range dg.Edges {
		for _, f := range []string{e.DefinesFile, e.ReferencesFile} {
			if err := g.AddVertex(f, graph.VertexAttribute("shape", "box")); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return fmt.Errorf("failed to add file %s: %w", f, err)
			}
		}
		label := strings.Join(e.Symbols, ", ")
		if err := g.AddEdge(e.DefinesFile, e.ReferencesFile, graph.EdgeAttribute("label", label)); err != nil {
			return fmt.Errorf("failed to add edge %s -> %s: %w", e.DefinesFile, e.ReferencesFile, err)
		}
	}

	if err := draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return fmt.Errorf("failed to render dot: %w", err)
	}
	return nil
}
