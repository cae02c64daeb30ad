package types

// SymbolEdge is a directed cross-file relationship: DefinesFile changed the
// symbols that ReferencesFile uses.
type SymbolEdge struct {
	DefinesFile    string   `json:"definesFile"`
	ReferencesFile string   `json:"referencesFile"`
	Symbols        []string `json:"symbols"`
}

// FileCluster is a connected component of files linked through shared symbols.
type FileCluster struct {
	Files []string     `json:"files"`
	Edges []SymbolEdge `json:"edges"`
}

// DependencyGraph is the file-level view of a review: edges and the clusters they form.
type DependencyGraph struct {
	Edges    []SymbolEdge  `json:"edges"`
	Clusters []FileCluster `json:"clusters"`
}

// Relationship says which way a symbol link points.
type Relationship string

const (
	// RelDefines points from a referencing hunk to the hunk defining the symbol.
	RelDefines Relationship = "defines"
	// RelReferences points from a defining hunk to a hunk using the symbol.
	RelReferences Relationship = "references"
)

// SymbolLinkedHunk is a hunk linked to another through a shared symbol.
type SymbolLinkedHunk struct {
	HunkID               HunkID       `json:"hunkId"`
	SymbolName           string       `json:"symbolName"`
	Relationship         Relationship `json:"relationship"`
	ReferenceLineNumbers []int        `json:"referenceLineNumbers,omitempty"`
}

// IdenticalHunkIndex maps a hunk to the other hunks with byte-identical changes.
type IdenticalHunkIndex map[HunkID][]HunkID
