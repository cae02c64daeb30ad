package types

// SymbolKind is the syntactic category of a declaration.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindStruct    SymbolKind = "struct"
	KindTrait     SymbolKind = "trait"
	KindImpl      SymbolKind = "impl"
	KindMethod    SymbolKind = "method"
	KindEnum      SymbolKind = "enum"
	KindInterface SymbolKind = "interface"
	KindModule    SymbolKind = "module"
	KindType      SymbolKind = "type"
	KindVariable  SymbolKind = "variable"
	KindConstant  SymbolKind = "constant"
	KindField     SymbolKind = "field"
)

// ChangeType says how a symbol changed between the two sides.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// LineRange is 1-based and inclusive on both ends.
type LineRange struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

func (r LineRange) Contains(line int) bool {
	return r.StartLine <= line && line <= r.EndLine
}

func (r LineRange) Overlaps(other LineRange) bool {
	return r.StartLine <= other.EndLine && other.StartLine <= r.EndLine
}

// Symbol represents a declaration found in one version of a file.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
	Children  []Symbol   `json:"children,omitempty"`
}

func (s Symbol) Range() LineRange {
	return LineRange{StartLine: s.StartLine, EndLine: s.EndLine}
}

// SymbolDiff is a changed symbol. Name is the only identity used for
// cross-file matching; Kind may be nil when the producer could not tell.
type SymbolDiff struct {
	Name       string       `json:"name"`
	Kind       *SymbolKind  `json:"kind,omitempty"`
	ChangeType ChangeType   `json:"changeType"`
	HunkIDs    []HunkID     `json:"hunkIds"`
	Children   []SymbolDiff `json:"children"`
	OldRange   *LineRange   `json:"oldRange,omitempty"`
	NewRange   *LineRange   `json:"newRange,omitempty"`
}

// SymbolReference marks textual occurrences of a changed symbol inside a hunk.
type SymbolReference struct {
	SymbolName  string `json:"symbolName"`
	HunkID      HunkID `json:"hunkId"`
	LineNumbers []int  `json:"lineNumbers"`
}

// FileSymbolDiff is the symbol-level view of one changed file.
type FileSymbolDiff struct {
	FilePath         string            `json:"filePath"`
	HasGrammar       bool              `json:"hasGrammar"`
	Symbols          []SymbolDiff      `json:"symbols"`
	TopLevelHunkIDs  []HunkID          `json:"topLevelHunkIds"`
	SymbolReferences []SymbolReference `json:"symbolReferences"`
}

// KindPtr returns a pointer to k, for optional kinds.
func KindPtr(k SymbolKind) *SymbolKind {
	return &k
}

// SymbolDefinition is where a named declaration lives in the working tree.
type SymbolDefinition struct {
	FilePath  string     `json:"filePath"`
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
}
