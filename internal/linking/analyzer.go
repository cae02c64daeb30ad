package linking

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/maypok86/otter"

	"github.com/agusespa/hunkgraph/internal/types"
)

// DefaultCacheSize is the number of analyses an Analyzer keeps when the
// configured size is not positive.
const DefaultCacheSize = 64

// Analysis bundles everything derived from one set of inputs.
type Analysis struct {
	Graph     types.DependencyGraph                     `json:"graph"`
	Links     map[types.HunkID][]types.SymbolLinkedHunk `json:"links"`
	Identical types.IdenticalHunkIndex                  `json:"identical"`
	Moves     []types.MovePair                          `json:"moves"`
}

// Analyze runs the deduplicator and move detection, builds the symbol index
// once and feeds it to both the file-level graph and the hunk-level linker.
func Analyze(files []types.FileSymbolDiff, hunks []types.Hunk) *Analysis {
	identical := FindIdenticalHunks(hunks)
	idx := BuildSymbolIndex(files)
	return &Analysis{
		Graph:     buildDependencyGraph(files, idx),
		Links:     buildSymbolLinks(files, idx, identical),
		Identical: identical,
		Moves:     FindMovePairs(hunks),
	}
}

// Analyzer memoizes Analyze by a content hash of its inputs. Results are
// shared between callers and must be treated as read-only.
type Analyzer struct {
	cache  otter.Cache[uint64, *Analysis]
	logger *slog.Logger
}

// NewAnalyzer returns an Analyzer keeping up to cacheSize results.
// A non-positive size uses DefaultCacheSize.
func NewAnalyzer(cacheSize int, logger *slog.Logger) (*Analyzer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := otter.MustBuilder[uint64, *Analysis](cacheSize).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}

	return &Analyzer{cache: cache, logger: logger}, nil
}

// Analyze returns the cached analysis for these inputs, computing it on a miss.
func (a *Analyzer) Analyze(files []types.FileSymbolDiff, hunks []types.Hunk) (*Analysis, error) {
	key, err := InputHash(files, hunks)
	if err != nil {
		return nil, err
	}

	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug("analysis cache hit", "key", key)
		return cached, nil
	}

	result := Analyze(files, hunks)
	a.cache.Set(key, result)
	a.logger.Debug("analysis cache miss",
		"key", key,
		"files", len(files),
		"hunks", len(hunks),
		"edges", len(result.Graph.Edges),
		"clusters", len(result.Graph.Clusters))

	return result, nil
}

// Stats reports cache hits and misses since creation.
func (a *Analyzer) Stats() (hits, misses int64) {
	s := a.cache.Stats()
	return s.Hits(), s.Misses()
}

// Close drops the cache.
func (a *Analyzer) Close() {
	a.cache.Close()
}

// InputHash fingerprints the analysis inputs by their canonical JSON encoding.
func InputHash(files []types.FileSymbolDiff, hunks []types.Hunk) (uint64, error) {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	if err := enc.Encode(files); err != nil {
		return 0, fmt.Errorf("failed to hash symbol diffs: %w", err)
	}
	if err := enc.Encode(hunks); err != nil {
		return 0, fmt.Errorf("failed to hash hunks: %w", err)
	}
	return d.Sum64(), nil
}
