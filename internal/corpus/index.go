package corpus

import (
	"encoding/json"
	"os"

	"uet-duck-server/internal/logger"
)

// Chunk is one unit of course material paired with its precomputed embedding.
// The corpus file is produced offline; this service only ever reads it.
type Chunk struct {
	Text      string    `json:"chunk"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding"`
}

// Index holds the corpus loaded once at startup. It is never mutated after
// Load returns, so concurrent readers need no locking.
type Index struct {
	chunks   []Chunk
	degraded bool
}

// Load reads the corpus file. A missing or malformed file is not fatal: the
// index comes back empty and every chat runs in no-context mode for the
// lifetime of the process.
func Load(path string) *Index {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Could not load corpus file. Retrieval will be disabled.", "path", path, "error", err.Error())
		return &Index{degraded: true}
	}

	var chunks []Chunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		logger.Warn("Could not parse corpus file. Retrieval will be disabled.", "path", path, "error", err.Error())
		return &Index{degraded: true}
	}

	logger.Info("Loaded document chunks", "count", len(chunks), "path", path)
	return &Index{chunks: chunks}
}

// NewIndex builds an index directly from chunks. Used by tests and tooling.
func NewIndex(chunks []Chunk) *Index {
	return &Index{chunks: chunks}
}

// Size reports the number of loaded chunks.
func (idx *Index) Size() int {
	return len(idx.chunks)
}

// Degraded reports whether the corpus failed to load at startup.
func (idx *Index) Degraded() bool {
	return idx.degraded
}
