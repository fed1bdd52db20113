package corpus

import "math"

// Match is the best-scoring chunk for a query embedding.
type Match struct {
	Text   string
	Source string
	Score  float64
}

// cosineSimilarity compares two vectors truncated to the shorter length.
// Corpus and query embeddings may come from different model revisions, so a
// dimension mismatch is tolerated rather than rejected.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Query scans every chunk and returns the strictly best-scoring one, or
// (nil, false) when the index is empty. No relevance threshold is applied;
// the prompt template decides whether the excerpt actually gets used. Ties
// keep the first chunk in corpus order.
//
// O(n*d) linear scan. Fine at the current corpus size; swap in an indexed
// search behind this method if the corpus ever outgrows it.
func (idx *Index) Query(embedding []float32) (*Match, bool) {
	if len(idx.chunks) == 0 {
		return nil, false
	}

	best := 0
	bestScore := math.Inf(-1)
	for i := range idx.chunks {
		score := cosineSimilarity(embedding, idx.chunks[i].Embedding)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	return &Match{
		Text:   idx.chunks[best].Text,
		Source: idx.chunks[best].Source,
		Score:  bestScore,
	}, true
}
