package corpus

import (
	"math"
	"testing"
)

func TestQueryReturnsBestMatch(t *testing.T) {
	idx := NewIndex([]Chunk{
		{Text: "A", Source: "a.pdf", Embedding: []float32{1, 0}},
		{Text: "B", Source: "b.pdf", Embedding: []float32{0, 1}},
	})

	match, ok := idx.Query([]float32{0.9, 0.1})
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Text != "A" {
		t.Errorf("expected chunk A, got %q", match.Text)
	}
	if match.Score <= 0 {
		t.Errorf("expected a positive score, got %f", match.Score)
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	idx := NewIndex(nil)

	match, ok := idx.Query([]float32{1, 0})
	if ok || match != nil {
		t.Errorf("empty index should return no match, got %+v", match)
	}
}

func TestQueryTieKeepsFirstChunk(t *testing.T) {
	// Identical embeddings score identically; the first in corpus order wins.
	idx := NewIndex([]Chunk{
		{Text: "first", Embedding: []float32{1, 1}},
		{Text: "second", Embedding: []float32{1, 1}},
	})

	match, ok := idx.Query([]float32{1, 1})
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Text != "first" {
		t.Errorf("tie should keep the first chunk, got %q", match.Text)
	}
}

func TestQueryAlwaysReturnsBestEvenWhenNegative(t *testing.T) {
	// No relevance threshold: an opposite-direction chunk is still returned.
	idx := NewIndex([]Chunk{
		{Text: "opposite", Embedding: []float32{-1, 0}},
	})

	match, ok := idx.Query([]float32{1, 0})
	if !ok {
		t.Fatal("expected a match even with a negative score")
	}
	if match.Score >= 0 {
		t.Errorf("expected a negative score, got %f", match.Score)
	}
}

func TestCosineSimilarityTruncatesToShorterVector(t *testing.T) {
	// A 3-dim corpus vector against a 2-dim query only compares the overlap.
	long := []float32{1, 0, 5}
	short := []float32{1, 0}

	got := cosineSimilarity(long, short)
	want := cosineSimilarity([]float32{1, 0}, short)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected truncated similarity %f, got %f", want, got)
	}
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero-norm vector should score 0, got %f", got)
	}
}
