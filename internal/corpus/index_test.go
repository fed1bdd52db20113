package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus file: %v", err)
	}
	return path
}

func TestLoadCorpusFile(t *testing.T) {
	path := writeCorpusFile(t, `[
		{"chunk": "Variables hold values.", "source": "lecture-01.pdf", "embedding": [0.1, 0.2]},
		{"chunk": "Loops repeat work.", "source": "lecture-02.pdf", "embedding": [0.3, 0.4]}
	]`)

	idx := Load(path)
	if idx.Degraded() {
		t.Fatal("index should not be degraded")
	}
	if idx.Size() != 2 {
		t.Fatalf("expected 2 chunks, got %d", idx.Size())
	}
}

func TestLoadMissingFileDegrades(t *testing.T) {
	idx := Load(filepath.Join(t.TempDir(), "no-such-file.json"))
	if !idx.Degraded() {
		t.Error("missing file should leave the index degraded")
	}
	if idx.Size() != 0 {
		t.Errorf("degraded index should be empty, got %d chunks", idx.Size())
	}
}

func TestLoadMalformedFileDegrades(t *testing.T) {
	path := writeCorpusFile(t, `{"not": "an array"`)

	idx := Load(path)
	if !idx.Degraded() {
		t.Error("malformed file should leave the index degraded")
	}
	if idx.Size() != 0 {
		t.Errorf("degraded index should be empty, got %d chunks", idx.Size())
	}
}
