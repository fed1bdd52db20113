package ai

import (
	"context"
	"os"
	"testing"

	"uet-duck-server/internal/config"
)

func TestGeminiEmbedderLive(t *testing.T) {
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Skipf("config load failed: %v", err)
	}

	embedder, err := NewGeminiEmbedder(context.Background(), cfg)
	if err != nil {
		t.Fatalf("client init failed: %v", err)
	}
	defer embedder.Close()

	vec, err := embedder.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("embedding error: %v", err)
	}
	if len(vec) == 0 {
		t.Fatalf("empty embedding")
	}
}
