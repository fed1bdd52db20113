package chat

import (
	"context"
	"fmt"
	"strings"

	"uet-duck-server/internal/ai"
	"uet-duck-server/internal/corpus"
	"uet-duck-server/internal/hearts"
	"uet-duck-server/internal/logger"
)

// placeholderReply is returned when the model answers with no usable text.
const placeholderReply = "Quack... I seem to have lost my train of thought. Could you ask that again?"

// Orchestrator runs one chat request end to end: quota, retrieval, prompt
// construction, generation. All collaborators are wired once at startup and
// shared read-only across requests.
type Orchestrator struct {
	ledger    hearts.Ledger
	embedder  ai.Embedder
	generator ai.Generator
	index     *corpus.Index
}

func NewOrchestrator(ledger hearts.Ledger, embedder ai.Embedder, generator ai.Generator, index *corpus.Index) *Orchestrator {
	return &Orchestrator{
		ledger:    ledger,
		embedder:  embedder,
		generator: generator,
		index:     index,
	}
}

// Ask answers one question for one user. Each failure short-circuits the
// pipeline with a typed error the handler maps onto a status code.
//
// A heart is consumed before generation and is not refunded if a later step
// fails; the upstream call already happened or is about to, and double-spend
// is worse than a lost heart. Client-side cancellation does not roll the
// consumption back either.
func (o *Orchestrator) Ask(ctx context.Context, userID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidRequest
	}
	if userID == "" {
		return "", ErrUnauthorized
	}

	// Check and consume as one conditional update. ErrUserNotFound surfaces
	// as an authorization failure, ErrNoHearts as quota exhaustion.
	balance, err := o.ledger.TryConsume(ctx, userID)
	if err != nil {
		return "", err
	}
	logger.Debug("Heart consumed", "user_id", userID, "remaining", balance)

	embedding, err := o.embedder.Embed(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	excerpt := ""
	if match, ok := o.index.Query(embedding); ok {
		excerpt = match.Text
		logger.Debug("Retrieved course excerpt", "score", match.Score, "source", match.Source)
	}

	reply, err := o.generator.Generate(ctx, seedHistory(), buildPrompt(prompt, excerpt))
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	if strings.TrimSpace(reply) == "" {
		return placeholderReply, nil
	}
	return reply, nil
}
