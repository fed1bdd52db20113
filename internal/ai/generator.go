package ai

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"uet-duck-server/internal/config"
)

// systemInstruction fixes the assistant persona for every generation.
const systemInstruction = `You are the UET Duck, a friendly and patient Rubber Duck Debugger.
Your language is English.
Your role is to help students solve programming problems *by asking them questions*.
**CRITICAL RULE: Do NOT, under any circumstances, provide direct answers, write code, fix the user's code, or give hints that are too obvious.**
Your ONLY tools are Socratic questions. Guide them to find the "aha!" moment themselves.
- Ask them to explain what their code is *supposed* to do.
- Ask them to explain what it *actually* does.
- Ask them what they have already tried.
Always be encouraging and patient. Your goal is to help them *think*.`

// Free-tier request budget against the Gemini API.
const requestsPerMinute = 10

// Turn is one message of seeded chat history.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

// Generator produces a reply given seeded history and the newest message.
type Generator interface {
	Generate(ctx context.Context, history []Turn, message string) (string, error)
}

// GeminiGenerator calls the Gemini chat API behind a circuit breaker and a
// client-side rate limiter, so one bad stretch upstream does not hammer the
// API with doomed requests.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewGeminiGenerator(ctx context.Context, cfg *config.Config) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	// RPM limit with some buffer
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)*0.9/60.0), 1)

	return &GeminiGenerator{
		client:  client,
		model:   cfg.GeminiModel,
		breaker: breaker,
		limiter: limiter,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, history []Turn, message string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		model := g.client.GenerativeModel(g.model)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}

		session := model.StartChat()
		session.History = toGenaiHistory(history)

		resp, err := session.SendMessage(ctx, genai.Text(message))
		if err != nil {
			return nil, err
		}

		// A successful call with no text is handed back empty; the caller
		// substitutes its placeholder reply.
		return extractText(resp), nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func toGenaiHistory(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		contents = append(contents, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return contents
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	text := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		break
	}
	return text
}
