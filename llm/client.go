// Package llm implements the completion sampler over the agent SDK's
// provider clients. It owns everything transport-shaped: provider
// selection, per-request timeouts, transient retries, and the fan-out
// of n independent requests for a round.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/Ingenimax/agent-sdk-go/pkg/interfaces"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/deepseek"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/gemini"
	"github.com/Ingenimax/agent-sdk-go/pkg/llm/openai"
	"github.com/Ingenimax/agent-sdk-go/pkg/logging"
	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/anatrav/conclave/config"
	"github.com/anatrav/conclave/decide"
)

// generator is the slice of the provider client the sampler needs.
// Narrowing the interface keeps tests free of provider plumbing.
type generator interface {
	Generate(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (string, error)
}

// Client issues completion requests against one configured provider.
type Client struct {
	provider string
	model    string
	gen      generator

	requestTimeout time.Duration
	attempts       uint
}

// NewClient builds a provider client from configuration.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	c := &Client{
		provider:       cfg.Provider,
		model:          cfg.Model,
		requestTimeout: cfg.RequestTimeout,
		attempts:       cfg.RequestAttempts,
	}

	switch cfg.Provider {
	case "gemini":
		if c.model == "" {
			c.model = "gemini-2.5-flash"
		}
		client, err := gemini.NewClient(ctx,
			gemini.WithAPIKey(cfg.GeminiAPIKey),
			gemini.WithBackend(genai.BackendGeminiAPI),
			gemini.WithModel(c.model))
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		c.gen = client
	case "openai":
		if c.model == "" {
			c.model = "gpt-4.1"
		}
		c.gen = openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithModel(c.model),
			openai.WithLogger(logging.New()))
	case "deepseek":
		if c.model == "" {
			c.model = "deepseek-chat"
		}
		c.gen = deepseek.NewClient(cfg.DeepseekAPIKey,
			deepseek.WithModel(c.model),
			deepseek.WithLogger(logging.New()))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	log.Info().Str("provider", c.provider).Str("model", c.model).Msg("completion client ready")
	return c, nil
}

// Sample issues n independent requests with the identical prompt.
// Requests run in parallel, but each completion keeps the index
// assigned at issuance time and the result slice is ordered by that
// index, never by arrival. Any request failing after its retries fails
// the whole round with a TransportError.
func (c *Client) Sample(ctx context.Context, prompt string, n int) ([]decide.Completion, error) {
	if n < 1 {
		return nil, &decide.TransportError{Err: fmt.Errorf("sample count must be >= 1, got %d", n)}
	}

	completions := make([]decide.Completion, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			text, latency, err := c.generate(gctx, prompt)
			if err != nil {
				return &decide.TransportError{Err: fmt.Errorf("sample %d: %w", i, err)}
			}
			completions[i] = decide.Completion{
				Index: i,
				Text:  text,
				Meta: map[string]any{
					"provider":   c.provider,
					"model":      c.model,
					"latency_ms": latency.Milliseconds(),
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return completions, nil
}

// generate performs one request with a per-request timeout and
// transient retries. Provider-side flakes get retried here; whatever
// survives the retries is a transport failure for the decision core.
func (c *Client) generate(ctx context.Context, prompt string) (string, time.Duration, error) {
	start := time.Now()
	text, err := retry.DoWithData(func() (string, error) {
		rctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
		out, err := c.gen.Generate(rctx, prompt)
		if err != nil {
			log.Warn().Err(err).Str("provider", c.provider).Msg("completion request failed")
		}
		return out, err
	},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	return text, time.Since(start), err
}
