package llm

import "context"

// Request is one completion call against a loaded model.
type Request struct {
	Prompt       string
	MaxNewTokens int
	Temperature  float32
}

type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Unloader is implemented by providers that hold memory outside this process.
type Unloader interface {
	Unload(ctx context.Context) error
}

// Loader brings a model into memory and returns a ready provider.
type Loader func(ctx context.Context) (Provider, error)

type Result struct {
	Text         string
	UsedFallback bool
}

// Generator answers a question from retrieved context. Answer never fails:
// when no model output is available it returns the template answer.
type Generator interface {
	Answer(ctx context.Context, contextText, query string) Result
	Cleanup(ctx context.Context) error
}
