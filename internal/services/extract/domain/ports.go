package domain

import (
	"context"

	"orderlens/internal/adapters/llm"
	"orderlens/internal/core/order"
)

// AnalyzerPort is the external port of the extract service
type AnalyzerPort interface {
	Analyze(ctx context.Context, req Request) (order.Result, error)
}

// LLMPort is the model surface the orchestrator needs; *llm.Client satisfies it
type LLMPort interface {
	// Complete returns free-form text; fragments stream through p.OnFragment
	Complete(ctx context.Context, p llm.Prompt) (string, error)

	// CallTool forces an answer through t and returns the tool input object
	CallTool(ctx context.Context, p llm.Prompt, t llm.Tool) (map[string]any, error)
}

// SinkPort receives diagnostic artifacts. Errors are logged by the caller and never change a result
type SinkPort interface {
	Record(ctx context.Context, a Artifact) error
}

// Ports are dependencies injected into the extract module
type Ports struct {
	LLM  LLMPort  // required
	Sink SinkPort // optional; nil = discard
}
