package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	perr "orderlens/internal/platform/errors"
)

// Prompt is one request: system and user text plus sampling controls.
// Zero MaxTokens means the client default; OnFragment, when set, sees every
// streamed text fragment in arrival order
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	OnFragment  func(string)
}

// Tool is a JSON schema the model is forced to answer through
type Tool struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ErrNoToolUse means a forced tool call came back without the tool block
var ErrNoToolUse = perr.New(perr.ErrorCodeUpstream, "llm response has no tool_use block")

func (c *Client) params(p Prompt) anthropic.MessageNewParams {
	limit := p.MaxTokens
	if limit <= 0 {
		limit = c.opts.MaxTokens
	}
	mp := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.opts.Model),
		MaxTokens:   int64(limit),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(p.User))},
		Temperature: anthropic.Float(p.Temperature),
	}
	if p.System != "" {
		mp.System = []anthropic.TextBlockParam{{Text: p.System}}
	}
	return mp
}

// toolParam maps a plain schema onto the SDK shape: properties travel as is,
// everything but "type" (always object) rides in ExtraFields
func toolParam(t Tool) anthropic.ToolUnionParam {
	schema := anthropic.ToolInputSchemaParam{ExtraFields: map[string]any{}}
	for k, v := range t.Schema {
		switch k {
		case "type":
		case "properties":
			schema.Properties = v
		default:
			schema.ExtraFields[k] = v
		}
	}
	tp := anthropic.ToolParam{Name: t.Name, InputSchema: schema}
	if t.Description != "" {
		tp.Description = anthropic.String(t.Description)
	}
	return anthropic.ToolUnionParam{OfTool: &tp}
}

// Complete streams a free-form answer and returns the concatenated text
func (c *Client) Complete(ctx context.Context, p Prompt) (out string, err error) {
	start := c.now()
	defer func() { c.observe("complete", start, err) }()

	ctx = withAttempts(ctx)
	stream := c.api.Messages.NewStreaming(ctx, c.params(p))
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			c.log.Debug().Err(cerr).Msg("llm close stream failed")
		}
	}()

	var (
		full    strings.Builder
		stopped bool
	)
	for stream.Next() {
		switch ev := stream.Current().AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			d, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || d.Text == "" {
				continue
			}
			full.WriteString(d.Text)
			if p.OnFragment != nil {
				p.OnFragment(d.Text)
			}
		case anthropic.MessageStopEvent:
			stopped = true
		}
	}
	if err := stream.Err(); err != nil {
		return "", c.fail(ctx, err, "stream")
	}
	if !stopped {
		return "", perr.Unavailablef("llm stream ended before message_stop after %d bytes", full.Len())
	}
	return full.String(), nil
}

// CallTool forces the model to answer through t and returns the tool input object
func (c *Client) CallTool(ctx context.Context, p Prompt, t Tool) (out map[string]any, err error) {
	start := c.now()
	defer func() { c.observe("tool", start, err) }()

	mp := c.params(p)
	mp.Tools = []anthropic.ToolUnionParam{toolParam(t)}
	mp.ToolChoice = anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: t.Name}}

	ctx = withAttempts(ctx)
	msg, err := c.api.Messages.New(ctx, mp)
	if err != nil {
		return nil, c.fail(ctx, err, "tool call")
	}
	for _, blk := range msg.Content {
		if blk.Type != "tool_use" || blk.Name != t.Name {
			continue
		}
		var in map[string]any
		if err := json.Unmarshal(blk.Input, &in); err != nil || in == nil {
			return nil, perr.Upstreamf("llm tool %s input is not an object", t.Name)
		}
		return in, nil
	}
	return nil, ErrNoToolUse
}
