// Package llm wraps the Anthropic SDK behind a small invocation interface
// supporting plain text, tool calling, and schema-constrained JSON output.
package llm

import (
	"context"
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client defines the model operations used by the chat orchestrator and
// the analysis pipeline.
type Client interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// Request is our own request type for Invoke.
type Request struct {
	Model     string
	MaxTokens int64
	System    string
	Messages  []Message
	// Tools advertises invokable capabilities. Ignored when
	// ResponseSchema is set.
	Tools []Tool
	// ResponseSchema switches the call into strict JSON output mode: the
	// model is forced to emit a document conforming to the schema, which
	// Invoke surfaces as Response.Text.
	ResponseSchema *ResponseSchema
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Tool is a capability advertised to the model with a JSON-schema
// argument contract.
type Tool struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// ResponseSchema names a JSON schema the output must conform to.
type ResponseSchema struct {
	Name   string
	Schema map[string]any
}

// Response is our own response type from Invoke.
type Response struct {
	ID         string
	Model      string
	Text       string
	ToolCalls  []ToolCall
	StopReason string
	Usage      TokenUsage
}

// ToolCall is a model-initiated invocation of one advertised tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
	"claude-opus-4-6":            {15.00, 75.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and
// model ID. Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	return inCost + outCost
}

// Add accumulates usage from another call.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// LogCost logs token usage and estimated cost with structured zap fields.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client  sdk.Client
	limiter *rate.Limiter
}

// NewClient creates an Anthropic-backed client throttled to rps requests
// per second. A non-positive rps disables throttling.
func NewClient(apiKey string, rps float64) Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &sdkClient{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// outputToolName is the synthetic tool used to force schema-conforming
// output when a ResponseSchema is supplied.
const outputToolName = "record_output"

func (c *sdkClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llm: rate limit wait")
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	switch {
	case req.ResponseSchema != nil:
		// Constrained output rides on a forced tool whose input schema is
		// the requested document schema.
		params.Tools = []sdk.ToolUnionParam{toSDKTool(Tool{
			Name:        outputToolName,
			Description: "Record the " + req.ResponseSchema.Name + " result.",
			Properties:  schemaProperties(req.ResponseSchema.Schema),
			Required:    schemaRequired(req.ResponseSchema.Schema),
		})}
		params.ToolChoice = sdk.ToolChoiceUnionParam{
			OfTool: &sdk.ToolChoiceToolParam{Name: outputToolName},
		}
	case len(req.Tools) > 0:
		tools := make([]sdk.ToolUnionParam, len(req.Tools))
		for i, t := range req.Tools {
			tools[i] = toSDKTool(t)
		}
		params.Tools = tools
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create message")
	}

	resp := fromSDKMessage(msg)
	if req.ResponseSchema != nil {
		// Unwrap the forced tool call back into text for the extraction
		// layer.
		for _, tc := range resp.ToolCalls {
			if tc.Name == outputToolName {
				resp.Text = string(tc.Arguments)
			}
		}
		resp.ToolCalls = nil
	}
	return resp, nil
}

// --- SDK type conversion helpers ---

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "assistant":
			out[i] = sdk.NewAssistantMessage(block)
		default:
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func toSDKTool(t Tool) sdk.ToolUnionParam {
	return sdk.ToolUnionParam{
		OfTool: &sdk.ToolParam{
			Name:        t.Name,
			Description: sdk.String(t.Description),
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: t.Properties,
				Required:   t.Required,
			},
		},
	}
}

func fromSDKMessage(msg *sdk.Message) *Response {
	resp := &Response{
		ID:         msg.ID,
		Model:      string(msg.Model),
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
	for _, b := range msg.Content {
		switch b.Type {
		case "text":
			resp.Text += b.Text
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: json.RawMessage(b.Input),
			})
		}
	}
	return resp
}

func schemaProperties(schema map[string]any) map[string]any {
	if props, ok := schema["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}

func schemaRequired(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
