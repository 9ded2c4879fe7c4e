// Package chat turns conversation history into a single model call with
// the fixed tool surface attached, executes any tool calls the model
// makes, and shapes the response envelope for the API layer.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/tools"
	"github.com/sells-group/esg-advisor/pkg/llm"
)

const systemPrompt = `You are the ESG Advisor Chat Assistant. You help users operate the ESG Intelligence Agent app and analyze data conversationally.

Core abilities:
1. Company admin (create/list/select companies)
2. Document ingestion (PDF/CSV/URL) with extraction & chunking
3. Gen-BI analytics: translate natural language into safe, read-only SQL; render results as tables/charts
4. ESG run control: start analysis runs, monitor status, summarize outputs with citations

Rules:
- Prefer tool calls when the user expresses intent
- Show SQL only when explicitly requested; never execute non-SELECT queries
- If unsure about schema, call describe_schema first
- Always attach citations to claims from documents or analysis results
- If data is insufficient, ask for specific documents or clarify the metric/window
- Be concise and actionable in responses
- For analytics questions, prefer tables first, then offer charts if helpful

Gen-BI Guidelines:
- Only SELECT/WITH queries allowed
- Prefer explicit column lists; avoid SELECT *
- Add LIMIT 5000 if not present
- Use filters for companyId, date ranges, and period
- If schema is unknown, call describe_schema first

Available Tools:
- create_company: Create a new company
- list_companies: Search and list companies
- select_company: Set active company context
- upload_document: Upload PDF/CSV or URL
- parse_and_ingest: Process uploaded document
- run_esg_analysis: Start ESG analysis for a company
- get_run_summary: Get results from a completed run
- describe_schema: Get database schema info
- sql_query_readonly: Execute read-only SQL queries
- render_chart: Generate chart from data
- open_citation: Show document excerpt with citation`

// Response kinds.
const (
	KindText      = "text"
	KindToolCalls = "tool_calls"
)

// ToolResult is the outcome of one tool call from a single turn. Exactly
// one of Result and Error is set; Success disambiguates for clients that
// do not inspect either.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	Success    bool   `json:"success"`
}

// Response is the envelope returned for each chat turn.
type Response struct {
	Type            string       `json:"type"`
	Message         string       `json:"message"`
	ToolCalls       []ToolResult `json:"toolCalls,omitempty"`
	ActiveCompanyID *int64       `json:"activeCompanyId,omitempty"`
}

// Orchestrator holds no conversational state: the client sends the full
// history and the active company on every turn, and gets both back.
type Orchestrator struct {
	llm          llm.Client
	registry     *tools.Registry
	model        string
	maxTokens    int64
	maxToolTurns int
}

// NewOrchestrator builds an orchestrator. maxToolTurns bounds the number
// of tool calls executed per chat turn; zero or negative means no bound.
func NewOrchestrator(client llm.Client, registry *tools.Registry, model string, maxTokens int64, maxToolTurns int) *Orchestrator {
	return &Orchestrator{
		llm:          client,
		registry:     registry,
		model:        model,
		maxTokens:    maxTokens,
		maxToolTurns: maxToolTurns,
	}
}

// SendMessage runs one chat turn: a single model call with all tools
// attached, then sequential execution of whatever tool calls the model
// made. Each tool call fails independently; one bad call never aborts
// the turn. There is no follow-up model call after tool execution — the
// client renders the tool results and the model sees them on the next
// turn as part of the history.
func (o *Orchestrator) SendMessage(ctx context.Context, userID string, history []llm.Message, activeCompanyID *int64) (*Response, error) {
	resp, err := o.llm.Invoke(ctx, llm.Request{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		System:    systemPrompt,
		Messages:  history,
		Tools:     tools.Definitions(),
	})
	if err != nil {
		return nil, eris.Wrap(err, "chat: invoke model")
	}

	tc := &tools.Context{UserID: userID, ActiveCompanyID: activeCompanyID}

	if len(resp.ToolCalls) == 0 {
		return &Response{
			Type:            KindText,
			Message:         resp.Text,
			ActiveCompanyID: tc.ActiveCompanyID,
		}, nil
	}

	results := make([]ToolResult, 0, len(resp.ToolCalls))
	for i, call := range resp.ToolCalls {
		if o.maxToolTurns > 0 && i >= o.maxToolTurns {
			zap.L().Warn("tool call budget exhausted",
				zap.String("tool", call.Name),
				zap.Int("max_tool_turns", o.maxToolTurns),
			)
			results = append(results, ToolResult{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Error:      fmt.Sprintf("tool call budget exhausted: at most %d tool calls per turn", o.maxToolTurns),
			})
			continue
		}
		results = append(results, o.executeOne(ctx, call, tc))
	}

	return &Response{
		Type:            KindToolCalls,
		Message:         resp.Text,
		ToolCalls:       results,
		ActiveCompanyID: tc.ActiveCompanyID,
	}, nil
}

func (o *Orchestrator) executeOne(ctx context.Context, call llm.ToolCall, tc *tools.Context) ToolResult {
	result, err := o.registry.Dispatch(ctx, call.Name, json.RawMessage(call.Arguments), tc)
	if err != nil {
		zap.L().Warn("tool call failed",
			zap.String("tool", call.Name),
			zap.String("tool_call_id", call.ID),
			zap.Error(err),
		)
		return ToolResult{ToolCallID: call.ID, ToolName: call.Name, Error: err.Error()}
	}
	return ToolResult{ToolCallID: call.ID, ToolName: call.Name, Result: result, Success: true}
}
