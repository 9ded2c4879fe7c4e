// Package tools implements the fixed tool surface exposed to the chat
// model: company admin, document ingestion, run control, Gen-BI analytics,
// chart configuration, and citations.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/agent"
	"github.com/sells-group/esg-advisor/internal/blob"
	"github.com/sells-group/esg-advisor/internal/schema"
	"github.com/sells-group/esg-advisor/internal/sqlgate"
	"github.com/sells-group/esg-advisor/internal/store"
)

// Context carries per-conversation state threaded through tool calls.
// select_company mutates ActiveCompanyID; everything else reads it. The
// server never persists it: the client echoes it back on each request.
type Context struct {
	UserID          string
	ActiveCompanyID *int64
}

// Registry wires the tool implementations to their collaborators and
// dispatches calls by name.
type Registry struct {
	store   store.Store
	blobs   blob.Store
	runner  *agent.Runner
	gate    *sqlgate.Executor
	catalog *schema.Registry
}

// New builds a registry over the given collaborators.
func New(st store.Store, blobs blob.Store, runner *agent.Runner, gate *sqlgate.Executor, catalog *schema.Registry) *Registry {
	return &Registry{store: st, blobs: blobs, runner: runner, gate: gate, catalog: catalog}
}

// Dispatch validates raw arguments against the named tool's contract and
// invokes it. Validation happens before any side effect: a call with bad
// arguments leaves no trace. Unknown names return UnknownToolError.
func (r *Registry) Dispatch(ctx context.Context, name string, raw json.RawMessage, tc *Context) (any, error) {
	start := time.Now()
	result, err := r.dispatch(ctx, name, raw, tc)
	zap.L().Info("tool call",
		zap.String("tool", name),
		zap.Bool("success", err == nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, err
}

func (r *Registry) dispatch(ctx context.Context, name string, raw json.RawMessage, tc *Context) (any, error) {
	switch name {
	case ToolCreateCompany:
		return r.createCompany(ctx, raw)
	case ToolListCompanies:
		return r.listCompanies(ctx, raw)
	case ToolSelectCompany:
		return r.selectCompany(ctx, raw, tc)
	case ToolUploadDocument:
		return r.uploadDocument(ctx, raw)
	case ToolParseAndIngest:
		return r.parseAndIngest(ctx, raw)
	case ToolRunESGAnalysis:
		return r.runESGAnalysis(ctx, raw)
	case ToolGetRunSummary:
		return r.getRunSummary(ctx, raw)
	case ToolDescribeSchema:
		return r.describeSchema(raw)
	case ToolSQLQueryRead:
		return r.sqlQueryReadonly(ctx, raw)
	case ToolRenderChart:
		return r.renderChart(raw)
	case ToolOpenCitation:
		return r.openCitation(ctx, raw)
	default:
		return nil, &UnknownToolError{Tool: name}
	}
}

// decodeArgs unmarshals raw into v, translating decoding failures into the
// dispatcher's error taxonomy: malformed JSON becomes ArgumentParseError,
// a type mismatch on a known field becomes InvalidArgumentsError.
func decodeArgs(tool string, raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &InvalidArgumentsError{Tool: tool, Field: typeErr.Field, Message: "expected " + typeErr.Type.String()}
		}
		return &ArgumentParseError{Tool: tool, Err: err}
	}
	return nil
}

// missing reports a required field that was absent from the arguments.
func missing(tool, field string) error {
	return &InvalidArgumentsError{Tool: tool, Field: field, Message: "required field is missing"}
}
