package chat

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/esg-advisor/internal/agent"
	"github.com/sells-group/esg-advisor/internal/blob"
	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/schema"
	"github.com/sells-group/esg-advisor/internal/sqlgate"
	"github.com/sells-group/esg-advisor/internal/store"
	"github.com/sells-group/esg-advisor/internal/tools"
	"github.com/sells-group/esg-advisor/pkg/llm"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func newChatFixture(t *testing.T) (*Orchestrator, *mockLLM, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	blobs, err := blob.NewLocal(t.TempDir(), "/blobs")
	require.NoError(t, err)
	catalog, err := schema.Load()
	require.NoError(t, err)

	m := new(mockLLM)
	runner := agent.NewRunner(st, agent.NewPipeline(m, "claude-sonnet-4-5-20250929", 4096), time.Minute)
	registry := tools.New(st, blobs, runner, sqlgate.NewExecutor(st), catalog)

	return NewOrchestrator(m, registry, "claude-sonnet-4-5-20250929", 4096, 10), m, st
}

func TestSendMessage_TextOnly(t *testing.T) {
	o, m, _ := newChatFixture(t)
	m.On("Invoke", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return len(req.Tools) == 11 && req.System != ""
	})).Return(&llm.Response{Text: "Hello! How can I help?"}, nil).Once()

	companyID := int64(7)
	resp, err := o.SendMessage(context.Background(), "user-1",
		[]llm.Message{{Role: "user", Content: "hi"}}, &companyID)
	require.NoError(t, err)

	assert.Equal(t, KindText, resp.Type)
	assert.Equal(t, "Hello! How can I help?", resp.Message)
	assert.Empty(t, resp.ToolCalls)
	require.NotNil(t, resp.ActiveCompanyID)
	assert.Equal(t, int64(7), *resp.ActiveCompanyID, "active company passes through untouched")
}

func TestSendMessage_ToolCallsExecuteIndependently(t *testing.T) {
	o, m, st := newChatFixture(t)

	m.On("Invoke", mock.Anything, mock.Anything).Return(&llm.Response{
		Text: "Creating the company now.",
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "create_company", Arguments: json.RawMessage(`{"name": "Acme"}`)},
			{ID: "call_2", Name: "select_company", Arguments: json.RawMessage(`{"companyId": 999}`)},
			{ID: "call_3", Name: "describe_schema", Arguments: json.RawMessage(`{"detail": "tables"}`)},
		},
	}, nil).Once()

	resp, err := o.SendMessage(context.Background(), "user-1",
		[]llm.Message{{Role: "user", Content: "create Acme and select it"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, KindToolCalls, resp.Type)
	assert.Equal(t, "Creating the company now.", resp.Message)
	require.Len(t, resp.ToolCalls, 3)

	assert.True(t, resp.ToolCalls[0].Success)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ToolCallID)
	assert.NotNil(t, resp.ToolCalls[0].Result)

	// The failed select does not abort the turn; later calls still run.
	assert.False(t, resp.ToolCalls[1].Success)
	assert.Contains(t, resp.ToolCalls[1].Error, "not found")
	assert.True(t, resp.ToolCalls[2].Success)

	companies, err := st.ListCompanies(context.Background(), "", 20)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}

func TestSendMessage_SelectUpdatesActiveCompany(t *testing.T) {
	o, m, st := newChatFixture(t)
	c, err := st.CreateCompany(context.Background(), model.Company{Name: "Acme"})
	require.NoError(t, err)

	args, err := json.Marshal(map[string]any{"companyId": c.ID})
	require.NoError(t, err)
	m.On("Invoke", mock.Anything, mock.Anything).Return(&llm.Response{
		ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "select_company", Arguments: args}},
	}, nil).Once()

	resp, err := o.SendMessage(context.Background(), "user-1",
		[]llm.Message{{Role: "user", Content: "select Acme"}}, nil)
	require.NoError(t, err)

	require.NotNil(t, resp.ActiveCompanyID)
	assert.Equal(t, c.ID, *resp.ActiveCompanyID)
}

func TestSendMessage_UnknownToolCapturedAsFailure(t *testing.T) {
	o, m, _ := newChatFixture(t)
	m.On("Invoke", mock.Anything, mock.Anything).Return(&llm.Response{
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "delete_everything", Arguments: json.RawMessage(`{}`)},
		},
	}, nil).Once()

	resp, err := o.SendMessage(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.False(t, resp.ToolCalls[0].Success)
	assert.Contains(t, resp.ToolCalls[0].Error, "unknown tool")
}

func TestSendMessage_ToolCallBudget(t *testing.T) {
	o, m, st := newChatFixture(t)
	o.maxToolTurns = 2

	m.On("Invoke", mock.Anything, mock.Anything).Return(&llm.Response{
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "create_company", Arguments: json.RawMessage(`{"name": "One"}`)},
			{ID: "call_2", Name: "create_company", Arguments: json.RawMessage(`{"name": "Two"}`)},
			{ID: "call_3", Name: "create_company", Arguments: json.RawMessage(`{"name": "Three"}`)},
		},
	}, nil).Once()

	resp, err := o.SendMessage(context.Background(), "user-1",
		[]llm.Message{{Role: "user", Content: "create three companies"}}, nil)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 3)

	assert.True(t, resp.ToolCalls[0].Success)
	assert.True(t, resp.ToolCalls[1].Success)

	// Calls past the budget are reported as failures, not executed.
	assert.False(t, resp.ToolCalls[2].Success)
	assert.Contains(t, resp.ToolCalls[2].Error, "at most 2 tool calls")

	companies, err := st.ListCompanies(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, companies, 2)
}

func TestSendMessage_ModelError(t *testing.T) {
	o, m, _ := newChatFixture(t)
	m.On("Invoke", mock.Anything, mock.Anything).Return(nil, errors.New("http 529")).Once()

	_, err := o.SendMessage(context.Background(), "user-1", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoke model")
}

func TestPendingCompanyPrompt(t *testing.T) {
	_, _, st := newChatFixture(t)
	ctx := context.Background()
	_, err := st.CreateCompany(ctx, model.Company{Name: "Green Energy Corp"})
	require.NoError(t, err)

	var p PendingCompanyPrompt
	assert.False(t, p.Armed())

	p.Arm()
	require.True(t, p.Armed())

	// A miss keeps the prompt armed for a re-prompt.
	_, err = p.Resolve(ctx, st, "Blue Water")
	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, "Blue Water", noMatch.Query)
	assert.True(t, p.Armed())

	company, err := p.Resolve(ctx, st, "Green")
	require.NoError(t, err)
	assert.Equal(t, "Green Energy Corp", company.Name)
	assert.False(t, p.Armed(), "successful resolution disarms the prompt")

	p.Arm()
	p.Reset()
	assert.False(t, p.Armed())
}
