package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/chart"
	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/sqlgate"
	"github.com/sells-group/esg-advisor/internal/store"
	"github.com/sells-group/esg-advisor/internal/tools"
	"github.com/sells-group/esg-advisor/pkg/llm"
)

type apiServer struct {
	env *appEnv
}

// newRouter builds the HTTP API. The chat endpoint is the primary
// surface; the REST endpoints exist for direct UI calls that bypass the
// model (action decisions, eval labels, BI reports).
func newRouter(env *appEnv) http.Handler {
	s := &apiServer{env: env}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat/messages", s.handleChatMessage)

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", s.handleCreateCompany)
			r.Get("/", s.handleListCompanies)
			r.Post("/search", s.handleSearchCompanies)
			r.Get("/{id}", s.handleGetCompany)
			r.Get("/{id}/documents", s.handleListDocuments)
			r.Post("/{id}/documents", s.handleUploadDocument)
			r.Get("/{id}/runs", s.handleListRuns)
			r.Post("/{id}/runs", s.handleStartRun)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/{id}", s.handleGetRun)
			r.Get("/{id}/metrics", s.handleRunMetrics)
			r.Get("/{id}/findings", s.handleRunFindings)
			r.Get("/{id}/actions", s.handleRunActions)
		})

		r.Post("/actions/{id}/approve", s.handleActionDecision(model.ActionStatusApproved))
		r.Post("/actions/{id}/reject", s.handleActionDecision(model.ActionStatusRejected))
		r.Post("/eval/labels", s.handleCreateEvalLabel)
		r.Post("/analytics/bi-report", s.handleBIReport)
	})

	r.Get("/blobs/{key}", s.handleGetBlob)

	return r
}

// --- handlers ---

type chatRequest struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ActiveCompanyID *int64 `json:"activeCompanyId,omitempty"`
}

func (s *apiServer) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("messages is required"))
		return
	}

	history := make([]llm.Message, len(req.Messages))
	for i, m := range req.Messages {
		history[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	resp, err := s.env.Orchestrator.SendMessage(r.Context(), userID(r), history, req.ActiveCompanyID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Ticker  string `json:"ticker"`
		Sector  string `json:"sector"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	company, err := s.env.Store.CreateCompany(r.Context(), model.Company{
		Name: req.Name, Ticker: req.Ticker, Sector: req.Sector, Country: req.Country,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (s *apiServer) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.env.Store.ListCompanies(r.Context(), r.URL.Query().Get("query"), 20)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies, "count": len(companies)})
}

// handleSearchCompanies backs the pending-BI clarification flow: the UI
// posts the user's utterance as a name query and renders the first match.
func (s *apiServer) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is required"))
		return
	}
	companies, err := s.env.Store.ListCompanies(r.Context(), req.Query, 20)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies, "count": len(companies)})
}

func (s *apiServer) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	company, err := s.env.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *apiServer) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	docs, err := s.env.Store.ListCompanyDocuments(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleUploadDocument reuses the upload_document tool so the REST path
// and the chat path share validation and blob handling.
func (s *apiServer) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	body["companyId"] = id
	raw, err := json.Marshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tc := &tools.Context{UserID: userID(r)}
	result, err := s.env.Registry.Dispatch(r.Context(), tools.ToolUploadDocument, raw, tc)
	if err != nil {
		writeToolError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	runs, err := s.env.Store.ListCompanyRuns(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *apiServer) handleStartRun(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	run, err := s.env.Runner.Start(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	run, err := s.env.Store.GetRun(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *apiServer) handleRunMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	metrics, err := s.env.Store.ListRunMetrics(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
		"scores":  model.ScoresFromMetrics(metrics),
	})
}

func (s *apiServer) handleRunFindings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	findings, err := s.env.Store.ListRunFindings(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

func (s *apiServer) handleRunActions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actions, err := s.env.Store.ListRunActions(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}

func (s *apiServer) handleActionDecision(status model.ActionStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := s.env.Store.UpdateActionStatus(r.Context(), id, status); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (s *apiServer) handleCreateEvalLabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID     int64  `json:"runId"`
		FindingID *int64 `json:"findingId"`
		ActionID  *int64 `json:"actionId"`
		LabelType string `json:"labelType"`
		Value     string `json:"labelValue"`
		Feedback  string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	labelType := model.LabelType(req.LabelType)
	value := model.LabelValue(req.Value)
	if !labelType.Valid() || !value.Valid() {
		writeError(w, http.StatusBadRequest, errors.New("unknown labelType or labelValue"))
		return
	}

	label, err := s.env.Store.CreateEvalLabel(r.Context(), model.EvalLabel{
		RunID:     req.RunID,
		FindingID: req.FindingID,
		ActionID:  req.ActionID,
		LabelType: labelType,
		Value:     value,
		Feedback:  req.Feedback,
		UserID:    userID(r),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, label)
}

func (s *apiServer) handleBIReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID int64 `json:"companyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CompanyID == 0 {
		writeError(w, http.StatusBadRequest, errors.New("companyId is required"))
		return
	}
	rep, err := s.env.Reports.Generate(r.Context(), req.CompanyID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *apiServer) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, err := s.env.Blobs.Get(key)
	if err != nil {
		writeError(w, http.StatusNotFound, errors.New("blob not found"))
		return
	}
	switch {
	case strings.HasSuffix(key, ".pdf"):
		w.Header().Set("Content-Type", "application/pdf")
	case strings.HasSuffix(key, ".csv"):
		w.Header().Set("Content-Type", "text/csv")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// --- helpers ---

// userID identifies the caller for audit fields. Auth is out of scope;
// the header is trusted as-is and defaults to "anonymous".
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-Id"); id != "" {
		return id
	}
	return "anonymous"
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid id"))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if store.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

// writeToolError maps the tool error taxonomy onto HTTP statuses.
func writeToolError(w http.ResponseWriter, err error) {
	var (
		invalid   *tools.InvalidArgumentsError
		parse     *tools.ArgumentParseError
		unsafe    *sqlgate.UnsafeQueryError
		forbidden *sqlgate.ForbiddenKeywordError
		chartErr  *chart.ValidationError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &parse),
		errors.As(err, &unsafe), errors.As(err, &forbidden),
		errors.As(err, &chartErr):
		writeError(w, http.StatusBadRequest, err)
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
