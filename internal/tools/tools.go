package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sells-group/esg-advisor/internal/blob"
	"github.com/sells-group/esg-advisor/internal/chart"
	"github.com/sells-group/esg-advisor/internal/model"
	"github.com/sells-group/esg-advisor/internal/schema"
)

// listCompaniesLimit caps name searches. A listing without a query is
// uncapped; the store ignores the limit on that path.
const listCompaniesLimit = 20

// excerptLimit bounds the text excerpt stored at upload time. The full
// payload lives in blob storage; only the excerpt reaches the model.
const excerptLimit = 1000

type createCompanyArgs struct {
	Name    string `json:"name"`
	Ticker  string `json:"ticker"`
	Sector  string `json:"sector"`
	Country string `json:"country"`
}

func (r *Registry) createCompany(ctx context.Context, raw json.RawMessage) (any, error) {
	var args createCompanyArgs
	if err := decodeArgs(ToolCreateCompany, raw, &args); err != nil {
		return nil, err
	}
	if args.Name == "" {
		return nil, missing(ToolCreateCompany, "name")
	}

	company, err := r.store.CreateCompany(ctx, model.Company{
		Name:    args.Name,
		Ticker:  args.Ticker,
		Sector:  args.Sector,
		Country: args.Country,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"companyId": company.ID,
		"name":      company.Name,
		"ticker":    company.Ticker,
		"message":   fmt.Sprintf("Company %q created successfully with ID %d.", company.Name, company.ID),
	}, nil
}

type listCompaniesArgs struct {
	Query string `json:"query"`
}

func (r *Registry) listCompanies(ctx context.Context, raw json.RawMessage) (any, error) {
	var args listCompaniesArgs
	if err := decodeArgs(ToolListCompanies, raw, &args); err != nil {
		return nil, err
	}

	companies, err := r.store.ListCompanies(ctx, args.Query, listCompaniesLimit)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, len(companies))
	for i, c := range companies {
		out[i] = map[string]any{
			"id":      c.ID,
			"name":    c.Name,
			"ticker":  c.Ticker,
			"sector":  c.Sector,
			"country": c.Country,
		}
	}
	return map[string]any{"companies": out, "count": len(out)}, nil
}

type selectCompanyArgs struct {
	CompanyID *int64 `json:"companyId"`
}

func (r *Registry) selectCompany(ctx context.Context, raw json.RawMessage, tc *Context) (any, error) {
	var args selectCompanyArgs
	if err := decodeArgs(ToolSelectCompany, raw, &args); err != nil {
		return nil, err
	}
	if args.CompanyID == nil {
		return nil, missing(ToolSelectCompany, "companyId")
	}

	company, err := r.store.GetCompany(ctx, *args.CompanyID)
	if err != nil {
		return nil, err
	}

	// The selection sticks to the conversation, not the user.
	tc.ActiveCompanyID = args.CompanyID

	docs, err := r.store.ListCompanyDocuments(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	runs, err := r.store.ListCompanyRuns(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	var latestScore any
	var latestScores any
	if len(runs) > 0 {
		metrics, err := r.store.ListRunMetrics(ctx, runs[0].ID)
		if err != nil {
			return nil, err
		}
		if len(metrics) > 0 {
			sum := 0.0
			for _, m := range metrics {
				sum += m.Value
			}
			latestScore = int(math.Round(sum / float64(len(metrics))))
			s := model.ScoresFromMetrics(metrics)
			latestScores = map[string]any{
				"environmental": s.Environmental,
				"social":        s.Social,
				"governance":    s.Governance,
			}
		}
	}

	message := "Selected company: " + company.Name
	if company.Ticker != "" {
		message += " (" + company.Ticker + ")"
	}

	return map[string]any{
		"companyId": company.ID,
		"name":      company.Name,
		"ticker":    company.Ticker,
		"sector":    company.Sector,
		"country":   company.Country,
		"summary": map[string]any{
			"documents":      len(docs),
			"runs":           len(runs),
			"latestESGScore": latestScore,
			"latestScores":   latestScores,
		},
		"message": message,
	}, nil
}

type uploadDocumentArgs struct {
	CompanyID *int64 `json:"companyId"`
	Kind      string `json:"kind"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Content   string `json:"content"`
}

func (r *Registry) uploadDocument(ctx context.Context, raw json.RawMessage) (any, error) {
	var args uploadDocumentArgs
	if err := decodeArgs(ToolUploadDocument, raw, &args); err != nil {
		return nil, err
	}
	if args.CompanyID == nil {
		return nil, missing(ToolUploadDocument, "companyId")
	}
	if args.Kind == "" {
		return nil, missing(ToolUploadDocument, "kind")
	}
	kind := model.DocumentKind(args.Kind)
	if !kind.Valid() {
		return nil, &InvalidArgumentsError{Tool: ToolUploadDocument, Field: "kind", Message: fmt.Sprintf("unknown document kind %q", args.Kind)}
	}

	company, err := r.store.GetCompany(ctx, *args.CompanyID)
	if err != nil {
		return nil, err
	}

	sourceURL := args.URL
	var excerpt string

	if args.Content != "" && args.Filename != "" {
		data, err := base64.StdEncoding.DecodeString(args.Content)
		if err != nil {
			return nil, &InvalidArgumentsError{Tool: ToolUploadDocument, Field: "content", Message: "content must be base64-encoded"}
		}
		contentType := "text/csv"
		if kind == model.DocumentKindPDF {
			contentType = "application/pdf"
		}
		obj, err := r.blobs.Put(blob.NewKey(args.Filename), data, contentType)
		if err != nil {
			return nil, err
		}
		sourceURL = obj.URL
		excerpt = string(data)
		if len(excerpt) > excerptLimit {
			excerpt = excerpt[:excerptLimit]
		}
	}

	doc, err := r.store.CreateDocument(ctx, model.Document{
		CompanyID: company.ID,
		Kind:      kind,
		Filename:  args.Filename,
		URL:       sourceURL,
		Content:   excerpt,
		Status:    model.DocumentStatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"documentId": doc.ID,
		"filename":   doc.Filename,
		"kind":       doc.Kind,
		"message":    fmt.Sprintf("Document %q uploaded successfully for %s.", displayName(doc.Filename), company.Name),
	}, nil
}

type parseAndIngestArgs struct {
	DocumentID *int64 `json:"documentId"`
}

// parseAndIngest marks a document processed. Chunking and embeddings are
// out of scope; chunks is reported as 0 until an ingestion pipeline exists.
func (r *Registry) parseAndIngest(ctx context.Context, raw json.RawMessage) (any, error) {
	var args parseAndIngestArgs
	if err := decodeArgs(ToolParseAndIngest, raw, &args); err != nil {
		return nil, err
	}
	if args.DocumentID == nil {
		return nil, missing(ToolParseAndIngest, "documentId")
	}

	doc, err := r.store.GetDocument(ctx, *args.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := r.store.UpdateDocumentStatus(ctx, doc.ID, model.DocumentStatusCompleted); err != nil {
		return nil, err
	}

	return map[string]any{
		"documentId": doc.ID,
		"status":     "processed",
		"chunks":     0,
		"message":    fmt.Sprintf("Document %d parsed and ingested successfully.", doc.ID),
	}, nil
}

type runESGAnalysisArgs struct {
	CompanyID *int64 `json:"companyId"`
}

func (r *Registry) runESGAnalysis(ctx context.Context, raw json.RawMessage) (any, error) {
	var args runESGAnalysisArgs
	if err := decodeArgs(ToolRunESGAnalysis, raw, &args); err != nil {
		return nil, err
	}
	if args.CompanyID == nil {
		return nil, missing(ToolRunESGAnalysis, "companyId")
	}

	company, err := r.store.GetCompany(ctx, *args.CompanyID)
	if err != nil {
		return nil, err
	}
	run, err := r.runner.Start(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"runId":       run.ID,
		"status":      "started",
		"companyName": company.Name,
		"message":     fmt.Sprintf("ESG analysis started for %s. Run ID: %d. This will take 30-60 seconds.", company.Name, run.ID),
	}, nil
}

type getRunSummaryArgs struct {
	RunID *int64 `json:"runId"`
}

func (r *Registry) getRunSummary(ctx context.Context, raw json.RawMessage) (any, error) {
	var args getRunSummaryArgs
	if err := decodeArgs(ToolGetRunSummary, raw, &args); err != nil {
		return nil, err
	}
	if args.RunID == nil {
		return nil, missing(ToolGetRunSummary, "runId")
	}

	run, err := r.store.GetRun(ctx, *args.RunID)
	if err != nil {
		return nil, err
	}
	company, err := r.store.GetCompany(ctx, run.CompanyID)
	if err != nil {
		return nil, err
	}
	metrics, err := r.store.ListRunMetrics(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	findings, err := r.store.ListRunFindings(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	actions, err := r.store.ListRunActions(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	var scores any
	if len(metrics) > 0 {
		s := model.ScoresFromMetrics(metrics)
		scores = map[string]any{
			"environmental": s.Environmental,
			"social":        s.Social,
			"governance":    s.Governance,
			"total":         s.Total,
		}
	}

	findingsOut := make([]map[string]any, len(findings))
	for i, f := range findings {
		findingsOut[i] = map[string]any{
			"id":       f.ID,
			"category": f.Category,
			"severity": f.Severity,
			"summary":  f.Summary,
			"evidence": f.Evidence,
			"citation": f.Details,
		}
	}
	actionsOut := make([]map[string]any, len(actions))
	for i, a := range actions {
		actionsOut[i] = map[string]any{
			"id":             a.ID,
			"title":          a.Title,
			"rationale":      a.Description,
			"priority":       a.Priority,
			"expectedImpact": a.EstimatedImpact,
			"costEstimate":   a.EstimatedCost,
			"confidence":     a.Confidence,
			"status":         a.Status,
		}
	}

	return map[string]any{
		"runId":       run.ID,
		"companyName": company.Name,
		"status":      run.Status,
		"startedAt":   run.StartedAt,
		"finishedAt":  run.CompletedAt,
		"scores":      scores,
		"findings":    findingsOut,
		"actions":     actionsOut,
		"message":     fmt.Sprintf("Run %d for %s is %s.", run.ID, company.Name, run.Status),
	}, nil
}

type describeSchemaArgs struct {
	Detail string `json:"detail"`
}

func (r *Registry) describeSchema(raw json.RawMessage) (any, error) {
	var args describeSchemaArgs
	if err := decodeArgs(ToolDescribeSchema, raw, &args); err != nil {
		return nil, err
	}
	if args.Detail == "" {
		return nil, missing(ToolDescribeSchema, "detail")
	}
	// Unrecognized detail levels fall back to relations inside Describe.
	return r.catalog.Describe(schema.Detail(args.Detail)), nil
}

type sqlQueryReadonlyArgs struct {
	SQL       string `json:"sql"`
	CompanyID *int64 `json:"companyId"`
}

func (r *Registry) sqlQueryReadonly(ctx context.Context, raw json.RawMessage) (any, error) {
	var args sqlQueryReadonlyArgs
	if err := decodeArgs(ToolSQLQueryRead, raw, &args); err != nil {
		return nil, err
	}
	if args.SQL == "" {
		return nil, missing(ToolSQLQueryRead, "sql")
	}
	// companyId is advisory: the model is instructed to filter in the SQL
	// itself; the gate does not rewrite queries beyond the LIMIT clause.
	return r.gate.Execute(ctx, args.SQL)
}

type renderChartArgs struct {
	Kind  string      `json:"kind"`
	X     string      `json:"x"`
	Y     chart.YAxis `json:"y"`
	Data  *chart.Data `json:"data"`
	Title string      `json:"title"`
	Note  string      `json:"note"`
}

func (r *Registry) renderChart(raw json.RawMessage) (any, error) {
	var args renderChartArgs
	if err := decodeArgs(ToolRenderChart, raw, &args); err != nil {
		return nil, err
	}
	if args.Kind == "" {
		return nil, missing(ToolRenderChart, "kind")
	}
	if args.Data == nil {
		return nil, missing(ToolRenderChart, "data")
	}

	rendered, err := chart.Build(chart.Kind(args.Kind), chart.Config{
		X:     args.X,
		Y:     args.Y,
		Data:  *args.Data,
		Title: args.Title,
		Note:  args.Note,
	})
	if err != nil {
		return nil, err
	}
	return rendered, nil
}

type citationSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type openCitationArgs struct {
	DocumentID *int64        `json:"documentId"`
	Span       *citationSpan `json:"span"`
}

func (r *Registry) openCitation(ctx context.Context, raw json.RawMessage) (any, error) {
	var args openCitationArgs
	if err := decodeArgs(ToolOpenCitation, raw, &args); err != nil {
		return nil, err
	}
	if args.DocumentID == nil {
		return nil, missing(ToolOpenCitation, "documentId")
	}

	doc, err := r.store.GetDocument(ctx, *args.DocumentID)
	if err != nil {
		return nil, err
	}

	excerpt := doc.Content
	if excerpt == "" {
		excerpt = "No excerpt available"
	} else if args.Span != nil {
		excerpt = sliceSpan(doc.Content, args.Span.Start, args.Span.End)
	}

	return map[string]any{
		"documentId": doc.ID,
		"filename":   doc.Filename,
		"kind":       doc.Kind,
		"sourceUrl":  doc.URL,
		"excerpt":    excerpt,
		"message":    fmt.Sprintf("Citation from %q", displayName(doc.Filename)),
	}, nil
}

// sliceSpan extracts content[start:end], clamping out-of-range bounds to
// the valid window instead of failing. An inverted span yields "".
func sliceSpan(content string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(content) {
		end = len(content)
	}
	if start >= end {
		return ""
	}
	return content[start:end]
}

func displayName(filename string) string {
	if filename == "" {
		return "Untitled"
	}
	return filename
}
