package tools

import "github.com/sells-group/esg-advisor/pkg/llm"

// Tool names form a closed set. The model may only invoke these.
const (
	ToolCreateCompany  = "create_company"
	ToolListCompanies  = "list_companies"
	ToolSelectCompany  = "select_company"
	ToolUploadDocument = "upload_document"
	ToolParseAndIngest = "parse_and_ingest"
	ToolRunESGAnalysis = "run_esg_analysis"
	ToolGetRunSummary  = "get_run_summary"
	ToolDescribeSchema = "describe_schema"
	ToolSQLQueryRead   = "sql_query_readonly"
	ToolRenderChart    = "render_chart"
	ToolOpenCitation   = "open_citation"
)

// Definitions returns the tool contracts advertised to the model on every
// chat turn. The set is fixed; nothing registers tools at runtime.
func Definitions() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolCreateCompany,
			Description: "Create a new company in the system",
			Properties: map[string]any{
				"name":    map[string]any{"type": "string", "description": "Company name"},
				"ticker":  map[string]any{"type": "string", "description": "Stock ticker symbol (optional)"},
				"sector":  map[string]any{"type": "string", "description": "Industry sector (optional)"},
				"country": map[string]any{"type": "string", "description": "Country of operation (optional)"},
			},
			Required: []string{"name"},
		},
		{
			Name:        ToolListCompanies,
			Description: "List all companies or search by query",
			Properties: map[string]any{
				"query": map[string]any{"type": "string", "description": "Search query for company name (optional)"},
			},
		},
		{
			Name:        ToolSelectCompany,
			Description: "Select a company as the active context for this conversation",
			Properties: map[string]any{
				"companyId": map[string]any{"type": "number", "description": "Company ID to select"},
			},
			Required: []string{"companyId"},
		},
		{
			Name:        ToolUploadDocument,
			Description: "Upload a document (PDF/CSV) or URL for a company",
			Properties: map[string]any{
				"companyId": map[string]any{"type": "number", "description": "Company ID"},
				"kind":      map[string]any{"type": "string", "enum": []string{"pdf", "csv", "url"}, "description": "Document type"},
				"filename":  map[string]any{"type": "string", "description": "Filename (optional)"},
				"url":       map[string]any{"type": "string", "description": "URL if kind is 'url' (optional)"},
				"content":   map[string]any{"type": "string", "description": "Base64 encoded file content (optional)"},
			},
			Required: []string{"companyId", "kind"},
		},
		{
			Name:        ToolParseAndIngest,
			Description: "Process an uploaded document for analysis",
			Properties: map[string]any{
				"documentId": map[string]any{"type": "number", "description": "Document ID to process"},
			},
			Required: []string{"documentId"},
		},
		{
			Name:        ToolRunESGAnalysis,
			Description: "Start an ESG analysis run for a company",
			Properties: map[string]any{
				"companyId": map[string]any{"type": "number", "description": "Company ID to analyze"},
			},
			Required: []string{"companyId"},
		},
		{
			Name:        ToolGetRunSummary,
			Description: "Get summary of a completed ESG analysis run with scores, findings, and actions",
			Properties: map[string]any{
				"runId": map[string]any{"type": "number", "description": "Run ID to summarize"},
			},
			Required: []string{"runId"},
		},
		{
			Name:        ToolDescribeSchema,
			Description: "Get database schema information for Gen-BI queries",
			Properties: map[string]any{
				"detail": map[string]any{
					"type":        "string",
					"enum":        []string{"tables", "columns", "relations"},
					"description": "Level of detail to return",
				},
			},
			Required: []string{"detail"},
		},
		{
			Name:        ToolSQLQueryRead,
			Description: "Execute a read-only SQL query (SELECT/WITH only) for analytics",
			Properties: map[string]any{
				"sql":       map[string]any{"type": "string", "description": "SQL query to execute (SELECT or WITH only)"},
				"companyId": map[string]any{"type": "number", "description": "Optional company ID filter"},
			},
			Required: []string{"sql"},
		},
		{
			Name:        ToolRenderChart,
			Description: "Generate a chart visualization from data",
			Properties: map[string]any{
				"kind": map[string]any{"type": "string", "enum": []string{"line", "bar", "pie", "radar"}, "description": "Chart type"},
				"x":    map[string]any{"type": "string", "description": "X-axis column name (optional)"},
				"y": map[string]any{
					"description": "Y-axis column name(s) (optional)",
					"anyOf": []any{
						map[string]any{"type": "string"},
						map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
				"data": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"columns": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"rows": map[string]any{
							"type": "array",
							"items": map[string]any{
								"anyOf": []any{
									map[string]any{"type": "array", "items": map[string]any{
										"anyOf": []any{
											map[string]any{"type": "string"},
											map[string]any{"type": "number"},
											map[string]any{"type": "boolean"},
											map[string]any{"type": "null"},
										},
									}},
									map[string]any{"type": "object", "additionalProperties": true},
								},
							},
						},
					},
					"required": []string{"columns", "rows"},
				},
				"title": map[string]any{"type": "string", "description": "Chart title (optional)"},
				"note":  map[string]any{"type": "string", "description": "Additional note (optional)"},
			},
			Required: []string{"kind", "data"},
		},
		{
			Name:        ToolOpenCitation,
			Description: "Open and display a citation from a document",
			Properties: map[string]any{
				"documentId": map[string]any{"type": "number", "description": "Document ID"},
				"span": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"start": map[string]any{"type": "number"},
						"end":   map[string]any{"type": "number"},
					},
					"description": "Text span to extract (optional)",
				},
			},
			Required: []string{"documentId"},
		},
	}
}
