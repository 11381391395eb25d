package results

import "github.com/JaimeStill/schemata/pkg/openapi"

var pageParams = []*openapi.Parameter{
	openapi.QueryParam("page", "integer", "Page number", false),
	openapi.QueryParam("page_size", "integer", "Results per page", false),
	openapi.QueryParam("sort", "string", "Sort fields, prefix - for descending", false),
}

var pageResponses = map[int]*openapi.Response{
	200: openapi.ResponseJSON("Page of results", "ResultPage"),
}

var spec = struct {
	List, Search, Find, ListByScheme, ListByDocument, ListByRun, Delete *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List results",
		Parameters: append([]*openapi.Parameter{
			openapi.QueryParam("document_id", "string", "Filter by document", false),
			openapi.QueryParam("scheme_id", "string", "Filter by scheme", false),
			openapi.QueryParam("document_ids", "string", "Comma-separated document IDs", false),
			openapi.QueryParam("scheme_ids", "string", "Comma-separated scheme IDs", false),
			openapi.QueryParam("run_id", "string", "Filter by run", false),
			openapi.QueryParam("run_name", "string", "Filter by run name (contains)", false),
			openapi.QueryParam("provider", "string", "Filter by provider", false),
			openapi.QueryParam("model", "string", "Filter by model", false),
		}, pageParams...),
		Responses: pageResponses,
	},
	Search: &openapi.Operation{
		Summary:     "Search results",
		RequestBody: openapi.RequestBodyJSON("PageRequest", true),
		Responses:   pageResponses,
	},
	Find: &openapi.Operation{
		Summary:    "Find a result",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Result ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Result with display value", "Result"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	ListByScheme: &openapi.Operation{
		Summary:    "Results for a scheme",
		Parameters: append([]*openapi.Parameter{openapi.PathParam("id", "Scheme ID")}, pageParams...),
		Responses:  pageResponses,
	},
	ListByDocument: &openapi.Operation{
		Summary:    "Results for a document",
		Parameters: append([]*openapi.Parameter{openapi.PathParam("id", "Document ID")}, pageParams...),
		Responses:  pageResponses,
	},
	ListByRun: &openapi.Operation{
		Summary:    "Results for a run",
		Parameters: append([]*openapi.Parameter{openapi.StringPathParam("runId", "Run ID")}, pageParams...),
		Responses:  pageResponses,
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a result",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Result ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

var schemas = map[string]*openapi.Schema{
	"Result": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":              {Type: "string", Format: "uuid"},
			"document_id":     {Type: "string", Format: "uuid"},
			"document_title":  {Type: "string"},
			"scheme_id":       {Type: "string", Format: "uuid"},
			"scheme_name":     {Type: "string"},
			"run_id":          {Type: "string", Default: DefaultRunID},
			"run_name":        {Type: "string"},
			"run_description": {Type: "string"},
			"value":           {Type: "object", Description: "Validated classifier output; scalars are stored as {\"value\": x}"},
			"provider":        {Type: "string"},
			"model":           {Type: "string"},
			"timestamp":       {Type: "string", Format: "date-time"},
			"display_value":   {Description: "Presentation form rendered against the scheme's current fields"},
		},
	},
	"ResultPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Result")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
			"has_next":    {Type: "boolean"},
		},
	},
}
