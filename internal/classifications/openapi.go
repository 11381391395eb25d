package classifications

import (
	"maps"

	"github.com/JaimeStill/schemata/pkg/openapi"
)

var apiKeyParam = &openapi.Parameter{
	Name:        APIKeyHeader,
	In:          openapi.InHeader,
	Description: "Provider credential for this request",
	Schema:      &openapi.Schema{Type: "string"},
}

var failures = map[int]*openapi.Response{
	400: openapi.ResponseRef("BadRequest"),
	404: openapi.ResponseRef("NotFound"),
	409: openapi.ResponseRef("Conflict"),
	422: openapi.ResponseRef("UnprocessableEntity"),
	502: openapi.ResponseRef("BadGateway"),
	504: {Description: "Classifier call timed out"},
}

func withFailures(ok map[int]*openapi.Response) map[int]*openapi.Response {
	out := maps.Clone(failures)
	maps.Copy(out, ok)
	return out
}

var spec = struct {
	Classify, ClassifyBatch, ClassifyText, Providers *openapi.Operation
}{
	Classify: &openapi.Operation{
		Summary:     "Classify a document",
		Description: "Runs the scheme against the document. Repeating a run returns the stored result without calling the classifier.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("schemeId", "Scheme ID"),
			openapi.PathParam("documentId", "Document ID"),
			openapi.QueryParam("run_id", "string", "Run identifier (default: \"default\")", false),
			openapi.QueryParam("run_name", "string", "Run display name", false),
			openapi.QueryParam("run_description", "string", "Run description", false),
			openapi.QueryParam("provider", "string", "Classifier provider", false),
			openapi.QueryParam("model", "string", "Provider model", false),
			apiKeyParam,
		},
		Responses: withFailures(map[int]*openapi.Response{
			200: openapi.ResponseJSON("Existing result for the run", "Result"),
			201: openapi.ResponseJSON("New result", "Result"),
			409: openapi.ResponseRef("Conflict"),
		}),
	},
	ClassifyBatch: &openapi.Operation{
		Summary:     "Classify several documents",
		Parameters:  []*openapi.Parameter{openapi.PathParam("schemeId", "Scheme ID"), apiKeyParam},
		RequestBody: openapi.RequestBodyJSON("BatchCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Per-document outcomes", "BatchResponse"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	ClassifyText: &openapi.Operation{
		Summary:     "Classify ad-hoc text",
		Description: "Nothing is stored.",
		Parameters:  []*openapi.Parameter{apiKeyParam},
		RequestBody: openapi.RequestBodyJSON("TextCommand", true),
		Responses: withFailures(map[int]*openapi.Response{
			200: openapi.ResponseJSON("Validated value", "TextResult"),
		}),
	},
	Providers: &openapi.Operation{
		Summary: "List classifier providers",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Configured providers",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Provider")}},
				},
			},
		},
	},
}

var schemas = map[string]*openapi.Schema{
	"BatchCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"document_ids":    {Type: "array", Items: &openapi.Schema{Type: "string", Format: "uuid"}},
			"run_id":          {Type: "string"},
			"run_name":        {Type: "string"},
			"run_description": {Type: "string"},
			"provider":        {Type: "string"},
			"model":           {Type: "string"},
		},
		Required: []string{"document_ids"},
	},
	"BatchResponse": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"scheme_id": {Type: "string", Format: "uuid"},
			"run_id":    {Type: "string"},
			"created":   {Type: "integer"},
			"existing":  {Type: "integer"},
			"failed":    {Type: "integer"},
			"items": {
				Type: "array",
				Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"document_id": {Type: "string", Format: "uuid"},
						"status":      {Type: "integer"},
						"created":     {Type: "boolean"},
						"result":      openapi.SchemaRef("Result"),
						"error":       {Type: "string"},
						"violations":  {Type: "array", Items: openapi.SchemaRef("Violation")},
					},
				},
			},
		},
	},
	"TextCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"scheme_id": {Type: "string", Format: "uuid"},
			"text":      {Type: "string"},
			"provider":  {Type: "string"},
			"model":     {Type: "string"},
		},
		Required: []string{"scheme_id", "text"},
	},
	"TextResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"scheme_id":     {Type: "string", Format: "uuid"},
			"value":         {Type: "object"},
			"display_value": {},
			"provider":      {Type: "string"},
			"model":         {Type: "string"},
		},
	},
	"Provider": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"name":          {Type: "string"},
			"default_model": {Type: "string"},
			"models":        {Type: "array", Items: &openapi.Schema{Type: "string"}},
			"default":       {Type: "boolean"},
			"configured":    {Type: "boolean"},
		},
	},
}
