package documents

import "github.com/JaimeStill/schemata/pkg/openapi"

var spec = struct {
	List, Find, Create, Search, Update, Delete *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List documents",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search titles", false),
			openapi.QueryParam("sort", "string", "Sort fields, prefix - for descending", false),
			openapi.QueryParam("title", "string", "Filter by title (contains)", false),
			openapi.QueryParam("has_results", "boolean", "Only documents with (true) or without (false) results", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of documents", "DocumentPage"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a document",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document", "Document"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Register a document",
		RequestBody: openapi.RequestBodyJSON("DocumentCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search documents",
		RequestBody: openapi.RequestBodyJSON("PageRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of documents", "DocumentPage"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Update a document",
		Description: "Changes the title, the text, or both. Text cannot be replaced once the document has results.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		RequestBody: openapi.RequestBodyJSON("DocumentUpdate", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a document",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

var schemas = map[string]*openapi.Schema{
	"Document": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":           {Type: "string", Format: "uuid"},
			"title":        {Type: "string"},
			"text_content": {Type: "string"},
			"result_count": {Type: "integer"},
			"created_at":   {Type: "string", Format: "date-time"},
			"updated_at":   {Type: "string", Format: "date-time"},
		},
	},
	"DocumentCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"title":        {Type: "string"},
			"text_content": {Type: "string"},
		},
		Required: []string{"title", "text_content"},
	},
	"DocumentUpdate": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"title":        {Type: "string"},
			"text_content": {Type: "string"},
		},
	},
	"DocumentPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Document")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
			"has_next":    {Type: "boolean"},
		},
	},
}
