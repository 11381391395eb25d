package schemes

import "github.com/JaimeStill/schemata/pkg/openapi"

var idParam = openapi.PathParam("id", "Scheme ID")

var spec = struct {
	List, Find, Target, Create, Search, Update, Delete *openapi.Operation
}{
	List: &openapi.Operation{
		Summary: "List schemes",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search name and description", false),
			openapi.QueryParam("sort", "string", "Sort fields, prefix - for descending", false),
			openapi.QueryParam("name", "string", "Filter by name (contains)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of schemes", "SchemePage"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a scheme",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Scheme", "Scheme"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Target: &openapi.Operation{
		Summary:     "Compiled target type",
		Description: "Returns the target type compiled from the scheme and the JSON Schema sent to classifiers.",
		Parameters:  []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Compiled target", "SchemeTarget"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Create a scheme",
		RequestBody: openapi.RequestBodyJSON("SchemeCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created scheme", "Scheme"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search schemes",
		RequestBody: openapi.RequestBodyJSON("PageRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of schemes", "SchemePage"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Replace a scheme",
		Description: "Stored results are not rewritten; their display values follow the new fields.",
		Parameters:  []*openapi.Parameter{idParam},
		RequestBody: openapi.RequestBodyJSON("SchemeCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated scheme", "Scheme"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete a scheme",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

var fieldSchema = &openapi.Schema{
	Type: "object",
	Properties: map[string]*openapi.Schema{
		"name":             {Type: "string"},
		"description":      {Type: "string"},
		"type":             {Type: "string", Enum: []any{"int", "str", "List[str]", "List[Dict[str, any]]"}},
		"scale_min":        {Type: "integer"},
		"scale_max":        {Type: "integer"},
		"is_set_of_labels": {Type: "boolean"},
		"labels":           {Type: "array", Items: &openapi.Schema{Type: "string"}},
		"max_labels":       {Type: "integer"},
		"dict_keys": {
			Type: "array",
			Items: &openapi.Schema{
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"name": {Type: "string"},
					"type": {Type: "string", Enum: []any{"str", "int", "float", "bool"}},
				},
			},
		},
	},
	Required: []string{"name", "type"},
}

var schemas = map[string]*openapi.Schema{
	"Field": fieldSchema,
	"Scheme": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                 {Type: "string", Format: "uuid"},
			"name":               {Type: "string"},
			"description":        {Type: "string"},
			"model_instructions": {Type: "string"},
			"fields":             {Type: "array", Items: openapi.SchemaRef("Field")},
			"validation_rules":   {Type: "object", Description: "Named CEL expressions over the typed value"},
			"result_count":       {Type: "integer"},
			"document_count":     {Type: "integer"},
			"created_at":         {Type: "string", Format: "date-time"},
			"updated_at":         {Type: "string", Format: "date-time"},
		},
	},
	"SchemeCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"name":               {Type: "string"},
			"description":        {Type: "string"},
			"model_instructions": {Type: "string"},
			"fields":             {Type: "array", Items: openapi.SchemaRef("Field")},
			"validation_rules":   {Type: "object"},
		},
		Required: []string{"name"},
	},
	"SchemeTarget": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"scheme_id":   {Type: "string", Format: "uuid"},
			"target":      {Type: "object"},
			"json_schema": {Type: "object"},
		},
	},
	"SchemePage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Scheme")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
			"has_next":    {Type: "boolean"},
		},
	},
}
