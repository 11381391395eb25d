package openapi

import "maps"

// NewComponents creates Components with shared schemas and error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: name,-created_at"},
				},
			},
			"Issue": {
				Type: "object",
				Properties: map[string]*Schema{
					"field":      {Type: "string", Description: "Path of the offending declaration", Example: "fields[0].scale_max"},
					"constraint": {Type: "string", Description: "Violated declaration invariant"},
					"message":    {Type: "string"},
				},
			},
			"Violation": {
				Type: "object",
				Properties: map[string]*Schema{
					"field":   {Type: "string", Description: "Path of the offending value", Example: "entities[2].weight"},
					"kind":    {Type: "string", Enum: []any{"MissingField", "OutOfRange", "InvalidLabel", "SchemaMismatch", "TooManyLabels", "RuleFailed"}},
					"message": {Type: "string"},
					"values":  {Type: "array", Items: &Schema{Type: "string"}, Description: "Offending values, when applicable"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest": errorResponse("Invalid request or field declaration", "issues", "Issue"),
			"NotFound":   errorResponse("Resource not found", "", ""),
			"Conflict":   errorResponse("Resource conflict (duplicate name or existing results)", "", ""),
			"UnprocessableEntity": errorResponse(
				"Classifier output failed validation against the target type", "violations", "Violation",
			),
			"BadGateway": errorResponse("Classifier provider failed", "", ""),
		},
	}
}

// errorResponse builds a JSON error response. When detailKey is set, the body
// carries an array of detailRef components under that key beside "error".
func errorResponse(description, detailKey, detailRef string) *Response {
	props := map[string]*Schema{
		"error": {Type: "string", Description: "Error message"},
	}
	if detailKey != "" {
		props[detailKey] = &Schema{Type: "array", Items: SchemaRef(detailRef)}
	}

	return &Response{
		Description: description,
		Content:     jsonContent(&Schema{Type: "object", Properties: props}),
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
