package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/schemata/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec(
		"Schemata API",
		"1.0.0",
		openapi.WithDescription("classification"),
		openapi.WithServer("http://localhost:8080/api", ""),
		openapi.WithServer("", "ignored"),
	)

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Schemata API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Info.Description != "classification" {
		t.Errorf("description: got %s", spec.Info.Description)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "http://localhost:8080/api" {
		t.Errorf("servers: got %+v", spec.Servers)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}
	if spec.Path("/schemes") != spec.Path("/schemes") {
		t.Error("Path should return the same item for repeated calls")
	}
}

func TestRefs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"schema ref", openapi.SchemaRef("Scheme").Ref, "#/components/schemas/Scheme"},
		{"response ref", openapi.ResponseRef("NotFound").Ref, "#/components/responses/NotFound"},
		{
			"request body",
			openapi.RequestBodyJSON("CreateScheme", true).Content["application/json"].Schema.Ref,
			"#/components/schemas/CreateScheme",
		},
		{
			"response body",
			openapi.ResponseJSON("Created", "Result").Content["application/json"].Schema.Ref,
			"#/components/schemas/Result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		name     string
		param    *openapi.Parameter
		in       string
		required bool
		typ      string
		format   string
	}{
		{"uuid path", openapi.PathParam("schemeId", "Scheme ID"), "path", true, "string", "uuid"},
		{"string path", openapi.StringPathParam("runId", "Run identifier"), "path", true, "string", ""},
		{"optional query", openapi.QueryParam("run_name", "string", "Run name", false), "query", false, "string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.param
			if p.In != tt.in || p.Required != tt.required {
				t.Errorf("in=%s required=%v, want in=%s required=%v", p.In, p.Required, tt.in, tt.required)
			}
			if p.Schema.Type != tt.typ || p.Schema.Format != tt.format {
				t.Errorf("schema: type=%s format=%s", p.Schema.Type, p.Schema.Format)
			}
		})
	}
}

func TestComponents(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"PageRequest", "Issue", "Violation"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing default schema: %s", name)
		}
	}

	for _, name := range []string{"BadRequest", "NotFound", "Conflict", "UnprocessableEntity", "BadGateway"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response: %s", name)
		}
	}

	body := c.Responses["UnprocessableEntity"].Content["application/json"].Schema
	if ref := body.Properties["violations"].Items.Ref; ref != "#/components/schemas/Violation" {
		t.Errorf("violations items ref: got %s", ref)
	}
	if _, ok := c.Responses["NotFound"].Content["application/json"].Schema.Properties["violations"]; ok {
		t.Error("NotFound should carry only an error message")
	}

	c.AddSchemas(map[string]*openapi.Schema{"Scheme": {Type: "object"}})
	c.AddResponses(map[string]*openapi.Response{"Accepted": {Description: "queued"}})

	if _, ok := c.Schemas["Scheme"]; !ok {
		t.Error("Scheme schema not added")
	}
	if _, ok := c.Responses["Accepted"]; !ok {
		t.Error("Accepted response not added")
	}
	if _, ok := c.Schemas["PageRequest"]; !ok {
		t.Error("defaults should survive AddSchemas")
	}
}

func TestSchemaConstraintsJSON(t *testing.T) {
	closed := false
	two := 2
	s := &openapi.Schema{
		Type:                 "array",
		MaxItems:             &two,
		Items:                &openapi.Schema{Type: "string", Enum: []any{"a", "b"}},
		AdditionalProperties: &closed,
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	got := string(data)
	for _, want := range []string{`"maxItems":2`, `"additionalProperties":false`, `"enum":["a","b"]`} {
		if !strings.Contains(got, want) {
			t.Errorf("%s missing %s", got, want)
		}
	}
	if strings.Contains(got, "minItems") {
		t.Errorf("unset minItems should be omitted: %s", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := openapi.MarshalJSON(openapi.NewSpec("Test", "1.0.0"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["openapi"] != openapi.Version {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
	if _, ok := parsed["servers"]; ok {
		t.Error("servers should be omitted when empty")
	}
}

func TestServeSpec(t *testing.T) {
	data, _ := openapi.MarshalJSON(openapi.NewSpec("Test", "1.0.0"))
	handler := openapi.ServeSpec(data)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}
	body, _ := io.ReadAll(res.Body)
	if string(body) != string(data) {
		t.Error("body does not match serialized spec")
	}

	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing etag")
	}

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Errorf("revalidation: status %d, body %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := openapi.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Title != "Schemata API" {
			t.Errorf("title: got %s, want Schemata API", cfg.Title)
		}
		if cfg.Description == "" {
			t.Error("description should default")
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_TITLE", "Custom API")
		t.Setenv("TEST_DESC", "Custom desc")

		cfg := openapi.Config{Title: "From file"}
		err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_TITLE", Description: "TEST_DESC"})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Title != "Custom API" || cfg.Description != "Custom desc" {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("merge", func(t *testing.T) {
		base := openapi.Config{Title: "Base", Description: "keep"}
		base.Merge(&openapi.Config{Title: "Overlay"})
		if base.Title != "Overlay" || base.Description != "keep" {
			t.Errorf("got %+v", base)
		}
	})
}
