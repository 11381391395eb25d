package schemes_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/schemata/internal/compiler"
	"github.com/JaimeStill/schemata/internal/dbtest"
	"github.com/JaimeStill/schemata/internal/fields"
	"github.com/JaimeStill/schemata/internal/schemes"
	"github.com/JaimeStill/schemata/pkg/pagination"
)

func ptr(v int) *int { return &v }

var pageConfig = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

type mockSystem struct {
	listFn   func(context.Context, pagination.PageRequest, schemes.Filters) (*pagination.PageResult[schemes.Scheme], error)
	findFn   func(context.Context, uuid.UUID) (*schemes.Scheme, error)
	createFn func(context.Context, schemes.Command) (*schemes.Scheme, error)
	updateFn func(context.Context, uuid.UUID, schemes.Command) (*schemes.Scheme, error)
	deleteFn func(context.Context, uuid.UUID) error
}

func (m *mockSystem) Handler() *schemes.Handler { return nil }

func (m *mockSystem) List(ctx context.Context, p pagination.PageRequest, f schemes.Filters) (*pagination.PageResult[schemes.Scheme], error) {
	return m.listFn(ctx, p, f)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*schemes.Scheme, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd schemes.Command) (*schemes.Scheme, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd schemes.Command) (*schemes.Scheme, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func sentimentCommand() schemes.Command {
	return schemes.Command{
		Name:              "sentiment",
		Description:       "Tone of a press release",
		ModelInstructions: "Rate the overall tone.",
		Fields: []fields.Field{
			{Name: "score", Type: fields.Int, ScaleMin: ptr(1), ScaleMax: ptr(5)},
			{Name: "tone", Type: fields.ListStr, IsSetOfLabels: true, Labels: []string{"pos", "neg"}, MaxLabels: ptr(1)},
			{Name: "entities", Type: fields.ListDict, DictKeys: []fields.DictKey{
				{Name: "name", Type: fields.KeyStr},
				{Name: "salience", Type: fields.KeyFloat},
			}},
		},
		ValidationRules: map[string]string{"positive_tone_scores_high": "!('pos' in value.tone) || value.score >= 3"},
	}
}

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*schemes.Command)
		constraints []fields.Constraint
	}{
		{"valid", func(*schemes.Command) {}, nil},
		{"zero fields permitted", func(c *schemes.Command) { c.Fields = nil; c.ValidationRules = nil }, nil},
		{"blank name", func(c *schemes.Command) { c.Name = "  " }, []fields.Constraint{fields.ConstraintName}},
		{
			"bad field and bad rule",
			func(c *schemes.Command) {
				c.Fields[0].ScaleMax = ptr(0)
				c.ValidationRules["broken"] = "value.score >"
			},
			[]fields.Constraint{fields.ConstraintScaleBounds, fields.ConstraintRule},
		},
		{
			"duplicate field",
			func(c *schemes.Command) { c.Fields = append(c.Fields, fields.Field{Name: "score", Type: fields.Str}) },
			[]fields.Constraint{fields.ConstraintDuplicateName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := sentimentCommand()
			tt.mutate(&cmd)

			err := cmd.Validate()
			if len(tt.constraints) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var decl *fields.DeclarationError
			if !errors.As(err, &decl) {
				t.Fatalf("expected *DeclarationError, got %v", err)
			}
			if len(decl.Issues) != len(tt.constraints) {
				t.Fatalf("issues = %+v", decl.Issues)
			}
			for i, c := range tt.constraints {
				if decl.Issues[i].Constraint != c {
					t.Errorf("issue[%d] = %s, want %s", i, decl.Issues[i].Constraint, c)
				}
			}
		})
	}
}

func TestCommandValidateNormalizes(t *testing.T) {
	cmd := schemes.Command{
		Name:   "  topics ",
		Fields: []fields.Field{{Name: "summary", Type: fields.Str, ScaleMin: ptr(1)}},
	}
	if err := cmd.Validate(); err != nil {
		t.Fatal(err)
	}
	if cmd.Name != "topics" {
		t.Errorf("Name = %q", cmd.Name)
	}
	if cmd.Fields[0].ScaleMin != nil {
		t.Error("foreign constraint not cleared")
	}
	if cmd.ValidationRules == nil {
		t.Error("ValidationRules should default to an empty map")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{schemes.ErrNotFound, http.StatusNotFound},
		{schemes.ErrDuplicate, http.StatusConflict},
		{schemes.ErrHasResults, http.StatusConflict},
		{schemes.ErrInvalidID, http.StatusBadRequest},
		{schemes.ErrInvalidScheme, http.StatusBadRequest},
		{&fields.DeclarationError{Issues: []fields.Issue{{Field: "name"}}}, http.StatusBadRequest},
		{compiler.ErrCompilation, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := schemes.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandlerCreateReportsIssues(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd schemes.Command) (*schemes.Scheme, error) {
			if err := cmd.Validate(); err != nil {
				return nil, err
			}
			return &schemes.Scheme{ID: uuid.New(), Name: cmd.Name, Fields: cmd.Fields}, nil
		},
	}
	h := schemes.NewHandler(sys, slog.Default(), pageConfig)

	body := `{"name":"s","fields":[
		{"name":"score","type":"int","scale_min":5,"scale_max":1},
		{"name":"tone","type":"List[str]","is_set_of_labels":true,"labels":["only"]}
	]}`

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/schemes", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Error  string         `json:"error"`
		Issues []fields.Issue `json:"issues"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Issues) != 2 {
		t.Fatalf("issues = %+v", resp.Issues)
	}
	if resp.Issues[0].Field != "fields[0].scale_max" || resp.Issues[1].Field != "fields[1].labels" {
		t.Errorf("issue paths = %s, %s", resp.Issues[0].Field, resp.Issues[1].Field)
	}
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd schemes.Command) (*schemes.Scheme, error) {
			return &schemes.Scheme{ID: uuid.New(), Name: cmd.Name}, nil
		},
	}
	h := schemes.NewHandler(sys, slog.Default(), pageConfig)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/schemes", strings.NewReader(`{"name":"free"}`)))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestHandlerTarget(t *testing.T) {
	cmd := sentimentCommand()
	scheme := &schemes.Scheme{
		ID:                uuid.New(),
		Name:              cmd.Name,
		ModelInstructions: cmd.ModelInstructions,
		Fields:            cmd.Fields,
	}

	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*schemes.Scheme, error) {
			if id != scheme.ID {
				return nil, schemes.ErrNotFound
			}
			return scheme, nil
		},
	}
	h := schemes.NewHandler(sys, slog.Default(), pageConfig)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"compiled", scheme.ID.String(), http.StatusOK},
		{"missing", uuid.NewString(), http.StatusNotFound},
		{"bad id", "x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/schemes/"+tt.id+"/target", nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()

			h.Target(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}

			var resp struct {
				Target compiler.TargetType `json:"target"`
				Schema map[string]any      `json:"json_schema"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if len(resp.Target.Slots) != 3 || resp.Target.Instructions != "Rate the overall tone." {
				t.Errorf("target = %+v", resp.Target)
			}
			if resp.Schema["additionalProperties"] != false {
				t.Errorf("schema = %v", resp.Schema)
			}
		})
	}
}

func TestHandlerDeleteWithResults(t *testing.T) {
	sys := &mockSystem{
		deleteFn: func(context.Context, uuid.UUID) error { return schemes.ErrHasResults },
	}
	h := schemes.NewHandler(sys, slog.Default(), pageConfig)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/schemes/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	sys := schemes.New(db, slog.Default(), pageConfig)

	created, err := sys.Create(ctx, sentimentCommand())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := sys.Find(ctx, created.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(found.Fields) != 3 {
		t.Fatalf("fields = %+v", found.Fields)
	}
	if got := found.Fields[1].Labels; len(got) != 2 || got[0] != "pos" {
		t.Errorf("labels = %v", got)
	}
	if got := found.Fields[2].DictKeys; len(got) != 2 || got[1].Type != fields.KeyFloat {
		t.Errorf("dict keys = %+v", got)
	}
	if *found.Fields[0].ScaleMax != 5 {
		t.Errorf("scale_max = %d", *found.Fields[0].ScaleMax)
	}
	if len(found.ValidationRules) != 1 {
		t.Errorf("rules = %v", found.ValidationRules)
	}

	if _, err := sys.Create(ctx, sentimentCommand()); !errors.Is(err, schemes.ErrDuplicate) {
		t.Errorf("duplicate Create = %v, want ErrDuplicate", err)
	}

	update := sentimentCommand()
	update.Fields = update.Fields[:1]
	updated, err := sys.Update(ctx, created.ID, update)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Fields) != 1 {
		t.Errorf("fields after update = %d", len(updated.Fields))
	}

	page, err := sys.List(ctx, pagination.PageRequest{}, schemes.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || len(page.Data[0].Fields) != 1 {
		t.Errorf("list = %+v", page)
	}

	if err := sys.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := sys.Find(ctx, created.ID); !errors.Is(err, schemes.ErrNotFound) {
		t.Errorf("Find after delete = %v", err)
	}
}
