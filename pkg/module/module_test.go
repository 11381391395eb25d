package module_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/schemata/pkg/module"
)

func mustModule(t *testing.T, prefix string, h http.Handler) *module.Module {
	t.Helper()
	m, err := module.New(prefix, h)
	if err != nil {
		t.Fatalf("New(%q) error = %v", prefix, err)
	}
	return m
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

func TestNewPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		valid  bool
	}{
		{"/api", true},
		{"/v1", true},
		{"", false},
		{"/", false},
		{"api", false},
		{"/api/v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			m, err := module.New(tt.prefix, http.NewServeMux())
			if tt.valid {
				if err != nil || m.Prefix() != tt.prefix {
					t.Errorf("New(%q) = %v, %v", tt.prefix, m, err)
				}
				return
			}
			if !errors.Is(err, module.ErrInvalidPrefix) {
				t.Errorf("New(%q) error = %v, want ErrInvalidPrefix", tt.prefix, err)
			}
		})
	}
}

func TestModuleStripsPrefix(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
	})

	m := mustModule(t, "/api", mux)

	for path, want := range map[string]string{
		"/api":                 "/",
		"/api/schemes":         "/schemes",
		"/api/schemes/1/terms": "/schemes/1/terms",
	} {
		req := httptest.NewRequest("GET", path, nil)
		m.ServeHTTP(httptest.NewRecorder(), req)

		if got != want {
			t.Errorf("%s: inner path = %q, want %q", path, got, want)
		}
		if req.URL.Path != path {
			t.Errorf("%s: original request mutated to %q", path, req.URL.Path)
		}
	}
}

func TestModuleMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := mustModule(t, "/api", text("ok"))
	m.Use(tag("outer"), tag("inner"))
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v", order)
	}
}

func TestRouterDispatch(t *testing.T) {
	router := module.NewRouter()
	if err := router.Mount(mustModule(t, "/api", text("api"))); err != nil {
		t.Fatal(err)
	}
	router.HandleNative("GET /healthz", text("native"))

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/api/schemes", http.StatusOK, "api"},
		{"/api", http.StatusOK, "api"},
		{"/api/schemes/", http.StatusOK, "api"},
		{"/healthz", http.StatusOK, "native"},
		{"/healthz/", http.StatusOK, "native"},
		{"/apis", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterMountTwice(t *testing.T) {
	router := module.NewRouter()
	if err := router.Mount(mustModule(t, "/api", text("a"))); err != nil {
		t.Fatal(err)
	}
	if err := router.Mount(mustModule(t, "/api", text("b"))); !errors.Is(err, module.ErrInvalidPrefix) {
		t.Errorf("second mount error = %v", err)
	}
}
