package formatting_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/schemata/pkg/formatting"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bare object", `{"relevance": 7, "topics": ["trade"]}`},
		{"padded", "\n  {\"relevance\": 7, \"topics\": [\"trade\"]}  \n"},
		{"json fence", "```json\n{\"relevance\": 7, \"topics\": [\"trade\"]}\n```"},
		{"plain fence", "```\n{\"relevance\": 7, \"topics\": [\"trade\"]}\n```"},
		{"surrounding prose", "Here is the classification:\n{\"relevance\": 7, \"topics\": [\"trade\"]}\nLet me know."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[map[string]any](tt.content)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got["relevance"] != float64(7) {
				t.Errorf("relevance = %v", got["relevance"])
			}
			if topics, ok := got["topics"].([]any); !ok || len(topics) != 1 {
				t.Errorf("topics = %v", got["topics"])
			}
		})
	}
}

func TestParseArray(t *testing.T) {
	got, err := formatting.Parse[[]string]("Labels: [\"a\", \"b\"]")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("got %v", got)
	}
}

func TestParseFailure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "   "},
		{"prose", "I cannot classify this document."},
		{"truncated", `{"relevance": 7, "topics": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formatting.Parse[map[string]any](tt.content)
			if !errors.Is(err, formatting.ErrParseFailed) {
				t.Errorf("Parse() error = %v, want ErrParseFailed", err)
			}
		})
	}

	_, err := formatting.Parse[map[string]any](strings.Repeat("x", 500))
	if err == nil || len(err.Error()) > 200 {
		t.Errorf("long content should be excerpted: %v", err)
	}
}
