package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/schemata/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1024", 1024},
		{"0", 0},
		{"512B", 512},
		{"10MB", 10 << 20},
		{"10 mb", 10 << 20},
		{"10MiB", 10 << 20},
		{"2M", 2 << 20},
		{"1.5KB", 1536},
		{" 1GB ", 1 << 30},
		{"1TiB", 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.in)
			if err != nil {
				t.Fatalf("ParseBytes(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBytesRejects(t *testing.T) {
	for _, in := range []string{"", "MB", "ten MB", "10XB", "-5MB", "1.2.3KB"} {
		t.Run(in, func(t *testing.T) {
			if _, err := formatting.ParseBytes(in); !errors.Is(err, formatting.ErrInvalidSize) {
				t.Errorf("ParseBytes(%q) error = %v, want ErrInvalidSize", in, err)
			}
		})
	}
}
