package display

import (
	"bytes"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		expected string
	}{
		{name: "empty", secret: "", expected: ""},
		{name: "short", secret: "a", expected: "********"},
		{name: "long", secret: "correct horse battery staple", expected: "********"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MaskSecret(tt.secret)
			if result != tt.expected {
				t.Errorf("MaskSecret(%q) = %q, expected %q", tt.secret, result, tt.expected)
			}
		})
	}
}

func TestDecodeID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{name: "product id", id: "UHJvZHVjdDox", expected: "Product:1"},
		{name: "plain id", id: "a", expected: "a"},
		{name: "base64 without type", id: "aGVsbG8=", expected: "aGVsbG8="},
		{name: "empty", id: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DecodeID(tt.id)
			if result != tt.expected {
				t.Errorf("DecodeID(%q) = %q, expected %q", tt.id, result, tt.expected)
			}
		})
	}
}

func TestFormatFieldError(t *testing.T) {
	if got := FormatFieldError("ids", "locked"); got != "ids: locked" {
		t.Errorf("FormatFieldError() = %q", got)
	}
	if got := FormatFieldError("", "locked"); got != "locked" {
		t.Errorf("FormatFieldError() without field = %q", got)
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(&buf, map[string]any{"count": 2}); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}
	expected := "{\n  \"count\": 2\n}\n"
	if buf.String() != expected {
		t.Errorf("OutputJSON() = %q, expected %q", buf.String(), expected)
	}
}
