package ai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewHFClientRequiresToken(t *testing.T) {
	if _, err := NewHFClient(HFConfig{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled got %v", err)
	}
}

func TestExtractGeneratedText(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{"list shape", `[{"generated_text": "a verdict"}]`, "a verdict", false},
		{"object shape", `{"generated_text": "a verdict"}`, "a verdict", false},
		{"trims whitespace", `[{"generated_text": "  a verdict \n"}]`, "a verdict", false},
		{"api error", `{"error": "model is loading"}`, "", true},
		{"empty list", `[]`, "", true},
		{"empty text", `[{"generated_text": ""}]`, "", true},
		{"unrecognized", `42`, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractGeneratedText(json.RawMessage(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.expected {
				t.Fatalf("expected %q got %q", tc.expected, got)
			}
		})
	}
}

func TestExtractGeneratedTextErrorMentionsCause(t *testing.T) {
	_, err := extractGeneratedText(json.RawMessage(`{"error": "model is loading"}`))
	if err == nil || !strings.Contains(err.Error(), "model is loading") {
		t.Fatalf("expected api error surfaced, got %v", err)
	}
}
