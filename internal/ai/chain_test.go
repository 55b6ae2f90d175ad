package ai

import (
	"context"
	"errors"
	"testing"
)

type stubGenerator struct {
	enabled  bool
	response string
	err      error
	calls    int
}

func (s *stubGenerator) Enabled() bool { return s.enabled }

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestWithFallbackNilHandling(t *testing.T) {
	primary := &stubGenerator{enabled: true}
	if got := WithFallback(primary, nil); got != Generator(primary) {
		t.Fatal("nil fallback should return primary unchanged")
	}
	fallback := &stubGenerator{enabled: true}
	if got := WithFallback(nil, fallback); got != Generator(fallback) {
		t.Fatal("nil primary should return fallback unchanged")
	}
}

func TestChainPrefersPrimary(t *testing.T) {
	primary := &stubGenerator{enabled: true, response: "primary answer"}
	fallback := &stubGenerator{enabled: true, response: "fallback answer"}

	chain := WithFallback(primary, fallback)
	content, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if content != "primary answer" {
		t.Fatalf("expected primary answer got %q", content)
	}
	if fallback.calls != 0 {
		t.Fatal("fallback should not be called when primary succeeds")
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &stubGenerator{enabled: true, err: errors.New("rate limited")}
	fallback := &stubGenerator{enabled: true, response: "fallback answer"}

	chain := WithFallback(primary, fallback)
	content, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if content != "fallback answer" {
		t.Fatalf("expected fallback answer got %q", content)
	}
}

func TestChainFallsBackOnEmptyResponse(t *testing.T) {
	primary := &stubGenerator{enabled: true, response: "   "}
	fallback := &stubGenerator{enabled: true, response: "fallback answer"}

	chain := WithFallback(primary, fallback)
	content, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if content != "fallback answer" {
		t.Fatalf("expected fallback answer got %q", content)
	}
}

func TestChainDisabledEverywhere(t *testing.T) {
	chain := WithFallback(&stubGenerator{}, &stubGenerator{})
	if chain.Enabled() {
		t.Fatal("chain with two disabled backends should be disabled")
	}
	if _, err := chain.Generate(context.Background(), "prompt"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled got %v", err)
	}
}
