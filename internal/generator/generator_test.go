package generator

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"blogsmith/internal/core"
	"blogsmith/internal/topics"
)

// mockLLM is a test double for the model client.
type mockLLM struct {
	response   string
	err        error
	callCount  int
	lastSystem string
	lastUser   string
}

func (m *mockLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	m.callCount++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) Info() core.ModelInfo {
	return core.ModelInfo{Provider: "mock", Model: "mock-model"}
}

func testRegistry() *topics.Registry {
	return topics.NewRegistry(topics.Default().Categories(), rand.New(rand.NewSource(7)))
}

func TestGenerateEndToEnd(t *testing.T) {
	mock := &mockLLM{
		response: validResponseJSON(t, map[string]any{"slug": "Dry Eyes & Screen Time!!"}),
	}
	gen := New(mock, testRegistry())

	result, err := gen.Generate(context.Background(), Options{Topic: "Dry Eyes"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if mock.callCount != 1 {
		t.Errorf("Expected exactly one model call, got %d", mock.callCount)
	}
	if result.Slug != "dry-eyes-screen-time" {
		t.Errorf("Slug not normalized: %q", result.Slug)
	}
	if result.TopicCategory.Name != "Dry Eyes" {
		t.Errorf("TopicCategory = %q, want Dry Eyes", result.TopicCategory.Name)
	}
	if len(result.Tags) == 0 || result.Tags[0] != "dry-eyes" {
		t.Errorf("Tags should come from the category, got %v", result.Tags)
	}
	if result.ModelInfo.Provider != "mock" {
		t.Errorf("ModelInfo = %+v", result.ModelInfo)
	}
	if result.GeneratedAt.IsZero() || result.GeneratedAt.Location() != time.UTC {
		t.Error("GeneratedAt should be a UTC timestamp")
	}
	if !strings.Contains(mock.lastSystem, "Dr. Joanna Latek") {
		t.Error("System prompt not passed through to the model")
	}
	if !strings.Contains(mock.lastUser, "Dry Eyes category") {
		t.Error("User prompt should target the selected category")
	}
}

func TestGenerateUnknownTopicFailsBeforeModelCall(t *testing.T) {
	mock := &mockLLM{response: validResponseJSON(t, nil)}
	gen := New(mock, testRegistry())

	_, err := gen.Generate(context.Background(), Options{Topic: "Quantum Dentistry"})
	if err == nil {
		t.Fatal("Expected error for unknown topic")
	}
	if mock.callCount != 0 {
		t.Errorf("Model should not be called for unknown topics, got %d calls", mock.callCount)
	}

	// The error lists every valid category name so the caller can correct
	// the request.
	for _, name := range testRegistry().Names() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Error should list category %q: %v", name, err)
		}
	}
}

func TestGenerateRandomTopicWhenUnset(t *testing.T) {
	mock := &mockLLM{response: validResponseJSON(t, nil)}
	gen := New(mock, testRegistry())

	result, err := gen.Generate(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.TopicCategory.ID == "" {
		t.Error("A random category should have been selected")
	}
}

func TestGenerateSpecificSubtopic(t *testing.T) {
	mock := &mockLLM{response: validResponseJSON(t, nil)}
	gen := New(mock, testRegistry())

	_, err := gen.Generate(context.Background(), Options{
		Topic:    "myopia",
		Subtopic: "Orthokeratology for myopia control",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(mock.lastUser, `"Orthokeratology for myopia control"`) {
		t.Error("User prompt should pin the requested subtopic")
	}
}

func TestGenerateProviderFailure(t *testing.T) {
	mock := &mockLLM{err: errors.New("rate limited")}
	gen := New(mock, testRegistry())

	_, err := gen.Generate(context.Background(), Options{Topic: "disease"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Provider errors should be wrapped and surfaced, got %v", err)
	}
}

func TestGenerateSchemaFailureIsDistinguishable(t *testing.T) {
	mock := &mockLLM{response: validResponseJSON(t, map[string]any{"content": nil})}
	gen := New(mock, testRegistry())

	_, err := gen.Generate(context.Background(), Options{Topic: "Pediatrics"})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}

	mock = &mockLLM{response: "no json here"}
	gen = New(mock, testRegistry())
	_, err = gen.Generate(context.Background(), Options{Topic: "Pediatrics"})
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("Expected ErrUnparseable, got %v", err)
	}
}

func TestFormatForDisplay(t *testing.T) {
	mock := &mockLLM{response: validResponseJSON(t, nil)}
	gen := New(mock, testRegistry())

	result, err := gen.Generate(context.Background(), Options{Topic: "Dry Eyes"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out := FormatForDisplay(result)
	for _, want := range []string{"BLOG POST GENERATED", result.Title, result.Slug, "INSTAGRAM CAROUSEL SLIDES", "mock/mock-model"} {
		if !strings.Contains(out, want) {
			t.Errorf("Display output missing %q", want)
		}
	}
}
