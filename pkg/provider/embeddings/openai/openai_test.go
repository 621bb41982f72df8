package openai

import (
	"testing"
	"time"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New("", "text-embedding-3-small"); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestNew_DefaultModel(t *testing.T) {
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.ModelID() != DefaultModel {
		t.Errorf("ModelID() = %q, want %q", p.ModelID(), DefaultModel)
	}
}

func TestNew_AcceptsOptions(t *testing.T) {
	p, err := New("sk-test", "text-embedding-3-large",
		WithBaseURL("https://llm-gateway.internal"),
		WithOrganization("org-123"),
		WithTimeout(5*time.Second),
		WithDimensions(256),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.ModelID() != "text-embedding-3-large" {
		t.Errorf("ModelID() = %q, want text-embedding-3-large", p.ModelID())
	}
	if p.dimensions != 256 {
		t.Errorf("dimensions = %d, want 256", p.dimensions)
	}
}

func TestNewParams_DimensionsOmittedByDefault(t *testing.T) {
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if params := p.newParams(); params.Dimensions.Valid() {
		t.Errorf("Dimensions set on default params: %v", params.Dimensions)
	}
}

func TestToFloat32(t *testing.T) {
	in := []float64{1.0, 2.5, -0.5}
	out := toFloat32(in)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i, v := range out {
		if v != float32(in[i]) {
			t.Errorf("index %d: got %v, want %v", i, v, float32(in[i]))
		}
	}
}
