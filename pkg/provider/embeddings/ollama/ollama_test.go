package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/MrWong99/cadenza/pkg/provider/embeddings/ollama"
)

func TestNew_Validation(t *testing.T) {
	if _, err := ollama.New("http://localhost:11434", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
	if _, err := ollama.New("", "nomic-embed-text"); err != nil {
		t.Fatalf("empty baseURL should fall back to the default: %v", err)
	}
}

// newTestServer returns an httptest server that validates the /api/embed
// request shape and responds with one vector per input.
func newTestServer(t *testing.T, vectors [][]float32) (*httptest.Server, *[][]string) {
	t.Helper()
	var inputs [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model == "" {
			t.Error("request is missing the model name")
		}
		inputs = append(inputs, req.Input)
		json.NewEncoder(w).Encode(map[string]any{
			"model":      req.Model,
			"embeddings": vectors[:len(req.Input)],
		})
	}))
	return srv, &inputs
}

func TestEmbed(t *testing.T) {
	srv, inputs := newTestServer(t, [][]float32{{0.1, 0.2, 0.3}})
	defer srv.Close()

	p, err := ollama.New(srv.URL, "nomic-embed-text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	vec, err := p.Embed(context.Background(), "query: hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(vec, []float32{0.1, 0.2, 0.3}) {
		t.Errorf("vec = %v", vec)
	}
	if len(*inputs) != 1 || (*inputs)[0][0] != "query: hello" {
		t.Errorf("server saw inputs %v", *inputs)
	}
}

func TestEmbedBatch(t *testing.T) {
	srv, _ := newTestServer(t, [][]float32{{1, 0}, {0, 1}})
	defer srv.Close()

	p, err := ollama.New(srv.URL, "all-minilm")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	vecs, err := p.EmbedBatch(context.Background(), []string{"first sentence", "second sentence"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	p, err := ollama.New("http://localhost:11434", "nomic-embed-text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vecs, err := p.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil): %v", err)
	}
	if vecs != nil {
		t.Errorf("vecs = %v, want nil", vecs)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := ollama.New(srv.URL, "nomic-embed-text")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestModelID(t *testing.T) {
	p, err := ollama.New("http://localhost:11434", "mxbai-embed-large")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.ModelID(); got != "mxbai-embed-large" {
		t.Errorf("ModelID = %q", got)
	}
}
