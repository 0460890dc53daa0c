package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s, want /api/generate", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("stream = true, want false")
		}
		if req.Model != "llama2:7b-chat" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Options.Temperature != 0.3 {
			t.Errorf("temperature = %v, want 0.3", req.Options.Temperature)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "  hello there \n"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.Generate(context.Background(), "llama2:7b-chat", "say hi", Options{Temperature: 0.3, TopP: 0.9, MaxTokens: 300})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hello there" {
		t.Errorf("response = %q, want trimmed %q", got, "hello there")
	}
}

func TestGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Generate(context.Background(), "missing", "hi", Options{}); err == nil {
		t.Fatal("Generate succeeded on 404, want error")
	}
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %s, want /api/embed", r.URL.Path)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1, 0.2, 0.3}}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	vec, err := c.Embed(context.Background(), "nomic-embed-text", "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("got %d dims, want 3", len(vec))
	}
}

func TestIsRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{})
	}))
	defer srv.Close()

	if !New(srv.URL).IsRunning(context.Background()) {
		t.Error("IsRunning = false for a live server")
	}
	srv.Close()
	if New(srv.URL).IsRunning(context.Background()) {
		t.Error("IsRunning = true for a closed server")
	}
}

func TestHasModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{Models: []modelEntry{{Name: "llama2:7b-chat"}, {Name: "nomic-embed-text:latest"}}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if !c.HasModel(context.Background(), "llama2:7b-chat") {
		t.Error("exact match not found")
	}
	if !c.HasModel(context.Background(), "nomic-embed-text") {
		t.Error("tag-suffix match not found")
	}
	if c.HasModel(context.Background(), "mistral") {
		t.Error("missing model reported present")
	}
}
