package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/chalkboard/internal/generation"
)

func TestGenerateReturnsCandidateText(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"instructions\":[]}"}]}}]}`)
	}))
	defer srv.Close()

	p, err := New(context.Background(), Options{APIKey: "g", Model: "gemini-test", BaseURL: srv.URL + "/"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := p.Generate(context.Background(), generation.Request{System: "draw things", User: "Topic: atoms"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out) != `{"instructions":[]}` {
		t.Fatalf("out=%s", out)
	}
	if !strings.Contains(path, "gemini-test:generateContent") {
		t.Fatalf("path=%s", path)
	}
	if !strings.Contains(body, "application/json") || !strings.Contains(body, "Topic: atoms") {
		t.Fatalf("body=%s", body)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	p, err := New(context.Background(), Options{APIKey: "g", BaseURL: srv.URL + "/"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generate(context.Background(), generation.Request{User: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Options{}, nil); err == nil {
		t.Fatal("expected error")
	}
}
