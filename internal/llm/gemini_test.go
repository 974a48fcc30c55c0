package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkleber/kaltrack/internal/models"
)

func TestSendBuildsRequestAndParsesResponse(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if key := r.URL.Query().Get("key"); key != "secret" {
			t.Errorf("key = %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hallo! "},{"text":"Alles erfasst."}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "test-model")
	history := []models.ChatMessage{
		{Role: "user", Content: "Hi"},
		{Role: "model", Content: "Hallo!"},
	}
	text, err := c.Send(context.Background(), "Ich hatte einen Apfel", history, "systemkontext")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hallo! Alles erfasst." {
		t.Errorf("text = %q", text)
	}

	contents, _ := gotBody["contents"].([]any)
	if len(contents) != 3 {
		t.Fatalf("contents length = %d, want history + message", len(contents))
	}
	if gotBody["system_instruction"] == nil {
		t.Error("system_instruction missing from request")
	}
}

func TestSendClassifiesQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"Resource exhausted"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m")
	_, err := c.Send(context.Background(), "msg", nil, "")
	if !errors.Is(err, ErrQuota) {
		t.Errorf("err = %v, want ErrQuota", err)
	}
}

func TestSendClassifiesConnectionError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k", "m")
	_, err := c.Send(context.Background(), "msg", nil, "")
	if !errors.Is(err, ErrConnection) && !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want a classified transport error", err)
	}
}

func TestSendEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m")
	if _, err := c.Send(context.Background(), "msg", nil, ""); err == nil {
		t.Fatal("expected error on empty candidates")
	}
}

func TestBuildSystemContextDates(t *testing.T) {
	ref := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) // a Friday
	got := BuildSystemContext(ref)

	for _, want := range []string{
		"HEUTIGES DATUM: 2025-01-10",
		"GESTRIGES DATUM: 2025-01-09",
		"VORGESTRIGES DATUM: 2025-01-08",
		"- Letzter Montag: 2025-01-06",
		"- Letzter Freitag: 2025-01-03", // same weekday means a week back
		`- "vor 3 Tagen": 2025-01-07`,
		"---JSON_START---",
		"add_water",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system context missing %q", want)
		}
	}
}
