package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/promptform/promptform/internal/config"
	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/pkg/model"
)

func newTestClient(t *testing.T, srv *httptest.Server, maxRetries int) *Client {
	t.Helper()
	c, err := NewClient(config.GatewayConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func chatReply(content string) string {
	raw, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(raw)
}

func TestGenerateReturnsFormSchema(t *testing.T) {
	content := `{"type":"form","title":"Contact","fields":[{"id":"email","label":"Email","type":"email","required":true}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)

	result, err := c.Generate(context.Background(), "a contact form")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Kind() != model.ResultForm {
		t.Fatalf("kind = %q, want form", result.Kind())
	}
	form, ok := result.Form()
	if !ok {
		t.Fatal("form branch not populated")
	}
	if form.Title != "Contact" {
		t.Errorf("title = %q", form.Title)
	}
}

func TestGenerateReturnsClarification(t *testing.T) {
	content := `{"type":"clarification","contradiction":"anonymous but wants a phone number","questions":["Should the phone number be optional?"]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)

	result, err := c.Generate(context.Background(), "anonymous feedback form with required phone")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Kind() != model.ResultClarification {
		t.Fatalf("kind = %q, want clarification", result.Kind())
	}
	clarification, ok := result.Clarification()
	if !ok {
		t.Fatal("clarification branch not populated")
	}
	if got := len(clarification.Questions); got != 1 {
		t.Errorf("questions = %d, want 1", got)
	}
}

func TestGenerateToleratesFencedJSON(t *testing.T) {
	content := "```json\n{\"type\":\"clarification\",\"questions\":[\"Which fields?\"]}\n```"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)

	result, err := c.Generate(context.Background(), "some form")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Kind() != model.ResultClarification {
		t.Fatalf("kind = %q, want clarification", result.Kind())
	}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	content := `{"type":"form","title":"T","fields":[{"id":"name","label":"Name","type":"text"}]}`

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chatReply(content))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2)

	result, err := c.Generate(context.Background(), "a form")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Kind() != model.ResultForm {
		t.Fatalf("kind = %q, want form", result.Kind())
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestGenerateQuotaExhaustedDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"type":"insufficient_quota","message":"quota exceeded"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3)

	_, err := c.Generate(context.Background(), "a form")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := KindOf(err); got != KindQuotaExhausted {
		t.Errorf("kind = %q, want %q", got, KindQuotaExhausted)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", got)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"type":"rate_limit_exceeded"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)

	_, err := c.Generate(context.Background(), "a form")
	if got := KindOf(err); got != KindRateLimited {
		t.Errorf("kind = %q, want %q", got, KindRateLimited)
	}
}

func TestGenerateRejectsContractViolations(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "here is your form!"},
		{"unknown discriminator", `{"type":"schema","title":"T"}`},
		{"form without fields", `{"type":"form","title":"T","fields":[]}`},
		{"clarification without questions", `{"type":"clarification","questions":[]}`},
		{"field with unknown type", `{"type":"form","title":"T","fields":[{"id":"a","label":"A","type":"checkbox"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, chatReply(tc.content))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, 0)

			_, err := c.Generate(context.Background(), "a form")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != KindMalformed {
				t.Errorf("kind = %q, want %q", got, KindMalformed)
			}
		})
	}
}

func TestGenerateUnavailableOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)

	_, err := c.Generate(context.Background(), "a form")
	if got := KindOf(err); got != KindUnavailable {
		t.Errorf("kind = %q, want %q", got, KindUnavailable)
	}

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatal("error is not *gateway.Error")
	}
}
