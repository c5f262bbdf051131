package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"savo/internal/config"
	"savo/internal/services"
)

func candidateBody(text string) string {
	encoded, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(encoded)
}

const scriptJSON = `{
	"commentary_data": [
		{"time": 12.5, "commentary": "The strings enter quietly."},
		{"time": 0, "commentary": "A sparse opening."},
		{"time": 40, "commentary": ""}
	],
	"report_narrative": "A slow build from silence."
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.Gemini{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.5-flash",
	}, WithSleeper(func(time.Duration) {}))
}

func TestGenerateScriptDecodesPayload(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain json", scriptJSON},
		{"fenced json", "```json\n" + scriptJSON + "\n```"},
		{"bare fence", "```\n" + scriptJSON + "\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
					t.Errorf("api key header = %q", got)
				}
				fmt.Fprint(w, candidateBody(tt.text))
			})

			script, err := client.GenerateScript(context.Background(), "analyze this")
			if err != nil {
				t.Fatalf("GenerateScript: %v", err)
			}
			if script.Narrative != "A slow build from silence." {
				t.Errorf("Narrative = %q", script.Narrative)
			}
			// Empty commentary dropped, remaining events sorted by start.
			if len(script.Events) != 2 {
				t.Fatalf("got %d events, want 2", len(script.Events))
			}
			if script.Events[0].Start != 0 || script.Events[1].Start != 12.5 {
				t.Errorf("events out of order: %+v", script.Events)
			}
		})
	}
}

func TestGenerateScriptToleratesMissingKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateBody(`{}`))
	})

	script, err := client.GenerateScript(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if len(script.Events) != 0 || script.Narrative != "" {
		t.Errorf("expected empty script, got %+v", script)
	}
}

func TestGenerateScriptRejectsNonJSONText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateBody("I cannot analyze this track."))
	})

	_, err := client.GenerateScript(context.Background(), "analyze this")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestGenerateScriptRetriesServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, candidateBody(scriptJSON))
	})

	script, err := client.GenerateScript(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3", calls)
	}
	if len(script.Events) == 0 {
		t.Error("expected events after retry")
	}
}

func TestGenerateScriptDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	if _, err := client.GenerateScript(context.Background(), "analyze this"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

func TestGenerateScriptRequiresAPIKey(t *testing.T) {
	client := NewClient(config.Gemini{Model: "gemini-2.5-flash"})
	_, err := client.GenerateScript(context.Background(), "analyze this")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
