package adapters

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DonxYu/Workflow/domain"
)

type testLogger struct{}

func (testLogger) Info(string)                                           {}
func (testLogger) InfoWithFields(string, map[string]interface{})         {}
func (testLogger) Error(error, string)                                   {}
func (testLogger) ErrorWithFields(error, string, map[string]interface{}) {}
func (testLogger) Debug(string)                                          {}
func (testLogger) DebugWithFields(string, map[string]interface{})        {}
func (testLogger) Warn(string)                                           {}
func (testLogger) WarnWithFields(string, map[string]interface{})         {}

func TestContentFetcher_ReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	fetcher := NewContentFetcher(5*time.Second, testLogger{})

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal("Failed to create request:", err)
	}

	payload, err := fetcher.FetchContent(req)
	if err != nil {
		t.Fatal("FetchContent failed:", err)
	}
	if string(payload) != `{"ok":true}` {
		t.Errorf("Unexpected payload: %s", payload)
	}
}

func TestContentFetcher_NonOKStatusBecomesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer server.Close()

	fetcher := NewContentFetcher(5*time.Second, testLogger{})

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal("Failed to create request:", err)
	}

	_, err = fetcher.FetchContent(req)
	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected a StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", statusErr.StatusCode)
	}
	if statusErr.Body != "overloaded" {
		t.Errorf("Expected the response body on the error, got %q", statusErr.Body)
	}
	if !domain.IsTransient(err) {
		t.Error("Expected a 503 to classify as transient")
	}
}
