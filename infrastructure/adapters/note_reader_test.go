package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DonxYu/Workflow/domain"
)

const notePage = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="A day at the lake">
<meta name="description" content="  Three friends, one rowboat and a storm.  ">
<meta property="og:video" content="https://cdn.example.com/lake.mp4">
</head>
<body></body>
</html>`

func TestNoteReader_ExtractsPageMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(notePage))
	}))
	defer server.Close()

	reader := NewNoteReader(5*time.Second, testLogger{})

	content, err := reader.Read(context.Background(), server.URL)
	if err != nil {
		t.Fatal("Read failed:", err)
	}
	if content.Title != "A day at the lake" {
		t.Errorf("Unexpected title: %q", content.Title)
	}
	if content.Description != "Three friends, one rowboat and a storm." {
		t.Errorf("Unexpected description: %q", content.Description)
	}
	if content.VideoURL != "https://cdn.example.com/lake.mp4" {
		t.Errorf("Unexpected video URL: %q", content.VideoURL)
	}
}

func TestNoteReader_FallsBackToTitleTag(t *testing.T) {
	page := `<html><head><title> Fallback Title </title><meta property="og:description" content="desc"></head></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	reader := NewNoteReader(5*time.Second, testLogger{})

	content, err := reader.Read(context.Background(), server.URL)
	if err != nil {
		t.Fatal("Read failed:", err)
	}
	if content.Title != "Fallback Title" {
		t.Errorf("Unexpected title: %q", content.Title)
	}
	if content.Description != "desc" {
		t.Errorf("Unexpected description: %q", content.Description)
	}
}

func TestNoteReader_MissingPageIsContentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	reader := NewNoteReader(5*time.Second, testLogger{})

	_, err := reader.Read(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrContentNotFound) {
		t.Errorf("Expected ErrContentNotFound, got %v", err)
	}
	if domain.IsTransient(err) {
		t.Error("Expected a missing page not to be retried")
	}
}

func TestNoteReader_EmptyPageIsContentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer server.Close()

	reader := NewNoteReader(5*time.Second, testLogger{})

	_, err := reader.Read(context.Background(), server.URL)
	if !errors.Is(err, domain.ErrContentNotFound) {
		t.Errorf("Expected ErrContentNotFound, got %v", err)
	}
}

func TestNoteReader_ServerErrorIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	reader := NewNoteReader(5*time.Second, testLogger{})

	_, err := reader.Read(context.Background(), server.URL)
	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected a StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", statusErr.StatusCode)
	}
}
