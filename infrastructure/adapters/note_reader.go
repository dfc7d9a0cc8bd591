package adapters

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
)

type noteReader struct {
	client *http.Client
	logger outbound.LoggerPort
}

func NewNoteReader(timeout time.Duration, logger outbound.LoggerPort) outbound.NoteReaderPort {
	return &noteReader{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Read fetches a note page and extracts its title, description and optional
// video URL from the page metadata. A missing page yields
// domain.ErrContentNotFound rather than an HTTP failure.
func (r *noteReader) Read(ctx context.Context, noteURL string) (*domain.RetrievedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, noteURL, nil)
	if err != nil {
		r.logger.Error(err, "Failed to create the note page request")
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	res, err := r.client.Do(req)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to fetch the note page", map[string]interface{}{
			"note_url": noteURL,
		})
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone {
		return nil, domain.ErrContentNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &domain.StatusError{StatusCode: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to parse the note page", map[string]interface{}{
			"note_url": noteURL,
		})
		return nil, err
	}

	content := extractContent(doc)
	if content.Title == "" && content.Description == "" {
		return nil, domain.ErrContentNotFound
	}
	return content, nil
}

func extractContent(doc *goquery.Document) *domain.RetrievedContent {
	content := &domain.RetrievedContent{}

	content.Title = metaContent(doc, `meta[property="og:title"]`)
	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	content.Description = metaContent(doc, `meta[name="description"]`)
	if content.Description == "" {
		content.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	content.VideoURL = metaContent(doc, `meta[property="og:video"]`)

	return content
}

func metaContent(doc *goquery.Document, selector string) string {
	value, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(value)
}
