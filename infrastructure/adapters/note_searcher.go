package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/config"
	"github.com/DonxYu/Workflow/domain"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type searchResponse struct {
	Data struct {
		Items []searchItem `json:"items"`
	} `json:"data"`
}

type searchItem struct {
	NoteID       string `json:"note_id"`
	DisplayTitle string `json:"note_display_title"`
	NoteURL      string `json:"note_url"`
	Author       struct {
		NickName string `json:"nick_name"`
		UserID   string `json:"user_id"`
		Avatar   string `json:"avatar"`
		HomePage string `json:"home_page_url"`
	} `json:"author"`
	LikedCount string `json:"liked_count"`
	Cover      struct {
		URL    string `json:"url_default"`
		Width  string `json:"width"`
		Height string `json:"height"`
	} `json:"cover"`
	ModelType string `json:"model_type"`
	CardType  string `json:"card_type"`
	XsecToken string `json:"xsec_token"`
	Liked     bool   `json:"liked"`
	HasVideo  bool   `json:"has_video"`
}

type noteSearcher struct {
	fetcher      ContentFetcher
	logger       outbound.LoggerPort
	searchConfig *config.SearchConfig
}

func NewNoteSearcher(fetcher ContentFetcher, searchConfig *config.SearchConfig, logger outbound.LoggerPort) outbound.NoteSearcherPort {
	return &noteSearcher{
		fetcher:      fetcher,
		logger:       logger,
		searchConfig: searchConfig,
	}
}

func (s *noteSearcher) Search(ctx context.Context, query outbound.SearchQuery) ([]domain.SourceItem, error) {
	req, err := s.buildRequest(ctx, query)
	if err != nil {
		s.logger.Error(err, "Failed to create the search request")
		return nil, err
	}

	payload, err := s.fetcher.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		s.logger.Error(err, "Failed to unmarshal the search response")
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]domain.SourceItem, 0, len(parsed.Data.Items))
	for _, entry := range parsed.Data.Items {
		items = append(items, domain.SourceItem{
			ID:             entry.NoteID,
			Title:          entry.DisplayTitle,
			URL:            entry.NoteURL,
			AuthorName:     entry.Author.NickName,
			AuthorID:       entry.Author.UserID,
			AuthorAvatar:   entry.Author.Avatar,
			AuthorHomePage: entry.Author.HomePage,
			LikedCount:     entry.LikedCount,
			CoverURL:       entry.Cover.URL,
			CoverWidth:     entry.Cover.Width,
			CoverHeight:    entry.Cover.Height,
			ModelType:      entry.ModelType,
			CardType:       entry.CardType,
			XsecToken:      entry.XsecToken,
			Liked:          entry.Liked,
			HasVideo:       entry.HasVideo,
		})
		if len(items) == query.Limit {
			break
		}
	}

	s.logger.InfoWithFields("note search complete", map[string]interface{}{
		"keyword": query.Keyword,
		"items":   len(items),
	})
	return items, nil
}

func (s *noteSearcher) buildRequest(ctx context.Context, query outbound.SearchQuery) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/api/sns/web/v1/search/notes", s.searchConfig.BaseURL)

	params := url.Values{}
	params.Set("keyword", query.Keyword)
	params.Set("note_type", strconv.Itoa(query.NoteType))
	params.Set("sort", strconv.Itoa(query.Sort))
	params.Set("page_size", strconv.Itoa(query.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Cookie", s.searchConfig.Cookie)
	req.Header.Set("Referer", s.searchConfig.BaseURL+"/")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	return req, nil
}
