package services

import (
	"context"
	"sync"
	"time"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
	"github.com/DonxYu/Workflow/resilience"
)

type nopLogger struct{}

func (nopLogger) Info(string)                                        {}
func (nopLogger) InfoWithFields(string, map[string]interface{})      {}
func (nopLogger) Error(error, string)                                {}
func (nopLogger) ErrorWithFields(error, string, map[string]interface{}) {
}
func (nopLogger) Debug(string)                                   {}
func (nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (nopLogger) Warn(string)                                    {}
func (nopLogger) WarnWithFields(string, map[string]interface{})  {}

func noSleep(ctx context.Context, d time.Duration) error {
	return nil
}

func testLimiter() *resilience.RateLimiter {
	return resilience.NewRateLimiter(1000, time.Minute, resilience.WithLimiterSleeper(noSleep))
}

func testRetrier(maxRetries int) *resilience.Executor {
	return resilience.NewExecutor(maxRetries, time.Millisecond, 2.0,
		resilience.WithExecutorSleeper(noSleep))
}

type fakeSearcher struct {
	items []domain.SourceItem
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, query outbound.SearchQuery) ([]domain.SourceItem, error) {
	return f.items, f.err
}

type fakeReader struct {
	mu      sync.Mutex
	byURL   map[string]*domain.RetrievedContent
	errURLs map[string]error
	calls   int
}

func (f *fakeReader) Read(ctx context.Context, noteURL string) (*domain.RetrievedContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errURLs[noteURL]; ok {
		return nil, err
	}
	return f.byURL[noteURL], nil
}

type fakeRewriter struct {
	text string
	err  error
}

func (f *fakeRewriter) Rewrite(ctx context.Context, content string) (string, error) {
	return f.text, f.err
}

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type fakeDecomposer struct {
	scenes []domain.Scene
	err    error
}

func (f *fakeDecomposer) Decompose(ctx context.Context, content string, sceneCount int) ([]domain.Scene, error) {
	return f.scenes, f.err
}

type fakeSceneRunner struct {
	outcomes []domain.SynthesisOutcome
}

func (f *fakeSceneRunner) SynthesizeAll(ctx context.Context, scenes []domain.Scene) []domain.SynthesisOutcome {
	if f.outcomes != nil {
		return f.outcomes
	}
	outcomes := make([]domain.SynthesisOutcome, len(scenes))
	for i, s := range scenes {
		outcomes[i] = domain.SynthesisOutcome{SceneID: s.ID, Status: domain.SynthesisSuccess}
	}
	return outcomes
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string][]domain.Record
	err     error
}

func (f *fakeRecordStore) Insert(ctx context.Context, collection string, record domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.records == nil {
		f.records = make(map[string][]domain.Record)
	}
	f.records[collection] = append(f.records[collection], record)
	return nil
}

func (f *fakeRecordStore) inserted(collection string) []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[collection]
}
