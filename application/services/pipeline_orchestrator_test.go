package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DonxYu/Workflow/application/ports/inbound"
	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
	"github.com/panjf2000/ants/v2"
)

func testItems(urls ...string) []domain.SourceItem {
	items := make([]domain.SourceItem, len(urls))
	for i, url := range urls {
		items[i] = domain.SourceItem{
			ID:         url,
			Title:      "note " + url,
			URL:        url,
			AuthorName: "author",
			LikedCount: "12",
		}
	}
	return items
}

type orchestratorFixture struct {
	searcher   *fakeSearcher
	reader     *fakeReader
	rewriter   *fakeRewriter
	decomposer *fakeDecomposer
	runner     *fakeSceneRunner
	records    *fakeRecordStore
}

func newOrchestrator(t *testing.T, f *orchestratorFixture) inbound.PipelineOrchestratorPort {
	t.Helper()
	workerPool, err := ants.NewPool(20)
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)

	return NewPipelineOrchestrator(nopLogger{}, workerPool, f.searcher, f.reader, f.rewriter,
		f.decomposer, f.runner, f.records, testLimiter(), testRetrier(0), OrchestratorConfig{
			NoteType:            2,
			Sort:                2,
			TotalNumber:         5,
			SceneCount:          3,
			RawCollection:       "raw_notes",
			ProcessedCollection: "processed_notes",
			ItemConcurrency:     2,
		})
}

func happyFixture(urls ...string) *orchestratorFixture {
	byURL := make(map[string]*domain.RetrievedContent)
	for _, url := range urls {
		byURL[url] = &domain.RetrievedContent{Title: "t", Description: "original " + url}
	}
	return &orchestratorFixture{
		searcher:   &fakeSearcher{items: testItems(urls...)},
		reader:     &fakeReader{byURL: byURL},
		rewriter:   &fakeRewriter{text: "rewritten story"},
		decomposer: &fakeDecomposer{scenes: []domain.Scene{{ID: "scene_1"}, {ID: "scene_2"}, {ID: "scene_3"}}},
		runner:     &fakeSceneRunner{},
		records:    &fakeRecordStore{},
	}
}

func TestPipelineOrchestrator_ProcessesAllItems(t *testing.T) {
	fixture := happyFixture("n1", "n2")
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if !report.Success {
		t.Error("Expected a successful run:", report.Message)
	}
	if len(report.Items) != 2 {
		t.Fatalf("Expected 2 item outcomes, got %d", len(report.Items))
	}
	for i, outcome := range report.Items {
		if outcome.State != domain.StatePersisted {
			t.Errorf("Item %d: expected persisted, got %s", i, outcome.State)
		}
	}
	if report.TotalScenes != 6 || report.SuccessfulScenes != 6 || report.FailedScenes != 0 {
		t.Errorf("Unexpected scene totals: %d/%d/%d",
			report.TotalScenes, report.SuccessfulScenes, report.FailedScenes)
	}
	if got := len(fixture.records.inserted("raw_notes")); got != 2 {
		t.Errorf("Expected 2 raw records, got %d", got)
	}
	if got := len(fixture.records.inserted("processed_notes")); got != 2 {
		t.Errorf("Expected 2 processed records, got %d", got)
	}
}

func TestPipelineOrchestrator_IsolatesItemFailures(t *testing.T) {
	fixture := happyFixture("n1", "n2", "n3")
	fixture.reader.errURLs = map[string]error{"n2": errors.New("fetch refused")}
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if !report.Success {
		t.Error("Expected the run to succeed despite one skipped item:", report.Message)
	}
	skipped := report.Items[1]
	if !skipped.Skipped() {
		t.Fatalf("Expected item 2 to be skipped, got %s", skipped.State)
	}
	if skipped.SkippedStage != domain.StageFetch {
		t.Errorf("Expected skip at fetch, got %s", skipped.SkippedStage)
	}
	if skipped.SkipReason == "" {
		t.Error("Expected a skip reason")
	}
	for _, i := range []int{0, 2} {
		if report.Items[i].Skipped() {
			t.Errorf("Expected item %d to be processed", i+1)
		}
	}
	if !strings.Contains(report.Message, "processed 2 of 3 notes (1 skipped)") {
		t.Errorf("Unexpected report message: %s", report.Message)
	}
}

func TestPipelineOrchestrator_SkipsOnEmptyRewrite(t *testing.T) {
	fixture := happyFixture("n1")
	fixture.rewriter.text = ""
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if report.Success {
		t.Error("Expected failure when every item is skipped")
	}
	if report.Items[0].SkippedStage != domain.StageRewrite {
		t.Errorf("Expected skip at rewrite, got %s", report.Items[0].SkippedStage)
	}
}

func TestPipelineOrchestrator_SkipsOnEmptyStoryboard(t *testing.T) {
	fixture := happyFixture("n1")
	fixture.decomposer.scenes = nil
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if report.Items[0].SkippedStage != domain.StageDecompose {
		t.Errorf("Expected skip at decompose, got %s", report.Items[0].SkippedStage)
	}
}

func TestPipelineOrchestrator_CountsFailedScenes(t *testing.T) {
	fixture := happyFixture("n1", "n2")
	fixture.runner.outcomes = []domain.SynthesisOutcome{
		{SceneID: "scene_1", Status: domain.SynthesisSuccess},
		{SceneID: "scene_2", Status: domain.SynthesisSuccess},
		{SceneID: "scene_3", Status: domain.SynthesisFailed, ErrorMessage: "render rejected"},
	}
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if report.TotalScenes != 6 {
		t.Errorf("Expected 6 scenes total, got %d", report.TotalScenes)
	}
	if report.SuccessfulScenes != 4 || report.FailedScenes != 2 {
		t.Errorf("Expected 4 successful and 2 failed scenes, got %d and %d",
			report.SuccessfulScenes, report.FailedScenes)
	}
}

func TestPipelineOrchestrator_PersistenceFailureDowngradesState(t *testing.T) {
	fixture := happyFixture("n1")
	fixture.records.err = errors.New("table unavailable")
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if !report.Success {
		t.Error("Expected persistence failure not to fail the run")
	}
	outcome := report.Items[0]
	if outcome.State != domain.StateSynthesized {
		t.Errorf("Expected synthesized state, got %s", outcome.State)
	}
	if outcome.Result.RawSaved || outcome.Result.ProcessedSaved {
		t.Error("Expected both persistence flags to be false")
	}
}

func TestPipelineOrchestrator_DiscoveryFailureEndsRun(t *testing.T) {
	fixture := happyFixture()
	fixture.searcher.err = errors.New("search unavailable")
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if report.Success {
		t.Error("Expected a failed run on discovery error")
	}
	if !strings.Contains(report.Message, "discovery failed") {
		t.Errorf("Unexpected message: %s", report.Message)
	}
	if len(report.Items) != 0 {
		t.Errorf("Expected no item outcomes, got %d", len(report.Items))
	}
}

func TestPipelineOrchestrator_NoItemsFound(t *testing.T) {
	fixture := happyFixture()
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if report.Success {
		t.Error("Expected a failed run when nothing is found")
	}
	if report.Message != "no notes found" {
		t.Errorf("Unexpected message: %s", report.Message)
	}
}

func TestPipelineOrchestrator_RecoversItemPanic(t *testing.T) {
	fixture := happyFixture("n1", "n2")
	fixture.reader.byURL["n2"] = nil // nil content panics inside the item worker
	orchestrator := newOrchestrator(t, fixture)

	report := orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel"})

	if !report.Success {
		t.Error("Expected the run to survive an item panic:", report.Message)
	}
	if !report.Items[1].Skipped() {
		t.Errorf("Expected the panicking item to be skipped, got %s", report.Items[1].State)
	}
	if !strings.Contains(report.Items[1].SkipReason, "panicked") {
		t.Errorf("Expected a panic skip reason, got %q", report.Items[1].SkipReason)
	}
}

func TestPipelineOrchestrator_EmitsProgressEvents(t *testing.T) {
	fixture := happyFixture("n1", "n2")
	fixture.reader.errURLs = map[string]error{"n2": errors.New("fetch refused")}
	orchestrator := newOrchestrator(t, fixture)

	events := make(chan domain.RunEvent, 32)
	done := make(chan []domain.RunEvent, 1)
	go func() {
		var collected []domain.RunEvent
		for ev := range events {
			collected = append(collected, ev)
		}
		done <- collected
	}()

	orchestrator.Run(context.Background(), inbound.RunParams{RunID: "run-1", Keyword: "travel", Events: events})
	collected := <-done

	counts := make(map[domain.EventType]int)
	for _, ev := range collected {
		counts[ev.Type]++
		if ev.RunID != "run-1" {
			t.Errorf("Unexpected run id on event: %+v", ev)
		}
	}
	if counts[domain.EventItemStarted] != 2 {
		t.Errorf("Expected 2 item_started events, got %d", counts[domain.EventItemStarted])
	}
	if counts[domain.EventItemCompleted] != 1 {
		t.Errorf("Expected 1 item_completed event, got %d", counts[domain.EventItemCompleted])
	}
	if counts[domain.EventItemSkipped] != 1 {
		t.Errorf("Expected 1 item_skipped event, got %d", counts[domain.EventItemSkipped])
	}
	if counts[domain.EventRunCompleted] != 1 {
		t.Errorf("Expected 1 run_completed event, got %d", counts[domain.EventRunCompleted])
	}
	if collected[len(collected)-1].Type != domain.EventRunCompleted {
		t.Errorf("Expected run_completed last, got %s", collected[len(collected)-1].Type)
	}
}

func TestPipelineOrchestrator_CompletesOnSmallWorkerPool(t *testing.T) {
	// Item, scene and event-forwarding tasks all land on one shared
	// pool. With three items queued against two workers the run must
	// still finish: saturated submits degrade to inline execution
	// instead of parking on the pool.
	workerPool, err := ants.NewPool(2, ants.WithNonblocking(true))
	if err != nil {
		t.Fatal("Failed to create worker pool:", err)
	}
	t.Cleanup(workerPool.Release)

	fixture := happyFixture("n1", "n2", "n3")
	sceneRunner := NewSceneSynthesisRunner(nopLogger{}, workerPool, &fakeSynthesizer{}, &fakeDownloader{}, nil,
		testLimiter(), testRetrier(0), SceneSynthesisConfig{OutputDir: t.TempDir()})
	orchestrator := NewPipelineOrchestrator(nopLogger{}, workerPool, fixture.searcher, fixture.reader,
		fixture.rewriter, fixture.decomposer, sceneRunner, fixture.records, testLimiter(), testRetrier(0),
		OrchestratorConfig{
			NoteType:            2,
			Sort:                2,
			TotalNumber:         5,
			SceneCount:          3,
			RawCollection:       "raw_notes",
			ProcessedCollection: "processed_notes",
			ItemConcurrency:     1,
		})

	events := make(chan domain.RunEvent, 64)
	go func() {
		for range events {
		}
	}()

	done := make(chan *domain.RunReport, 1)
	go func() {
		done <- orchestrator.Run(context.Background(),
			inbound.RunParams{RunID: "run-1", Keyword: "travel", Events: events})
	}()

	select {
	case report := <-done:
		if !report.Success {
			t.Error("Expected a successful run:", report.Message)
		}
		if len(report.Items) != 3 {
			t.Fatalf("Expected 3 item outcomes, got %d", len(report.Items))
		}
		for i, outcome := range report.Items {
			if outcome.State != domain.StatePersisted {
				t.Errorf("Item %d: expected persisted, got %s", i, outcome.State)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish on a saturated worker pool")
	}
}

func TestTruncateForTitle(t *testing.T) {
	long := strings.Repeat("段", titleFieldLimit+100)
	truncated := truncateForTitle(long)
	runes := []rune(truncated)
	if len(runes) != titleFieldLimit {
		t.Errorf("Expected %d runes, got %d", titleFieldLimit, len(runes))
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Error("Expected an ellipsis suffix")
	}

	short := "short text"
	if truncateForTitle(short) != short {
		t.Error("Expected short text to pass through unchanged")
	}
}

var _ outbound.NoteSearcherPort = (*fakeSearcher)(nil)
