package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DonxYu/Workflow/application/ports/inbound"
	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/channel_utils"
	"github.com/DonxYu/Workflow/domain"
	"github.com/DonxYu/Workflow/resilience"
	"github.com/DonxYu/Workflow/timing"
)

const (
	searchDependency      = "search"
	contentDependency     = "content"
	llmDependency         = "llm"
	persistenceDependency = "persistence"

	// titleFieldLimit is the record store's cap on title field length.
	titleFieldLimit = 2000
)

// OrchestratorConfig carries the run-shaping parameters the orchestrator
// needs beyond its collaborators.
type OrchestratorConfig struct {
	NoteType            int
	Sort                int
	TotalNumber         int
	SceneCount          int
	RawCollection       string
	ProcessedCollection string
	ItemConcurrency     int
}

type pipelineOrchestrator struct {
	logger      outbound.LoggerPort
	workerPool  outbound.TaskDispatcher
	searcher    outbound.NoteSearcherPort
	reader      outbound.NoteReaderPort
	rewriter    outbound.RewriterPort
	decomposer  inbound.StoryboardDecomposerPort
	sceneRunner inbound.SceneSynthesisRunnerPort
	records     outbound.RecordStorePort
	limiter     *resilience.RateLimiter
	retrier     *resilience.Executor
	cfg         OrchestratorConfig
}

func NewPipelineOrchestrator(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	searcher outbound.NoteSearcherPort, reader outbound.NoteReaderPort, rewriter outbound.RewriterPort,
	decomposer inbound.StoryboardDecomposerPort, sceneRunner inbound.SceneSynthesisRunnerPort,
	records outbound.RecordStorePort, limiter *resilience.RateLimiter, retrier *resilience.Executor,
	cfg OrchestratorConfig) inbound.PipelineOrchestratorPort {
	if cfg.ItemConcurrency < 1 {
		cfg.ItemConcurrency = 1
	}
	return &pipelineOrchestrator{
		logger:      logger,
		workerPool:  workerPool,
		searcher:    searcher,
		reader:      reader,
		rewriter:    rewriter,
		decomposer:  decomposer,
		sceneRunner: sceneRunner,
		records:     records,
		limiter:     limiter,
		retrier:     retrier,
		cfg:         cfg,
	}
}

// Run discovers items for the keyword and drives each through the stage
// sequence. Items are isolated from each other: a failure, timeout or panic
// in one item never aborts the rest, and Run always returns a report.
func (o *pipelineOrchestrator) Run(ctx context.Context, params inbound.RunParams) *domain.RunReport {
	if params.Events != nil {
		defer close(params.Events)
	}

	monitor := timing.NewMonitor()
	monitor.Start()

	report := &domain.RunReport{RunID: params.RunID, Keyword: params.Keyword}

	items, err := o.discover(ctx, params.Keyword)
	monitor.Checkpoint("discovery")
	if err != nil {
		report.Message = fmt.Sprintf("discovery failed: %v", err)
		o.finishRun(ctx, params, report, monitor)
		return report
	}
	if len(items) == 0 {
		report.Message = "no notes found"
		o.finishRun(ctx, params, report, monitor)
		return report
	}
	o.logger.InfoWithFields("discovery complete", map[string]interface{}{
		"run_id":  params.RunID,
		"keyword": params.Keyword,
		"items":   len(items),
	})

	report.Items = o.processItems(ctx, params, items)
	monitor.Checkpoint("items_processed")

	o.aggregate(report)
	monitor.Checkpoint("aggregation")

	o.finishRun(ctx, params, report, monitor)
	return report
}

func (o *pipelineOrchestrator) discover(ctx context.Context, keyword string) ([]domain.SourceItem, error) {
	var items []domain.SourceItem
	err := o.callStage(ctx, searchDependency, func(ctx context.Context) error {
		found, err := o.searcher.Search(ctx, outbound.SearchQuery{
			Keyword:  keyword,
			NoteType: o.cfg.NoteType,
			Sort:     o.cfg.Sort,
			Limit:    o.cfg.TotalNumber,
		})
		if err != nil {
			return err
		}
		items = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(items) > o.cfg.TotalNumber {
		items = items[:o.cfg.TotalNumber]
	}
	return items, nil
}

// processItems fans items out up to the configured concurrency and collects
// outcomes in discovery order. Per-item progress events flow through one
// channel per item, merged into the caller's channel.
func (o *pipelineOrchestrator) processItems(ctx context.Context, params inbound.RunParams, items []domain.SourceItem) []domain.ItemOutcome {
	outcomes := make([]domain.ItemOutcome, len(items))
	eventChannels := make([]<-chan domain.RunEvent, 0, len(items))
	sem := make(chan struct{}, o.cfg.ItemConcurrency)

	var wg sync.WaitGroup
	for i := range items {
		i := i
		item := items[i]

		var itemEvents chan domain.RunEvent
		if params.Events != nil {
			// Capacity covers every event one item can emit, so an item
			// never blocks on its own channel before the merge starts.
			itemEvents = make(chan domain.RunEvent, 4)
			eventChannels = append(eventChannels, itemEvents)
		}

		// The slot is taken before the submit so parked item tasks never
		// hold more than ItemConcurrency pool workers; nested scene and
		// forwarder tasks keep finding capacity.
		sem <- struct{}{}
		process := func() {
			defer wg.Done()
			defer func() { <-sem }()
			if itemEvents != nil {
				defer close(itemEvents)
			}
			outcomes[i] = o.processItemGuarded(ctx, params.RunID, item, itemEvents)
		}
		wg.Add(1)
		if err := o.workerPool.Submit(process); err != nil {
			// Saturated pool: process on this goroutine instead.
			process()
		}
	}

	if params.Events != nil && len(eventChannels) > 0 {
		merged := channel_utils.MergeChannels(o.workerPool, eventChannels...)
		for ev := range merged {
			select {
			case params.Events <- ev:
			case <-ctx.Done():
				// Keep draining so item workers can finish.
			}
		}
	}
	wg.Wait()

	return outcomes
}

// processItemGuarded is the per-item error boundary: a panic inside one
// item's stages becomes a skip record instead of taking down the run.
func (o *pipelineOrchestrator) processItemGuarded(ctx context.Context, runID string, item domain.SourceItem, events chan<- domain.RunEvent) (outcome domain.ItemOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("item processing panicked: %v", r)
			o.logger.ErrorWithFields(err, "recovered item panic", map[string]interface{}{
				"run_id":  runID,
				"note_id": item.ID,
			})
			outcome = skipOutcome(item, domain.StageFetch, err)
		}
	}()
	return o.processItem(ctx, runID, item, events)
}

func (o *pipelineOrchestrator) processItem(ctx context.Context, runID string, item domain.SourceItem, events chan<- domain.RunEvent) domain.ItemOutcome {
	o.emit(ctx, events, domain.RunEvent{RunID: runID, Type: domain.EventItemStarted, NoteID: item.ID})

	skip := func(stage domain.Stage, err error) domain.ItemOutcome {
		o.logger.WarnWithFields("item skipped", map[string]interface{}{
			"run_id":  runID,
			"note_id": item.ID,
			"stage":   string(stage),
			"reason":  err.Error(),
		})
		o.emit(ctx, events, domain.RunEvent{
			RunID:   runID,
			Type:    domain.EventItemSkipped,
			NoteID:  item.ID,
			Stage:   stage,
			Message: err.Error(),
		})
		return skipOutcome(item, stage, err)
	}

	var content *domain.RetrievedContent
	err := o.callStage(ctx, contentDependency, func(ctx context.Context) error {
		fetched, err := o.reader.Read(ctx, item.URL)
		if err != nil {
			return err
		}
		content = fetched
		return nil
	})
	if err != nil {
		return skip(domain.StageFetch, err)
	}

	var rewritten string
	err = o.callStage(ctx, llmDependency, func(ctx context.Context) error {
		text, err := o.rewriter.Rewrite(ctx, content.Description)
		if err != nil {
			return err
		}
		rewritten = text
		return nil
	})
	if err != nil {
		return skip(domain.StageRewrite, err)
	}
	if rewritten == "" {
		return skip(domain.StageRewrite, fmt.Errorf("rewrite produced empty text"))
	}

	var scenes []domain.Scene
	err = o.callStage(ctx, llmDependency, func(ctx context.Context) error {
		decomposed, err := o.decomposer.Decompose(ctx, rewritten, o.cfg.SceneCount)
		if err != nil {
			return err
		}
		scenes = decomposed
		return nil
	})
	if err != nil {
		return skip(domain.StageDecompose, err)
	}
	if len(scenes) == 0 {
		return skip(domain.StageDecompose, fmt.Errorf("storyboard produced no scenes"))
	}

	synthesisOutcomes := o.sceneRunner.SynthesizeAll(ctx, scenes)

	rawSaved := o.persistRecord(ctx, o.cfg.RawCollection, rawNoteRecord(item))
	processedSaved := o.persistRecord(ctx, o.cfg.ProcessedCollection, processedNoteRecord(rewritten))

	state := domain.StateSynthesized
	if rawSaved && processedSaved {
		state = domain.StatePersisted
	}

	o.emit(ctx, events, domain.RunEvent{
		RunID:   runID,
		Type:    domain.EventItemCompleted,
		NoteID:  item.ID,
		Message: fmt.Sprintf("%d scenes synthesized", len(scenes)),
	})

	return domain.ItemOutcome{
		Item:  item,
		State: state,
		Result: &domain.ItemResult{
			Item:           item,
			RewrittenText:  rewritten,
			Scenes:         scenes,
			Outcomes:       synthesisOutcomes,
			RawSaved:       rawSaved,
			ProcessedSaved: processedSaved,
		},
	}
}

// callStage is the single place retry and rate-limit policy is applied to a
// stage call. The limiter is acquired inside the retried operation so every
// attempt is admitted separately.
func (o *pipelineOrchestrator) callStage(ctx context.Context, dependency string, op func(ctx context.Context) error) error {
	return o.retrier.Run(ctx, func(ctx context.Context) error {
		if err := o.limiter.Acquire(ctx, dependency); err != nil {
			return err
		}
		return op(ctx)
	})
}

func (o *pipelineOrchestrator) persistRecord(ctx context.Context, collection string, record domain.Record) bool {
	err := o.callStage(ctx, persistenceDependency, func(ctx context.Context) error {
		return o.records.Insert(ctx, collection, record)
	})
	if err != nil {
		o.logger.ErrorWithFields(err, "failed to persist record", map[string]interface{}{
			"collection": collection,
		})
		return false
	}
	return true
}

func (o *pipelineOrchestrator) aggregate(report *domain.RunReport) {
	var processed, skipped int
	for _, outcome := range report.Items {
		if outcome.Skipped() {
			skipped++
			continue
		}
		processed++
		report.TotalScenes += len(outcome.Result.Scenes)
		for _, s := range outcome.Result.Outcomes {
			if s.Status == domain.SynthesisSuccess {
				report.SuccessfulScenes++
			} else {
				report.FailedScenes++
			}
		}
	}
	report.Success = processed > 0
	report.Message = fmt.Sprintf("processed %d of %d notes (%d skipped); %d scenes: %d videos generated, %d failed",
		processed, len(report.Items), skipped, report.TotalScenes, report.SuccessfulScenes, report.FailedScenes)
}

func (o *pipelineOrchestrator) finishRun(ctx context.Context, params inbound.RunParams, report *domain.RunReport, monitor *timing.Monitor) {
	fields := map[string]interface{}{
		"run_id":  params.RunID,
		"success": report.Success,
		"message": report.Message,
	}
	for name, d := range monitor.Summary() {
		fields[name] = d.String()
	}
	o.logger.InfoWithFields("run finished", fields)

	o.emit(ctx, params.Events, domain.RunEvent{
		RunID:   params.RunID,
		Type:    domain.EventRunCompleted,
		Message: report.Message,
	})
}

func (o *pipelineOrchestrator) emit(ctx context.Context, events chan<- domain.RunEvent, ev domain.RunEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

func skipOutcome(item domain.SourceItem, stage domain.Stage, err error) domain.ItemOutcome {
	return domain.ItemOutcome{
		Item:         item,
		State:        domain.StateSkipped,
		SkippedStage: stage,
		SkipReason:   err.Error(),
	}
}

// rawNoteRecord captures the discovered note exactly as found.
func rawNoteRecord(item domain.SourceItem) domain.Record {
	title := item.Title
	if title == "" {
		title = "untitled"
	}
	author := item.AuthorName
	if author == "" {
		author = "unknown"
	}
	likes := item.LikedCount
	if likes == "" {
		likes = "0"
	}
	return domain.Record{Fields: []domain.RecordField{
		domain.TitleField("note_display_title", title),
		domain.TextField("author_nick_name", author),
		domain.TextField("note_liked_count", likes),
		domain.LinkField("note_url", item.URL),
		domain.DateField("created_date", nowDate()),
	}}
}

// processedNoteRecord stores the rewritten derivative.
func processedNoteRecord(rewritten string) domain.Record {
	return domain.Record{Fields: []domain.RecordField{
		domain.TitleField("Content", truncateForTitle(rewritten)),
		domain.DateField("Date", nowDate()),
	}}
}

func truncateForTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleFieldLimit {
		return text
	}
	return string(runes[:titleFieldLimit-3]) + "..."
}

func nowDate() time.Time {
	return time.Now()
}
