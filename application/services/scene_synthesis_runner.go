package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/DonxYu/Workflow/application/ports/inbound"
	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
	"github.com/DonxYu/Workflow/resilience"
)

const synthesisDependency = "synthesis"

// SceneSynthesisConfig carries the rendering parameters shared by every
// scene of a run.
type SceneSynthesisConfig struct {
	OutputDir  string
	Resolution string
	Style      string
	Motion     string
}

type sceneSynthesisRunner struct {
	logger        outbound.LoggerPort
	workerPool    outbound.TaskDispatcher
	synthesizer   outbound.SynthesizerPort
	downloader    outbound.ArtifactDownloaderPort
	artifactStore outbound.ArtifactStorePort
	limiter       *resilience.RateLimiter
	retrier       *resilience.Executor
	cfg           SceneSynthesisConfig
	now           func() time.Time
}

// RunnerOption overrides runner internals, used by tests.
type RunnerOption func(*sceneSynthesisRunner)

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *sceneSynthesisRunner) { r.now = now }
}

// NewSceneSynthesisRunner builds the per-scene synthesis driver.
// artifactStore may be nil, which disables mirroring.
func NewSceneSynthesisRunner(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	synthesizer outbound.SynthesizerPort, downloader outbound.ArtifactDownloaderPort,
	artifactStore outbound.ArtifactStorePort, limiter *resilience.RateLimiter,
	retrier *resilience.Executor, cfg SceneSynthesisConfig, opts ...RunnerOption) inbound.SceneSynthesisRunnerPort {
	r := &sceneSynthesisRunner{
		logger:        logger,
		workerPool:    workerPool,
		synthesizer:   synthesizer,
		downloader:    downloader,
		artifactStore: artifactStore,
		limiter:       limiter,
		retrier:       retrier,
		cfg:           cfg,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SynthesizeAll fans scenes out on the worker pool and reassembles the
// outcomes in the original scene order. One scene's failure never stops its
// siblings; a saturated pool degrades to synthesizing on the calling
// goroutine instead of parking on it.
func (r *sceneSynthesisRunner) SynthesizeAll(ctx context.Context, scenes []domain.Scene) []domain.SynthesisOutcome {
	outcomes := make([]domain.SynthesisOutcome, len(scenes))

	var wg sync.WaitGroup
	for i := range scenes {
		i := i
		scene := scenes[i]
		wg.Add(1)
		synthesize := func() {
			defer wg.Done()
			outcomes[i] = r.synthesizeScene(ctx, scene)
		}
		if err := r.workerPool.Submit(synthesize); err != nil {
			synthesize()
		}
	}
	wg.Wait()

	return outcomes
}

// synthesizeScene submits one scene, downloads the artifact and measures the
// whole round trip.
func (r *sceneSynthesisRunner) synthesizeScene(ctx context.Context, scene domain.Scene) domain.SynthesisOutcome {
	start := r.now()

	req := outbound.SynthesisRequest{
		Prompt:          buildScenePrompt(scene),
		DurationSeconds: scene.DurationSeconds,
		Resolution:      r.cfg.Resolution,
		Style:           r.cfg.Style,
		Motion:          r.cfg.Motion,
	}

	var videoURL string
	err := r.retrier.Run(ctx, func(ctx context.Context) error {
		if err := r.limiter.Acquire(ctx, synthesisDependency); err != nil {
			return err
		}
		url, err := r.synthesizer.Synthesize(ctx, req)
		if err != nil {
			return err
		}
		videoURL = url
		return nil
	})
	if err != nil {
		r.logger.ErrorWithFields(err, "scene synthesis failed", map[string]interface{}{
			"scene_id": scene.ID,
		})
		return failedOutcome(scene.ID, err)
	}

	videoPath, err := r.downloadArtifact(ctx, videoURL, scene.ID, start)
	if err != nil {
		r.logger.ErrorWithFields(err, "artifact download failed", map[string]interface{}{
			"scene_id":  scene.ID,
			"video_url": videoURL,
		})
		return failedOutcome(scene.ID, err)
	}

	r.mirrorArtifact(ctx, scene.ID, videoPath)

	return domain.SynthesisOutcome{
		SceneID:   scene.ID,
		Status:    domain.SynthesisSuccess,
		VideoURL:  videoURL,
		VideoPath: videoPath,
		Elapsed:   r.now().Sub(start),
	}
}

// downloadArtifact streams the rendered video to a collision-free local
// path: scene id plus a timestamp, so repeated runs never overwrite.
func (r *sceneSynthesisRunner) downloadArtifact(ctx context.Context, videoURL, sceneID string, start time.Time) (string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.mp4", sceneID, start.Format("20060102_150405"))
	videoPath := filepath.Join(r.cfg.OutputDir, filename)

	err := r.retrier.Run(ctx, func(ctx context.Context) error {
		if err := r.limiter.Acquire(ctx, synthesisDependency); err != nil {
			return err
		}
		return r.downloader.Download(ctx, videoURL, videoPath)
	})
	if err != nil {
		return "", err
	}
	return videoPath, nil
}

// mirrorArtifact copies the local artifact to object storage when a store is
// configured. Mirroring is best effort and never fails the outcome.
func (r *sceneSynthesisRunner) mirrorArtifact(ctx context.Context, sceneID, videoPath string) {
	if r.artifactStore == nil {
		return
	}
	key := fmt.Sprintf("scenes/%s/%s", sceneID, filepath.Base(videoPath))
	if _, err := r.artifactStore.Store(ctx, videoPath, key); err != nil {
		r.logger.WarnWithFields("artifact mirroring failed", map[string]interface{}{
			"scene_id": sceneID,
			"error":    err.Error(),
		})
	}
}

func failedOutcome(sceneID string, err error) domain.SynthesisOutcome {
	return domain.SynthesisOutcome{
		SceneID:      sceneID,
		Status:       domain.SynthesisFailed,
		ErrorMessage: err.Error(),
	}
}

func buildScenePrompt(scene domain.Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-second video scene.\n\n", scene.DurationSeconds)
	fmt.Fprintf(&b, "Title: %s\nDescription: %s\n\n", scene.Title, scene.Description)
	if len(scene.VisualElements) > 0 {
		fmt.Fprintf(&b, "Visual elements: %s\n", strings.Join(scene.VisualElements, ", "))
	}
	if scene.TextOverlay != "" {
		fmt.Fprintf(&b, "Text overlay: %s\n", scene.TextOverlay)
	}
	if scene.BackgroundMusic != "" {
		fmt.Fprintf(&b, "Background music: %s\n", scene.BackgroundMusic)
	}
	if scene.TransitionEffect != "" {
		fmt.Fprintf(&b, "Transition effect: %s\n", scene.TransitionEffect)
	}
	fmt.Fprintf(&b, "\nThe scene must run exactly %d seconds, with smooth motion, readable overlay text and a composition suited to short-form social video.", scene.DurationSeconds)
	return b.String()
}
