package main

import (
	"fmt"
	"time"

	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/application/services"
	"github.com/DonxYu/Workflow/config"
	"github.com/DonxYu/Workflow/domain"
	"github.com/DonxYu/Workflow/infrastructure/adapters"
	"github.com/DonxYu/Workflow/infrastructure/gin_interface/controllers"
	"github.com/DonxYu/Workflow/middleware"
	"github.com/DonxYu/Workflow/resilience"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	zeroLogger := adapters.NewZerologWrapper(cfg.Runtime.LogLevel)

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	// Nonblocking keeps a full pool from parking nested submits; callers
	// degrade to running the task inline instead.
	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler), ants.WithNonblocking(true))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))

	s3Client := s3.New(sess)
	dynamoClient := dynamodb.New(sess)

	contentFetcher := adapters.NewContentFetcher(cfg.Runtime.RequestTimeout, zeroLogger)

	noteSearcher := adapters.NewNoteSearcher(contentFetcher, cfg.Search, zeroLogger)
	noteReader := adapters.NewNoteReader(cfg.Runtime.RequestTimeout, zeroLogger)
	rewriter := adapters.NewRewriter(cfg.LLM, zeroLogger)
	storyboardGenerator := adapters.NewStoryboardGenerator(contentFetcher, cfg.LLM, zeroLogger)
	synthesizer := adapters.NewSynthesizer(contentFetcher, cfg.Synthesis, zeroLogger)
	artifactDownloader := adapters.NewArtifactDownloader(zeroLogger)
	recordStore := adapters.NewDynamoRecordStore(zeroLogger, dynamoClient)

	var artifactStore outbound.ArtifactStorePort
	if cfg.Storage.ArtifactBucket != "" {
		artifactStore = adapters.NewS3ArtifactStore(s3Client, cfg.Storage, zeroLogger)
	} else {
		zeroLogger.Info("ARTIFACT_BUCKET not set, artifact mirroring disabled")
	}

	limiter := resilience.NewRateLimiter(cfg.Runtime.RateLimitMax, cfg.Runtime.RateLimitWindow)
	retrier := resilience.NewExecutor(cfg.Runtime.MaxRetries, time.Second, 2.0,
		resilience.WithRetryIf(domain.IsTransient))

	storyboardDecomposer := services.NewStoryboardDecomposer(zeroLogger, storyboardGenerator, cfg.Video.SceneSeconds)

	sceneRunner := services.NewSceneSynthesisRunner(zeroLogger, workerPool, synthesizer,
		artifactDownloader, artifactStore, limiter, retrier, services.SceneSynthesisConfig{
			OutputDir:  cfg.Video.OutputDir,
			Resolution: cfg.Synthesis.Resolution,
			Style:      cfg.Synthesis.Style,
			Motion:     cfg.Synthesis.Motion,
		})

	orchestrator := services.NewPipelineOrchestrator(zeroLogger, workerPool, noteSearcher,
		noteReader, rewriter, storyboardDecomposer, sceneRunner, recordStore, limiter, retrier,
		services.OrchestratorConfig{
			NoteType:            cfg.Search.NoteType,
			Sort:                cfg.Search.Sort,
			TotalNumber:         cfg.Search.TotalNumber,
			SceneCount:          cfg.Video.SceneCount,
			RawCollection:       cfg.Storage.RawTable,
			ProcessedCollection: cfg.Storage.ProcessedTable,
			ItemConcurrency:     cfg.Runtime.ItemConcurrency,
		})

	runController := controllers.NewRunController(zeroLogger, workerPool, orchestrator)

	router := gin.Default()

	err = router.SetTrustedProxies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if cfg.Server.JWKSURL != "" {
		authHandler, err := middleware.NewAuthHandler(cfg.Server.JWKSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	runController.RegisterRoutes(router)

	err = router.Run(cfg.Server.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
