package controllers

import (
	"context"
	"io"

	"github.com/DonxYu/Workflow/application/ports/inbound"
	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
	"github.com/DonxYu/Workflow/infrastructure/gin_interface/dto"
	"github.com/DonxYu/Workflow/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RunController interface {
	StartRun(c *gin.Context)
	Health(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type runController struct {
	logger       outbound.LoggerPort
	workerPool   outbound.TaskDispatcher
	orchestrator inbound.PipelineOrchestratorPort
}

func NewRunController(
	logger outbound.LoggerPort,
	workerPool outbound.TaskDispatcher,
	orchestrator inbound.PipelineOrchestratorPort,
) RunController {
	return &runController{
		logger:       logger,
		workerPool:   workerPool,
		orchestrator: orchestrator,
	}
}

// StartRun launches a pipeline run and streams its progress events,
// followed by a final report, over server-sent events.
func (r *runController) StartRun(c *gin.Context) {
	var startRunRequest dto.StartRunRequest
	if err := c.ShouldBindJSON(&startRunRequest); err != nil {
		err = c.AbortWithError(400, err)
		if err != nil {
			r.logger.Error(err, "failed to abort with error")
		}
		return
	}

	newCtx, cancel := context.WithCancel(c)
	defer cancel()

	runID := uuid.NewString()
	events := make(chan domain.RunEvent, 16)
	reportCh := make(chan *domain.RunReport, 1)

	err := r.workerPool.Submit(func() {
		reportCh <- r.orchestrator.Run(newCtx, inbound.RunParams{
			RunID:   runID,
			Keyword: startRunRequest.Keyword,
			Events:  events,
		})
	})
	if err != nil {
		err = c.AbortWithError(500, err)
		if err != nil {
			r.logger.Error(err, "failed to abort with error")
		}
		return
	}

	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			c.SSEvent("report", <-reportCh)
			return false
		}
		c.SSEvent(string(event.Type), event)
		return true
	})
}

func (r *runController) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (r *runController) RegisterRoutes(g *gin.Engine) {
	g.POST("/runs", middleware.SSEMiddleware(), r.StartRun)
	g.GET("/health", r.Health)
}
