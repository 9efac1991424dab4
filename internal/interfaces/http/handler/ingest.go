package handler

import (
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	appIngest "github.com/tubesage/backend/internal/application/ingest"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/interfaces/http/response"
)

// IngestHandler 摄取控制处理器
type IngestHandler struct {
	scheduler    *appIngest.Scheduler
	orchestrator *appIngest.Orchestrator
	logger       *slog.Logger
}

// NewIngestHandler 创建摄取控制处理器
func NewIngestHandler(scheduler *appIngest.Scheduler, orchestrator *appIngest.Orchestrator) *IngestHandler {
	return &IngestHandler{
		scheduler:    scheduler,
		orchestrator: orchestrator,
		logger:       log.NewModuleLogger("interfaces", "ingest_handler"),
	}
}

// TriggerResponse 触发扫描响应
type TriggerResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// StatusResponse 摄取状态响应
type StatusResponse struct {
	Running        bool                    `json:"running"`
	ParentCount    int                     `json:"parent_count"`
	ChunkCount     int                     `json:"chunk_count"`
	TotalProcessed int                     `json:"total_processed"`
	LastError      *transcript.IngestError `json:"last_error,omitempty"`
	StartedAt      string                  `json:"started_at,omitempty"`
	LastUpdated    string                  `json:"last_updated,omitempty"`
}

// Trigger 触发一次语料扫描
// POST /api/v1/ingest/trigger
func (h *IngestHandler) Trigger(c *gin.Context) {
	if h.scheduler.TriggerScan() {
		response.Success(c, &TriggerResponse{
			Triggered: true,
			Message:   "scan started",
		})
		return
	}

	response.Success(c, &TriggerResponse{
		Triggered: false,
		Message:   "scan already in progress",
	})
}

// Status 查询摄取状态
// GET /api/v1/ingest/status
func (h *IngestHandler) Status(c *gin.Context) {
	status, err := h.orchestrator.Status()
	if err != nil {
		h.logger.Error("failed to get ingest status", "error", err)
		response.Error(c, http.StatusInternalServerError, 300001, "获取摄取状态失败")
		return
	}

	resp := &StatusResponse{
		Running:        h.scheduler.IsRunning(),
		ParentCount:    status.ParentCount,
		ChunkCount:     status.ChunkCount,
		TotalProcessed: status.TotalProcessed,
		LastError:      status.LastError,
		StartedAt:      status.StartedAt,
		LastUpdated:    status.LastUpdated,
	}

	response.Success(c, resp)
}
