package handler

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	appQuery "github.com/tubesage/backend/internal/application/query"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/llm"
	"github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/interfaces/http/response"
)

// QueryHandler RAG 查询处理器
type QueryHandler struct {
	answerService *appQuery.AnswerService
	logger        *slog.Logger
}

// NewQueryHandler 创建查询处理器
func NewQueryHandler(answerService *appQuery.AnswerService) *QueryHandler {
	return &QueryHandler{
		answerService: answerService,
		logger:        log.NewModuleLogger("interfaces", "query_handler"),
	}
}

// QueryRequest 查询请求
type QueryRequest struct {
	Query   string        `json:"query" binding:"required"`
	Mode    string        `json:"mode,omitempty"`
	TopK    int           `json:"top_k,omitempty"`
	History []llm.Message `json:"history,omitempty"`
}

// QueryResponse 查询响应
type QueryResponse struct {
	Answer   string `json:"answer"`
	Citation string `json:"citation"`
}

// Query 执行检索增强问答
// POST /api/v1/rag/query
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, 200001, "请求参数无效", err.Error())
		return
	}

	mode := appQuery.ModeChunked
	if req.Mode != "" {
		parsed, err := appQuery.ParseMode(req.Mode)
		if err != nil {
			response.ErrorWithDetail(c, http.StatusBadRequest, 200002, "检索模式无效", err.Error())
			return
		}
		mode = parsed
	}

	answer, err := h.answerService.Query(c.Request.Context(), req.Query, mode, req.TopK, req.History)
	if err != nil {
		if errors.Is(err, transcript.ErrNoResults) {
			response.Success(c, &QueryResponse{
				Answer:   "No relevant transcript content was found for this question.",
				Citation: "",
			})
			return
		}
		h.logger.Error("failed to answer query", "error", err)
		response.Error(c, http.StatusInternalServerError, 200003, "查询失败")
		return
	}

	response.Success(c, &QueryResponse{
		Answer:   answer.Answer,
		Citation: answer.Citation,
	})
}
