package handler

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	appQuery "github.com/tubesage/backend/internal/application/query"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/interfaces/http/response"
)

// VideoHandler 视频目录处理器
type VideoHandler struct {
	catalog *appQuery.CatalogService
	logger  *slog.Logger
}

// NewVideoHandler 创建视频目录处理器
func NewVideoHandler(catalog *appQuery.CatalogService) *VideoHandler {
	return &VideoHandler{
		catalog: catalog,
		logger:  log.NewModuleLogger("interfaces", "video_handler"),
	}
}

// VideoDTO 视频列表项 DTO
type VideoDTO struct {
	MDID     string `json:"md_id"`
	Filename string `json:"filename"`
}

// KeywordDTO 关键词聚合项 DTO
type KeywordDTO struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// MetadataDTO 视频元数据 DTO
type MetadataDTO struct {
	MDID     string `json:"md_id"`
	Summary  string `json:"summary"`
	Keywords string `json:"keywords"`
}

// List 获取全部视频列表
// GET /api/v1/videos
func (h *VideoHandler) List(c *gin.Context) {
	docs, err := h.catalog.ListDocuments()
	if err != nil {
		h.logger.Error("failed to list videos", "error", err)
		response.Error(c, http.StatusInternalServerError, 100001, "获取视频列表失败")
		return
	}

	dtos := make([]*VideoDTO, 0, len(docs))
	for _, doc := range docs {
		dtos = append(dtos, &VideoDTO{
			MDID:     doc.MDID,
			Filename: doc.Filename,
		})
	}

	response.Success(c, dtos)
}

// Keywords 获取全部关键词聚合
// GET /api/v1/keywords
func (h *VideoHandler) Keywords(c *gin.Context) {
	keywords, err := h.catalog.ListKeywords()
	if err != nil {
		h.logger.Error("failed to list keywords", "error", err)
		response.Error(c, http.StatusInternalServerError, 100002, "获取关键词列表失败")
		return
	}

	dtos := make([]*KeywordDTO, 0, len(keywords))
	for _, kw := range keywords {
		dtos = append(dtos, &KeywordDTO{
			Keyword: kw.Keyword,
			Count:   kw.Count,
		})
	}

	response.Success(c, dtos)
}

// Metadata 获取单个视频的元数据
// GET /api/v1/videos/:id/metadata
func (h *VideoHandler) Metadata(c *gin.Context) {
	mdID := c.Param("id")
	if mdID == "" {
		response.Error(c, http.StatusBadRequest, 100003, "视频 ID 不能为空")
		return
	}

	meta, err := h.catalog.GetMetadata(mdID)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			response.Error(c, http.StatusNotFound, 100004, "视频不存在")
			return
		}
		h.logger.Error("failed to get video metadata", "md_id", mdID, "error", err)
		response.Error(c, http.StatusInternalServerError, 100005, "获取视频元数据失败")
		return
	}

	response.Success(c, &MetadataDTO{
		MDID:     mdID,
		Summary:  meta.Summary,
		Keywords: meta.Keywords,
	})
}
