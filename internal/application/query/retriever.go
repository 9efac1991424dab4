package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/infrastructure/vector"
)

// Mode 检索模式
type Mode string

const (
	// ModeWhole 在父文档粒度检索
	ModeWhole Mode = "whole"
	// ModeChunked 在片段粒度检索
	ModeChunked Mode = "chunked"
)

// ParseMode 解析检索模式
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWhole, ModeChunked:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid retrieval mode %q (want whole or chunked)", s)
	}
}

// ContextBlock 带引用的检索结果块
type ContextBlock struct {
	Citation string  `json:"citation"` // "filename" 或 "filename (Chunk N)"
	Content  string  `json:"content"`
	Score    float32 `json:"score"`
}

// RetrievalResult 检索结果
type RetrievalResult struct {
	Blocks []ContextBlock
}

// Context 拼接为下游 prompt 的上下文串
func (r *RetrievalResult) Context() string {
	var sb strings.Builder
	for i, block := range r.Blocks {
		fmt.Fprintf(&sb, "[Result %d] Source: %s\n%s\n\n", i+1, block.Citation, block.Content)
	}
	return sb.String()
}

// VectorSearcher 向量库检索能力
type VectorSearcher interface {
	SearchParents(ctx context.Context, queryVector []float32, limit int) ([]*vector.ParentHit, error)
	SearchChunks(ctx context.Context, queryVector []float32, limit int) ([]*vector.ChunkHit, error)
}

// QueryEmbedder 查询向量化能力
type QueryEmbedder interface {
	EmbedText(text string) ([]float32, error)
}

// Retriever 检索器
// 纯数据整形：搜索向量库并把命中解析成带稳定引用的上下文块，不调用 LLM
type Retriever struct {
	vectorStore     VectorSearcher
	parentRepo      transcript.ParentRepository
	embeddingClient QueryEmbedder
	logger          *slog.Logger
}

// NewRetriever 创建检索器
func NewRetriever(vectorStore VectorSearcher, parentRepo transcript.ParentRepository, embeddingClient QueryEmbedder) *Retriever {
	return &Retriever{
		vectorStore:     vectorStore,
		parentRepo:      parentRepo,
		embeddingClient: embeddingClient,
		logger:          log.NewModuleLogger("query", "retriever"),
	}
}

// Retrieve 执行检索，无命中时返回 ErrNoResults
func (r *Retriever) Retrieve(ctx context.Context, queryText string, mode Mode, k int) (*RetrievalResult, error) {
	if k <= 0 {
		k = 5
	}

	queryVector, err := r.embeddingClient.EmbedText(queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	switch mode {
	case ModeWhole:
		return r.retrieveWhole(ctx, queryVector, k)
	case ModeChunked:
		return r.retrieveChunked(ctx, queryVector, k)
	default:
		return nil, fmt.Errorf("invalid retrieval mode %q", mode)
	}
}

// retrieveWhole 父文档粒度检索，引用为文件名
func (r *Retriever) retrieveWhole(ctx context.Context, queryVector []float32, k int) (*RetrievalResult, error) {
	hits, err := r.vectorStore.SearchParents(ctx, queryVector, k)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, transcript.ErrNoResults
	}

	blocks := make([]ContextBlock, 0, len(hits))
	for _, hit := range hits {
		// 父点 payload 只带摘要，全文从存储补齐
		content := hit.Summary
		if parent, err := r.parentRepo.GetParent(hit.MDID); err == nil {
			content = parent.Content
		}

		blocks = append(blocks, ContextBlock{
			Citation: hit.Filename,
			Content:  content,
			Score:    hit.Score,
		})
	}

	return &RetrievalResult{Blocks: blocks}, nil
}

// retrieveChunked 片段粒度检索，引用为 "filename (Chunk N)"
// md_id -> filename 批量解析一次，缺失父记录时退化为 "Unknown"
func (r *Retriever) retrieveChunked(ctx context.Context, queryVector []float32, k int) (*RetrievalResult, error) {
	hits, err := r.vectorStore.SearchChunks(ctx, queryVector, k)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, transcript.ErrNoResults
	}

	// 收集去重后的 md_id，一次查询解析全部文件名
	seen := make(map[string]bool)
	var mdIDs []string
	for _, hit := range hits {
		if !seen[hit.MDID] {
			seen[hit.MDID] = true
			mdIDs = append(mdIDs, hit.MDID)
		}
	}

	parents, err := r.parentRepo.GetParentsByIDs(mdIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve filenames: %w", err)
	}

	blocks := make([]ContextBlock, 0, len(hits))
	for _, hit := range hits {
		filename := "Unknown"
		if parent, ok := parents[hit.MDID]; ok {
			filename = parent.Filename
		} else {
			r.logger.Warn("Chunk references missing parent", "md_id", hit.MDID, "chunk_id", hit.ChunkID)
		}

		blocks = append(blocks, ContextBlock{
			Citation: fmt.Sprintf("%s (Chunk %d)", filename, hit.ChunkID),
			Content:  hit.Content,
			Score:    hit.Score,
		})
	}

	return &RetrievalResult{Blocks: blocks}, nil
}
