package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tubesage/backend/internal/application/chunking"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/config"
	"github.com/tubesage/backend/internal/infrastructure/llm"
	"github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/infrastructure/textclean"
)

// Notifier 摄取进度通知接口
type Notifier interface {
	Broadcast(data interface{}) error
}

// Embedder 向量化能力
type Embedder interface {
	EmbedText(text string) ([]float32, error)
	EmbedTexts(texts []string) ([][]float32, error)
	Model() string
	Provider() string
	Dim() int
}

// VectorWriter 向量库写入能力
type VectorWriter interface {
	UpsertParentPoint(ctx context.Context, record *transcript.ParentRecord, vector []float32) error
	UpsertChunkPoints(ctx context.Context, records []*transcript.ChunkRecord, vectors [][]float32) error
	DeleteStaleChunkPoints(ctx context.Context, mdID string, newChunkCount int) error
}

// MetadataSource 元数据生成能力
type MetadataSource interface {
	Generate(ctx context.Context, filename, content string) (*transcript.VideoMetadata, error)
}

// ProgressEvent 摄取进度事件（WebSocket 广播）
type ProgressEvent struct {
	Type      string `json:"type"` // started | document_done | document_failed | completed
	File      string `json:"file,omitempty"`
	Error     string `json:"error,omitempty"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

// Summary 单次摄取运行的结果
type Summary struct {
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
	Skipped        int `json:"skipped"`
	TotalProcessed int `json:"total_processed"`
}

// Status 摄取状态快照
type Status struct {
	ParentCount    int                     `json:"parent_count"`
	ChunkCount     int                     `json:"chunk_count"`
	TotalProcessed int                     `json:"total_processed"`
	LastError      *transcript.IngestError `json:"last_error"`
	StartedAt      string                  `json:"started_at"`
	LastUpdated    string                  `json:"last_updated"`
}

// Orchestrator 摄取编排器
// 串行处理语料目录中的转写稿：元数据生成、双粒度写入、检查点推进。
// 文档串行是有意的：LLM 限流和检查点文件写入都不允许并发
type Orchestrator struct {
	cfg             *config.Config
	parentRepo      transcript.ParentRepository
	chunkRepo       transcript.ChunkRepository
	checkpointStore transcript.CheckpointStore
	vectorStore     VectorWriter
	embeddingClient Embedder
	metadataGen     MetadataSource
	chunker         *chunking.SentenceChunker
	notifier        Notifier
	logger          *slog.Logger
}

// NewOrchestrator 创建摄取编排器
func NewOrchestrator(
	cfg *config.Config,
	parentRepo transcript.ParentRepository,
	chunkRepo transcript.ChunkRepository,
	checkpointStore transcript.CheckpointStore,
	vectorStore VectorWriter,
	embeddingClient Embedder,
	metadataGen MetadataSource,
	chunker *chunking.SentenceChunker,
	notifier Notifier,
) *Orchestrator {
	return &Orchestrator{
		cfg:             cfg,
		parentRepo:      parentRepo,
		chunkRepo:       chunkRepo,
		checkpointStore: checkpointStore,
		vectorStore:     vectorStore,
		embeddingClient: embeddingClient,
		metadataGen:     metadataGen,
		chunker:         chunker,
		notifier:        notifier,
		logger:          log.NewModuleLogger("ingest", "orchestrator"),
	}
}

// Run 执行一次摄取
// limit > 0 时只处理前 N 个文件（测试用）
func (o *Orchestrator) Run(ctx context.Context, limit int) (*Summary, error) {
	files, err := o.listCorpusFiles()
	if err != nil {
		return nil, err
	}

	checkpoint, err := o.loadCheckpoint()
	if err != nil {
		return nil, err
	}

	if checkpoint.StartedAt == "" {
		checkpoint.StartedAt = time.Now().Format(time.RFC3339)
	}

	total := len(files)
	if limit > 0 && limit < len(files) {
		files = files[:limit]
		o.logger.Warn("Testing mode: processing subset", "limit", limit, "total", total)
	}

	o.logger.Info("Starting ingestion run",
		"total_files", total,
		"already_processed", checkpoint.TotalProcessed,
	)
	o.broadcast(&ProgressEvent{Type: "started", Processed: checkpoint.TotalProcessed, Total: total})

	summary := &Summary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			// 文档之间可以安全中断，检查点反映真实进度
			return summary, err
		}

		filename := filepath.Base(file)
		if checkpoint.IsProcessed(filename) {
			summary.Skipped++
			continue
		}

		if err := o.processDocument(ctx, file); err != nil {
			// 取消/超时是中断而不是文档失败，不计入 last_error
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			o.logger.Error("Failed to process document", "file", filename, "error", err)
			checkpoint.RecordError(filename, err, time.Now())
			summary.Failed++
			o.broadcast(&ProgressEvent{
				Type:      "document_failed",
				File:      filename,
				Error:     err.Error(),
				Processed: checkpoint.TotalProcessed,
				Total:     total,
			})
		} else {
			checkpoint.MarkProcessed(filename, time.Now())
			summary.Successful++
			o.broadcast(&ProgressEvent{
				Type:      "document_done",
				File:      filename,
				Processed: checkpoint.TotalProcessed,
				Total:     total,
			})
		}

		// 每个文档后都落盘，进程退出不丢进度
		if err := o.checkpointStore.Save(checkpoint); err != nil {
			return summary, fmt.Errorf("failed to save checkpoint: %w", err)
		}
	}

	summary.TotalProcessed = checkpoint.TotalProcessed
	o.logger.Info("Ingestion run completed",
		"successful", summary.Successful,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"total_processed", summary.TotalProcessed,
	)
	o.broadcast(&ProgressEvent{Type: "completed", Processed: checkpoint.TotalProcessed, Total: total})

	return summary, nil
}

// processDocument 处理单个文档
// 所有写入按 md_id / (md_id, chunk_id) 幂等，中途失败后整个文档重做是安全的
func (o *Orchestrator) processDocument(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	content := string(data)

	filename := filepath.Base(path)
	mdID := transcript.DocumentID(filename)
	stem := transcript.FilenameStem(filename)

	o.logger.Info("Processing document", "file", filename, "md_id", mdID)

	// 1. 元数据生成（限流时无限重试）
	meta, err := o.generateMetadataWithRetry(ctx, stem, content)
	if err != nil {
		return err
	}

	// 每次 LLM 调用后固定延迟，避免触发配额
	if err := o.sleep(ctx, o.cfg.Ingest.SleepAfterLLMCall); err != nil {
		return err
	}

	// 2. 父文档记录
	parent := &transcript.ParentRecord{
		MDID:              mdID,
		Filepath:          path,
		Filename:          stem,
		Content:           content,
		Summary:           meta.Summary,
		Keywords:          meta.Keywords,
		EmbeddingModel:    o.embeddingClient.Model(),
		EmbeddingProvider: o.embeddingClient.Provider(),
		EmbeddingDim:      o.embeddingClient.Dim(),
	}

	parentVector, err := o.embeddingClient.EmbedText(content)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}

	if err := o.parentRepo.UpsertParent(parent); err != nil {
		return fmt.Errorf("failed to upsert parent record: %w", err)
	}
	if err := o.vectorStore.UpsertParentPoint(ctx, parent, parentVector); err != nil {
		return err
	}

	// 3. 分块
	chunks := o.chunker.Split(content)
	records := make([]*transcript.ChunkRecord, len(chunks))
	rawTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		records[i] = &transcript.ChunkRecord{
			MDID:              mdID,
			ChunkID:           i,
			RawContent:        chunk.Text,
			CleanedContent:    textclean.Clean(chunk.Text),
			TokenCount:        chunk.TokenCount,
			StartSentence:     chunk.StartSentence,
			EndSentence:       chunk.EndSentence,
			EmbeddingModel:    o.embeddingClient.Model(),
			EmbeddingProvider: o.embeddingClient.Provider(),
			EmbeddingDim:      o.embeddingClient.Dim(),
		}
		rawTexts[i] = chunk.Text
	}

	chunkVectors, err := o.embeddingClient.EmbedTexts(rawTexts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	if err := o.chunkRepo.UpsertChunks(mdID, records); err != nil {
		return fmt.Errorf("failed to upsert chunk records: %w", err)
	}
	if err := o.vectorStore.UpsertChunkPoints(ctx, records, chunkVectors); err != nil {
		return err
	}
	// 重新分块后片段变少时，清掉向量库中的残留点
	if err := o.vectorStore.DeleteStaleChunkPoints(ctx, mdID, len(records)); err != nil {
		return err
	}

	o.logger.Info("Document ingested", "file", filename, "chunks", len(records))
	return nil
}

// generateMetadataWithRetry 生成元数据
// 限流错误按固定间隔无限重试（可配置墙钟上限），其他错误直接返回
func (o *Orchestrator) generateMetadataWithRetry(ctx context.Context, stem, content string) (*transcript.VideoMetadata, error) {
	start := time.Now()

	for {
		meta, err := o.metadataGen.Generate(ctx, stem, content)
		if err == nil {
			return meta, nil
		}
		if !llm.IsRateLimited(err) {
			return nil, err
		}

		if maxWait := o.cfg.Ingest.MaxRetryWait; maxWait > 0 && time.Since(start) > maxWait {
			return nil, fmt.Errorf("rate limit retries exhausted after %s: %w", maxWait, err)
		}

		o.logger.Warn("Provider rate limit hit, waiting to retry",
			"delay", o.cfg.Ingest.RateLimitRetryDelay,
			"error", err,
		)
		if err := o.sleep(ctx, o.cfg.Ingest.RateLimitRetryDelay); err != nil {
			return nil, err
		}
	}
}

// loadCheckpoint 加载检查点，存储为空时强制重置
func (o *Orchestrator) loadCheckpoint() (*transcript.Checkpoint, error) {
	checkpoint, err := o.checkpointStore.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	parentCount, err := o.parentRepo.CountParents()
	if err != nil {
		return nil, err
	}
	chunkCount, err := o.chunkRepo.CountChunks()
	if err != nil {
		return nil, err
	}

	// 两张表都为空说明存储被重建过，陈旧检查点不能再声称数据存在
	if parentCount == 0 && chunkCount == 0 && checkpoint.TotalProcessed > 0 {
		o.logger.Info("Fresh store detected, resetting checkpoint")
		checkpoint.Reset()
		if err := o.checkpointStore.Save(checkpoint); err != nil {
			return nil, fmt.Errorf("failed to save reset checkpoint: %w", err)
		}
	}

	return checkpoint, nil
}

// Status 当前摄取状态
func (o *Orchestrator) Status() (*Status, error) {
	checkpoint, err := o.checkpointStore.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	parentCount, err := o.parentRepo.CountParents()
	if err != nil {
		return nil, err
	}
	chunkCount, err := o.chunkRepo.CountChunks()
	if err != nil {
		return nil, err
	}

	return &Status{
		ParentCount:    parentCount,
		ChunkCount:     chunkCount,
		TotalProcessed: checkpoint.TotalProcessed,
		LastError:      checkpoint.LastError,
		StartedAt:      checkpoint.StartedAt,
		LastUpdated:    checkpoint.LastUpdated,
	}, nil
}

// listCorpusFiles 列出语料目录中的 .md 文件（按文件名排序）
func (o *Orchestrator) listCorpusFiles() ([]string, error) {
	dir := o.cfg.Corpus.DataDir
	if dir == "" {
		return nil, fmt.Errorf("corpus data_dir not configured")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// sleep 可取消的延迟
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// broadcast 发送进度事件，未接 WebSocket 时为空操作
func (o *Orchestrator) broadcast(event *ProgressEvent) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Broadcast(event); err != nil {
		o.logger.Debug("Failed to broadcast progress event", "error", err)
	}
}
