package ingest

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/application/chunking"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/config"
	"github.com/tubesage/backend/internal/infrastructure/embedding"
	"github.com/tubesage/backend/internal/infrastructure/vector"
	"github.com/tubesage/backend/internal/infrastructure/websocket"
)

// ProvideOrchestrator 组装摄取编排器（Wire Provider）
// 具体实现在这里收口成编排器依赖的窄接口
func ProvideOrchestrator(
	cfg *config.Config,
	parentRepo transcript.ParentRepository,
	chunkRepo transcript.ChunkRepository,
	checkpointStore transcript.CheckpointStore,
	vectorStore *vector.Store,
	embeddingClient *embedding.Client,
	metadataGen *MetadataGenerator,
	chunker *chunking.SentenceChunker,
	hub *websocket.Hub,
) *Orchestrator {
	return NewOrchestrator(
		cfg,
		parentRepo,
		chunkRepo,
		checkpointStore,
		vectorStore,
		embeddingClient,
		metadataGen,
		chunker,
		hub,
	)
}

// ProvideScheduler 根据配置创建调度器（Wire Provider）
func ProvideScheduler(orchestrator *Orchestrator, cfg *config.Config) *Scheduler {
	return NewScheduler(orchestrator, cfg.Ingest.ScanInterval)
}

// ProviderSet 摄取应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewMetadataGenerator,
	ProvideOrchestrator,
	ProvideScheduler,
)
