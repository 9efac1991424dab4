package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/tubesage/backend/internal/application/chunking"
	appIngest "github.com/tubesage/backend/internal/application/ingest"
	"github.com/tubesage/backend/internal/infrastructure/checkpoint"
	"github.com/tubesage/backend/internal/infrastructure/config"
	"github.com/tubesage/backend/internal/infrastructure/embedding"
	"github.com/tubesage/backend/internal/infrastructure/llm"
	applog "github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/infrastructure/storage"
	"github.com/tubesage/backend/internal/infrastructure/tokenizer"
	"github.com/tubesage/backend/internal/infrastructure/vector"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dataDir := flag.String("data-dir", "", "transcript corpus directory (overrides config)")
	limit := flag.Int("limit", 0, "process at most N files (0 = all)")
	flag.Parse()

	// 初始化日志系统
	applog.Init(nil)

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.Corpus.DataDir = *dataDir
	}
	if cfg.Corpus.DataDir == "" {
		log.Fatal("corpus data directory is required (--data-dir or config)")
	}

	// 初始化存储
	db, err := storage.ProvideDB(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	parentRepo := storage.NewParentRepository(db)
	chunkRepo := storage.NewChunkRepository(db)

	checkpointStore, err := checkpoint.ProvideStore(cfg)
	if err != nil {
		log.Fatalf("failed to create checkpoint store: %v", err)
	}

	// 连接向量库
	qdrantManager := vector.ProvideManager(cfg)
	if err := qdrantManager.Connect(); err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer qdrantManager.Close()

	if err := qdrantManager.EnsureCollections(uint64(cfg.Embedding.Dim)); err != nil {
		log.Fatalf("failed to ensure collections: %v", err)
	}

	// 分块器
	estimator, err := tokenizer.GetEstimator()
	if err != nil {
		log.Fatalf("failed to initialize tokenizer: %v", err)
	}
	chunker, err := chunking.ProvideChunker(chunking.ProvideCounter(estimator), cfg)
	if err != nil {
		log.Fatalf("failed to create chunker: %v", err)
	}

	// 摄取编排器（一次性运行，不推送进度）
	orchestrator := appIngest.NewOrchestrator(
		cfg,
		parentRepo,
		chunkRepo,
		checkpointStore,
		vector.NewStore(qdrantManager),
		embedding.ProvideClient(cfg),
		appIngest.NewMetadataGenerator(llm.ProvideClient(cfg)),
		chunker,
		nil,
	)

	// Ctrl+C 中断后检查点保证可续跑
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := orchestrator.Run(ctx, *limit)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}

	applog.GetLogger().Info("Ingestion finished",
		"successful", summary.Successful,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"total_processed", summary.TotalProcessed,
	)
}
