package wire

import (
	"database/sql"

	"log/slog"

	appIngest "github.com/tubesage/backend/internal/application/ingest"
	"github.com/tubesage/backend/internal/infrastructure/config"
	applog "github.com/tubesage/backend/internal/infrastructure/log"
	"github.com/tubesage/backend/internal/infrastructure/vector"
	"github.com/tubesage/backend/internal/infrastructure/watcher"
	"github.com/tubesage/backend/internal/infrastructure/websocket"
	"github.com/tubesage/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer    *interfaces.HTTPServer
	MCPServer     *interfaces.MCPServer
	cfg           *config.Config
	wsHub         *websocket.Hub
	scheduler     *appIngest.Scheduler
	qdrantManager *vector.QdrantManager
	db            *sql.DB
	logger        *slog.Logger

	// 语料目录监听
	corpusWatcher *watcher.CorpusWatcher
}

// NewApp 创建应用实例
func NewApp(
	cfg *config.Config,
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	scheduler *appIngest.Scheduler,
	qdrantManager *vector.QdrantManager,
	db *sql.DB,
) *App {
	logger := applog.NewModuleLogger("app", "main")

	app := &App{
		HTTPServer:    httpServer,
		MCPServer:     mcpServer,
		cfg:           cfg,
		wsHub:         wsHub,
		scheduler:     scheduler,
		qdrantManager: qdrantManager,
		db:            db,
		logger:        logger,
	}

	// 初始化语料目录监听器（可选）
	if cfg.Corpus.WatchEnabled && cfg.Corpus.DataDir != "" {
		corpusWatcher, err := watcher.NewCorpusWatcher(cfg.Corpus.DataDir, func() {
			scheduler.TriggerScan()
		})
		if err != nil {
			logger.Error("Failed to create corpus watcher", "error", err)
		} else {
			app.corpusWatcher = corpusWatcher
		}
	}

	return app
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting TubeSage backend application")

	// 连接向量库并确保集合存在
	if err := a.qdrantManager.Connect(); err != nil {
		return err
	}
	if err := a.qdrantManager.EnsureCollections(uint64(a.cfg.Embedding.Dim)); err != nil {
		return err
	}

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 启动摄取调度器（定时扫描可选）
	a.scheduler.Start()

	// 启动语料目录监听
	if a.corpusWatcher != nil {
		if err := a.corpusWatcher.Start(); err != nil {
			a.logger.Error("Failed to start corpus watcher",
				"error", err,
			)
		} else {
			a.logger.Info("Corpus watcher started successfully")
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	a.logger.Info("TubeSage backend application started successfully")

	// MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
	// 已在 HTTP 服务器中注册 /mcp/sse 端点

	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping TubeSage backend application")

	// 停止语料目录监听
	if a.corpusWatcher != nil {
		a.corpusWatcher.Stop()
		a.logger.Info("Corpus watcher stopped")
	}

	// 先停 HTTP，避免停机期间还有新的摄取触发进来
	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}

	// 停止摄取调度器，等待进行中的摄取结束
	a.scheduler.Stop()

	if err := a.MCPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop MCP server",
			"error", err,
		)
		return err
	}

	// 断开向量库连接
	if err := a.qdrantManager.Close(); err != nil {
		a.logger.Error("Failed to close Qdrant connection",
			"error", err,
		)
	}

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("TubeSage backend application stopped successfully")

	return nil
}
