package vector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/tubesage/backend/internal/infrastructure/log"
)

// 集合名称
const (
	ParentCollection = "parent_videos"
	ChunkCollection  = "video_chunks"
)

// QdrantManager Qdrant 管理器
// 连接外部 Qdrant 实例并维护集合
type QdrantManager struct {
	host     string
	grpcPort int
	client   *qdrant.Client
	logger   *slog.Logger
}

// NewQdrantManager 创建 Qdrant 管理器
func NewQdrantManager(host string, grpcPort int) *QdrantManager {
	return &QdrantManager{
		host:     host,
		grpcPort: grpcPort,
		logger:   log.NewModuleLogger("vector", "qdrant_manager"),
	}
}

// Connect 建立连接并等待服务就绪
func (q *QdrantManager) Connect() error {
	if err := q.waitForReady(10 * time.Second); err != nil {
		return fmt.Errorf("qdrant not ready at %s:%d: %w", q.host, q.grpcPort, err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: q.host,
		Port: q.grpcPort,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	q.client = client
	q.logger.Info("Connected to qdrant", "host", q.host, "grpc_port", q.grpcPort)

	return nil
}

// Close 关闭连接
func (q *QdrantManager) Close() error {
	if q.client != nil {
		q.client.Close()
		q.client = nil
	}
	return nil
}

// GetClient 获取 Qdrant 客户端
func (q *QdrantManager) GetClient() *qdrant.Client {
	return q.client
}

// waitForReady 等待 Qdrant 服务就绪
func (q *QdrantManager) waitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		client, err := qdrant.NewClient(&qdrant.Config{
			Host: q.host,
			Port: q.grpcPort,
		})
		if err == nil {
			// 测试连接：尝试列出集合
			_, err = client.ListCollections(context.Background())
			if err == nil {
				client.Close()
				return nil
			}
			client.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for qdrant to be ready")
}

// EnsureCollections 确保双粒度集合存在
// vectorSize 必须与 Embedding 配置的维度一致
func (q *QdrantManager) EnsureCollections(vectorSize uint64) error {
	if q.client == nil {
		return fmt.Errorf("qdrant client not initialized")
	}

	collections := []string{ParentCollection, ChunkCollection}
	ctx := context.Background()

	existingCollections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	collectionMap := make(map[string]bool)
	for _, name := range existingCollections {
		collectionMap[name] = true
	}

	for _, collectionName := range collections {
		if !collectionMap[collectionName] {
			err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
				CollectionName: collectionName,
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     vectorSize,
					Distance: qdrant.Distance_Cosine,
				}),
			})
			if err != nil {
				return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
			q.logger.Info("Created collection", "name", collectionName, "vector_size", vectorSize)
		}
	}

	return nil
}
