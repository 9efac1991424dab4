package vector

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/infrastructure/config"
)

// ProvideManager 根据配置创建 Qdrant 管理器（Wire Provider）
// 连接在 App.Start 中建立
func ProvideManager(cfg *config.Config) *QdrantManager {
	return NewQdrantManager(cfg.Qdrant.Host, cfg.Qdrant.Port)
}

// ProviderSet 向量库 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideManager,
	NewStore,
)
