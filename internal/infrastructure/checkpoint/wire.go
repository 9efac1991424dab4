package checkpoint

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/config"
)

// ProvideStore 根据配置创建检查点存储（Wire Provider）
func ProvideStore(cfg *config.Config) (transcript.CheckpointStore, error) {
	store, err := NewFileStore(cfg.Ingest.CheckpointPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ProviderSet 检查点 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideStore,
)
