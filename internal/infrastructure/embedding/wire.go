package embedding

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/infrastructure/config"
)

// ProvideClient 根据配置创建 Embedding 客户端（Wire Provider）
func ProvideClient(cfg *config.Config) *Client {
	return NewClient(
		cfg.Embedding.URL,
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.Provider,
		cfg.Embedding.Dim,
	)
}

// ProviderSet Embedding ProviderSet
var ProviderSet = wire.NewSet(
	ProvideClient,
)
