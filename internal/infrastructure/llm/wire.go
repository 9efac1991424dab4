package llm

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/infrastructure/config"
)

// ProvideClient 根据配置创建 LLM 客户端（Wire Provider）
func ProvideClient(cfg *config.Config) *Client {
	return NewClient(cfg.LLM.URL, cfg.LLM.APIKey, cfg.LLM.Model)
}

// ProviderSet LLM ProviderSet
var ProviderSet = wire.NewSet(
	ProvideClient,
)
