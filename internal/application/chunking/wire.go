package chunking

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/infrastructure/config"
	"github.com/tubesage/backend/internal/infrastructure/tokenizer"
)

// ProvideCounter 基于 tiktoken 估算器创建计数器（Wire Provider）
func ProvideCounter(estimator *tokenizer.Estimator) *Counter {
	return NewCounter(estimator)
}

// ProvideChunker 根据配置创建分块器（Wire Provider）
func ProvideChunker(counter *Counter, cfg *config.Config) (*SentenceChunker, error) {
	return NewSentenceChunker(counter, Config{
		TargetTokens:  cfg.Chunking.TargetTokens,
		HardMaxTokens: cfg.Chunking.HardMaxTokens,
		HardMinTokens: cfg.Chunking.HardMinTokens,
		OverlapRatio:  cfg.Chunking.OverlapRatio,
	})
}

// ProviderSet 分块 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideCounter,
	ProvideChunker,
)
