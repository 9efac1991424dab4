package tokenizer

import "github.com/google/wire"

// ProviderSet 分词器 ProviderSet
var ProviderSet = wire.NewSet(
	GetEstimator,
)
