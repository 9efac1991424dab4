package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,           // 提供数据库连接（含建表）
	NewParentRepository, // 整篇文档仓储
	NewChunkRepository,  // 文档片段仓储
)
