package infrastructure

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/infrastructure/checkpoint"
	"github.com/tubesage/backend/internal/infrastructure/embedding"
	"github.com/tubesage/backend/internal/infrastructure/llm"
	"github.com/tubesage/backend/internal/infrastructure/storage"
	"github.com/tubesage/backend/internal/infrastructure/tokenizer"
	"github.com/tubesage/backend/internal/infrastructure/vector"
	"github.com/tubesage/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	storage.ProviderSet,
	checkpoint.ProviderSet,
	vector.ProviderSet,
	embedding.ProviderSet,
	llm.ProviderSet,
	tokenizer.ProviderSet,
	websocket.ProviderSet,
)
