package query

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/embedding"
	"github.com/tubesage/backend/internal/infrastructure/vector"
)

// ProvideRetriever 组装检索器（Wire Provider）
func ProvideRetriever(
	vectorStore *vector.Store,
	parentRepo transcript.ParentRepository,
	embeddingClient *embedding.Client,
) *Retriever {
	return NewRetriever(vectorStore, parentRepo, embeddingClient)
}

// ProviderSet 查询应用层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideRetriever,
	NewAnswerService,
	NewCatalogService,
)
