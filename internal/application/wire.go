package application

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/application/chunking"
	"github.com/tubesage/backend/internal/application/ingest"
	"github.com/tubesage/backend/internal/application/query"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	chunking.ProviderSet,
	ingest.ProviderSet,
	query.ProviderSet,
)
