package interfaces

import (
	"github.com/google/wire"
	"github.com/tubesage/backend/internal/interfaces/http"
	"github.com/tubesage/backend/internal/interfaces/mcp"
)

// ProviderSet Interfaces 层总 ProviderSet
var ProviderSet = wire.NewSet(
	http.ProviderSet,
	mcp.ProviderSet,
)
