package vectorstore

import (
	"context"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/memory"
)

// Storage persists a frozen index and restores it losslessly, including the
// fitted term model. It also serves as the corpus metadata source.
type Storage interface {
	domain.MetadataSource
	Save(ctx context.Context, ix *memory.Index) error
	Load(ctx context.Context) (*memory.Index, error)
	Path() string
}
