package questionnaire

import (
	"context"

	"github.com/google/uuid"

	"github.com/formlane/assess/modules/assessment/importer"
)

type FindParams struct {
	Q      string
	Limit  int
	Offset int
}

// CreateCommand carries the metadata and the normalized sheet graph for a
// single import. The repository persists the whole graph atomically.
type CreateCommand struct {
	Name        string
	Description string
	Guidelines  string
	Graph       *importer.Graph
}

type Repository interface {
	Create(ctx context.Context, cmd CreateCommand) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (Questionnaire, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Questionnaire, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
