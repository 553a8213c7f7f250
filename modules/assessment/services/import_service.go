package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/modules/assessment/importer"
	"github.com/formlane/assess/pkg/composables"
	"github.com/formlane/assess/pkg/eventbus"
)

// ImportInput is one uploaded CSV file plus the questionnaire metadata the
// caller supplied alongside it.
type ImportInput struct {
	Filename    string
	Data        []byte
	Name        string
	Description string
	Guidelines  string
}

// ImportResult summarizes a committed import.
type ImportResult struct {
	QuestionnaireID uuid.UUID
	Sections        int
	Steps           int
	Questions       int
	RatingScales    int
	Associations    int
}

type ImportService struct {
	repo      questionnaire.Repository
	publisher eventbus.EventBus
}

func NewImportService(repo questionnaire.Repository, publisher eventbus.EventBus) *ImportService {
	return &ImportService{
		repo:      repo,
		publisher: publisher,
	}
}

// ImportCSV runs the full pipeline: sniff the file type, parse and validate
// the sheet, normalize it into a graph, and persist the graph together with
// the questionnaire metadata. The row set either lands completely or not at
// all.
func (s *ImportService) ImportCSV(ctx context.Context, input ImportInput) (*ImportResult, error) {
	if len(input.Data) == 0 {
		return nil, importer.ErrNoFile
	}
	if !isCSV(input.Filename, input.Data) {
		return nil, importer.ErrUnsupportedFileType
	}

	graph, err := importer.ImportGraph(input.Data)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultName(input.Filename)
	}

	var id uuid.UUID
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		id, err = s.repo.Create(txCtx, questionnaire.CreateCommand{
			Name:        name,
			Description: input.Description,
			Guidelines:  input.Guidelines,
			Graph:       graph,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(questionnaire.ImportedEvent{
		QuestionnaireID: id,
		Name:            name,
		Filename:        input.Filename,
		Sections:        len(graph.Sections),
		Steps:           len(graph.Steps),
		Questions:       len(graph.Questions),
		RatingScales:    len(graph.RatingScales),
		ImportedAt:      time.Now(),
	})

	return &ImportResult{
		QuestionnaireID: id,
		Sections:        len(graph.Sections),
		Steps:           len(graph.Steps),
		Questions:       len(graph.Questions),
		RatingScales:    len(graph.RatingScales),
		Associations:    len(graph.Associations),
	}, nil
}

// isCSV accepts files with a .csv extension or content that sniffs as
// text/csv or plain text. Spreadsheet binaries and other formats are
// rejected up front.
func isCSV(filename string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	mtype := mimetype.Detect(data)
	return mtype.Is("text/csv") || mtype.Is("text/plain")
}

func defaultName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimSpace(name)
	if name == "" || name == "." {
		return "Imported questionnaire"
	}
	return name
}
