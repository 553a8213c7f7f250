package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/pkg/application"
)

// ImportLogHandler writes an audit line for every committed import and
// deletion.
type ImportLogHandler struct {
	logger *logrus.Logger
}

func RegisterImportLogHandler(app application.Application) {
	h := &ImportLogHandler{logger: app.Logger()}
	app.EventPublisher().Subscribe(h.OnImported)
	app.EventPublisher().Subscribe(h.OnDeleted)
}

func (h *ImportLogHandler) OnImported(e questionnaire.ImportedEvent) {
	h.logger.WithFields(logrus.Fields{
		"questionnaire_id": e.QuestionnaireID,
		"name":             e.Name,
		"filename":         e.Filename,
		"sections":         e.Sections,
		"steps":            e.Steps,
		"questions":        e.Questions,
		"rating_scales":    e.RatingScales,
	}).Info("questionnaire imported")
}

func (h *ImportLogHandler) OnDeleted(e questionnaire.DeletedEvent) {
	h.logger.WithField("questionnaire_id", e.QuestionnaireID).Info("questionnaire deleted")
}
