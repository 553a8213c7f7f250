package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/pkg/application"
	"github.com/formlane/assess/pkg/eventbus"
)

func TestImportLogHandler_LogsImportedEvent(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	bus := eventbus.NewEventPublisher(logger)
	app := application.New(&application.ApplicationOptions{
		EventBus: bus,
		Logger:   logger,
	})

	RegisterImportLogHandler(app)
	require.Equal(t, 2, bus.SubscribersCount())

	id := uuid.New()
	bus.Publish(questionnaire.ImportedEvent{
		QuestionnaireID: id,
		Name:            "Maturity model",
		Filename:        "maturity.csv",
		Questions:       12,
		ImportedAt:      time.Now(),
	})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	require.Equal(t, "questionnaire imported", entry.Message)
	require.Equal(t, id, entry.Data["questionnaire_id"])
}

func TestImportLogHandler_LogsDeletedEvent(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	bus := eventbus.NewEventPublisher(logger)
	app := application.New(&application.ApplicationOptions{
		EventBus: bus,
		Logger:   logger,
	})

	RegisterImportLogHandler(app)
	bus.Publish(questionnaire.DeletedEvent{QuestionnaireID: uuid.New(), DeletedAt: time.Now()})

	require.Len(t, hook.Entries, 1)
	require.Equal(t, "questionnaire deleted", hook.LastEntry().Message)
}
