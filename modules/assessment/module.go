package assessment

import (
	"embed"

	"github.com/formlane/assess/modules/assessment/handlers"
	"github.com/formlane/assess/modules/assessment/infrastructure/persistence"
	"github.com/formlane/assess/modules/assessment/presentation/controllers"
	"github.com/formlane/assess/modules/assessment/services"
	"github.com/formlane/assess/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	repo := persistence.NewQuestionnaireRepository()
	app.RegisterServices(
		services.NewImportService(repo, app.EventPublisher()),
		services.NewQuestionnaireService(repo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewQuestionnaireAPIController(app),
		controllers.NewHealthController(app),
	)
	handlers.RegisterImportLogHandler(app)
	return nil
}

func (m *Module) Name() string {
	return "assessment"
}
