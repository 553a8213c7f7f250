package modules

import (
	"github.com/formlane/assess/modules/assessment"
	"github.com/formlane/assess/pkg/application"
)

var BuiltInModules = []application.Module{
	assessment.NewModule(),
}

func Load(app application.Application, modules ...application.Module) error {
	return application.Load(app, modules...)
}
