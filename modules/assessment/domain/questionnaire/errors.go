package questionnaire

import "github.com/formlane/assess/pkg/serrors"

var (
	ErrNotFound  = serrors.NewError("QUESTIONNAIRE_NOT_FOUND", "questionnaire not found", "")
	ErrNameTaken = serrors.NewError("QUESTIONNAIRE_NAME_TAKEN", "a questionnaire with this name already exists", "")
)
