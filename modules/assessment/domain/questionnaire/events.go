package questionnaire

import (
	"time"

	"github.com/google/uuid"
)

// ImportedEvent is published on the event bus after a questionnaire graph
// has been committed.
type ImportedEvent struct {
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	Name            string    `json:"name"`
	Filename        string    `json:"filename"`
	Sections        int       `json:"sections"`
	Steps           int       `json:"steps"`
	Questions       int       `json:"questions"`
	RatingScales    int       `json:"rating_scales"`
	ImportedAt      time.Time `json:"imported_at"`
}

// DeletedEvent is published after a questionnaire and its graph are removed.
type DeletedEvent struct {
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	DeletedAt       time.Time `json:"deleted_at"`
}
