package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/pkg/composables"
	"github.com/formlane/assess/pkg/eventbus"
)

type QuestionnaireService struct {
	repo      questionnaire.Repository
	publisher eventbus.EventBus
}

func NewQuestionnaireService(repo questionnaire.Repository, publisher eventbus.EventBus) *QuestionnaireService {
	return &QuestionnaireService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *QuestionnaireService) GetByID(ctx context.Context, id uuid.UUID) (questionnaire.Questionnaire, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *QuestionnaireService) GetPaginated(ctx context.Context, params *questionnaire.FindParams) ([]questionnaire.Questionnaire, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *QuestionnaireService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(questionnaire.DeletedEvent{
		QuestionnaireID: id,
		DeletedAt:       time.Now(),
	})
	return nil
}
