package persistence

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/modules/assessment/importer"
	"github.com/formlane/assess/pkg/composables"
)

const (
	questionnaireFindQuery = `SELECT id, name, description, guidelines, created_at, updated_at FROM questionnaires`

	uniqueViolationCode = "23505"
)

type QuestionnaireRepository struct{}

func NewQuestionnaireRepository() questionnaire.Repository {
	return &QuestionnaireRepository{}
}

// Create persists the questionnaire metadata and its whole graph in the
// transaction carried by ctx. Natural keys from the import run are resolved
// into fresh surrogate ids; nothing is visible until the caller commits.
func (r *QuestionnaireRepository) Create(ctx context.Context, cmd questionnaire.CreateCommand) (uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if cmd.Graph == nil {
		return uuid.Nil, errors.New("create questionnaire: nil graph")
	}

	now := time.Now()
	questionnaireID := uuid.New()
	_, err = tx.Exec(
		ctx,
		`INSERT INTO questionnaires (id, name, description, guidelines, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		questionnaireID,
		strings.TrimSpace(cmd.Name),
		cmd.Description,
		cmd.Guidelines,
		now,
		now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return uuid.Nil, questionnaire.ErrNameTaken.WithDetails(strings.TrimSpace(cmd.Name))
		}
		return uuid.Nil, errors.Wrap(err, "insert questionnaire")
	}

	sectionIDs := make(map[string]uuid.UUID, len(cmd.Graph.Sections))
	for _, s := range cmd.Graph.Sections {
		id := uuid.New()
		sectionIDs[s.Title] = id
		_, err = tx.Exec(
			ctx,
			`INSERT INTO questionnaire_sections (id, questionnaire_id, title, order_index)
			 VALUES ($1, $2, $3, $4)`,
			id, questionnaireID, s.Title, s.OrderIndex,
		)
		if err != nil {
			return uuid.Nil, errors.Wrap(err, "insert section")
		}
	}

	stepIDs := make(map[string]uuid.UUID, len(cmd.Graph.Steps))
	for _, s := range cmd.Graph.Steps {
		sectionID, ok := sectionIDs[s.SectionTitle]
		if !ok {
			return uuid.Nil, errors.Errorf("step %q references unknown section %q", s.Title, s.SectionTitle)
		}
		id := uuid.New()
		stepIDs[importer.StepKey(s.SectionTitle, s.Title)] = id
		_, err = tx.Exec(
			ctx,
			`INSERT INTO questionnaire_steps (id, section_id, title, order_index)
			 VALUES ($1, $2, $3, $4)`,
			id, sectionID, s.Title, s.OrderIndex,
		)
		if err != nil {
			return uuid.Nil, errors.Wrap(err, "insert step")
		}
	}

	questionIDs := make(map[string]uuid.UUID, len(cmd.Graph.Questions))
	for _, q := range cmd.Graph.Questions {
		stepID, ok := stepIDs[importer.StepKey(q.SectionTitle, q.StepTitle)]
		if !ok {
			return uuid.Nil, errors.Errorf("question %q references unknown step %q", q.Title, q.StepTitle)
		}
		id := uuid.New()
		questionIDs[importer.QuestionKey(q.SectionTitle, q.StepTitle, q.Title)] = id
		_, err = tx.Exec(
			ctx,
			`INSERT INTO questionnaire_questions (id, step_id, title, text, context, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, stepID, q.Title, q.Text, q.Context, q.OrderIndex,
		)
		if err != nil {
			return uuid.Nil, errors.Wrap(err, "insert question")
		}
	}

	scaleIDs := make(map[int]uuid.UUID, len(cmd.Graph.RatingScales))
	for _, s := range cmd.Graph.RatingScales {
		id := uuid.New()
		scaleIDs[s.Value] = id
		_, err = tx.Exec(
			ctx,
			`INSERT INTO rating_scales (id, questionnaire_id, value, name, description, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, questionnaireID, s.Value, s.Name, s.Description, s.OrderIndex,
		)
		if err != nil {
			return uuid.Nil, errors.Wrap(err, "insert rating scale")
		}
	}

	for _, a := range cmd.Graph.Associations {
		questionID, ok := questionIDs[a.QuestionKey]
		if !ok {
			return uuid.Nil, errors.Errorf("rating association references unknown question %q", a.QuestionKey)
		}
		scaleID, ok := scaleIDs[a.Value]
		if !ok {
			return uuid.Nil, errors.Errorf("rating association references unknown scale value %d", a.Value)
		}
		_, err = tx.Exec(
			ctx,
			`INSERT INTO question_ratings (id, question_id, rating_scale_id, description)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New(), questionID, scaleID, a.Description,
		)
		if err != nil {
			return uuid.Nil, errors.Wrap(err, "insert question rating")
		}
	}

	return questionnaireID, nil
}

func (r *QuestionnaireRepository) GetByID(ctx context.Context, id uuid.UUID) (questionnaire.Questionnaire, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return questionnaire.Questionnaire{}, err
	}

	var (
		name        string
		description string
		guidelines  string
		createdAt   time.Time
		updatedAt   time.Time
	)
	err = tx.QueryRow(ctx, questionnaireFindQuery+" WHERE id = $1", id).
		Scan(&id, &name, &description, &guidelines, &createdAt, &updatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return questionnaire.Questionnaire{}, questionnaire.ErrNotFound
		}
		return questionnaire.Questionnaire{}, errors.Wrap(err, "query questionnaire")
	}

	sections, err := r.querySections(ctx, tx, id)
	if err != nil {
		return questionnaire.Questionnaire{}, err
	}
	scales, err := r.queryRatingScales(ctx, tx, id)
	if err != nil {
		return questionnaire.Questionnaire{}, err
	}

	return questionnaire.Hydrate(id, name, description, guidelines, sections, scales, createdAt, updatedAt), nil
}

func (r *QuestionnaireRepository) GetPaginated(ctx context.Context, params *questionnaire.FindParams) ([]questionnaire.Questionnaire, int64, error) {
	if params == nil {
		params = &questionnaire.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	q := "%" + strings.TrimSpace(params.Q) + "%"

	rows, err := tx.Query(
		ctx,
		questionnaireFindQuery+" WHERE name ILIKE $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3",
		q, limit, offset,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list questionnaires")
	}
	defer rows.Close()

	out := make([]questionnaire.Questionnaire, 0, limit)
	for rows.Next() {
		var (
			id          uuid.UUID
			name        string
			description string
			guidelines  string
			createdAt   time.Time
			updatedAt   time.Time
		)
		if err := rows.Scan(&id, &name, &description, &guidelines, &createdAt, &updatedAt); err != nil {
			return nil, 0, errors.Wrap(err, "scan questionnaire")
		}
		out = append(out, questionnaire.Hydrate(id, name, description, guidelines, nil, nil, createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "list questionnaires")
	}

	var total int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM questionnaires WHERE name ILIKE $1`, q).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count questionnaires")
	}

	return out, total, nil
}

// Delete removes the questionnaire; the graph rows follow via ON DELETE CASCADE.
func (r *QuestionnaireRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM questionnaires WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete questionnaire")
	}
	if tag.RowsAffected() == 0 {
		return questionnaire.ErrNotFound
	}
	return nil
}

func (r *QuestionnaireRepository) querySections(ctx context.Context, tx composables.Tx, questionnaireID uuid.UUID) ([]questionnaire.Section, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT id, title, order_index FROM questionnaire_sections
		 WHERE questionnaire_id = $1 ORDER BY order_index, title`,
		questionnaireID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query sections")
	}
	defer rows.Close()

	var sections []questionnaire.Section
	for rows.Next() {
		var s questionnaire.Section
		if err := rows.Scan(&s.ID, &s.Title, &s.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan section")
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query sections")
	}

	for i := range sections {
		steps, err := r.querySteps(ctx, tx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].Steps = steps
	}
	return sections, nil
}

func (r *QuestionnaireRepository) querySteps(ctx context.Context, tx composables.Tx, sectionID uuid.UUID) ([]questionnaire.Step, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT id, title, order_index FROM questionnaire_steps
		 WHERE section_id = $1 ORDER BY order_index, title`,
		sectionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query steps")
	}
	defer rows.Close()

	var steps []questionnaire.Step
	for rows.Next() {
		var s questionnaire.Step
		if err := rows.Scan(&s.ID, &s.Title, &s.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan step")
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query steps")
	}

	for i := range steps {
		questions, err := r.queryQuestions(ctx, tx, steps[i].ID)
		if err != nil {
			return nil, err
		}
		steps[i].Questions = questions
	}
	return steps, nil
}

func (r *QuestionnaireRepository) queryQuestions(ctx context.Context, tx composables.Tx, stepID uuid.UUID) ([]questionnaire.Question, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT id, title, text, context, order_index FROM questionnaire_questions
		 WHERE step_id = $1 ORDER BY order_index, title`,
		stepID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query questions")
	}
	defer rows.Close()

	var questions []questionnaire.Question
	for rows.Next() {
		var q questionnaire.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Text, &q.Context, &q.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query questions")
	}

	for i := range questions {
		ratings, err := r.queryQuestionRatings(ctx, tx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Ratings = ratings
	}
	return questions, nil
}

func (r *QuestionnaireRepository) queryQuestionRatings(ctx context.Context, tx composables.Tx, questionID uuid.UUID) ([]questionnaire.QuestionRating, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT qr.rating_scale_id, rs.value, qr.description
		 FROM question_ratings qr
		 JOIN rating_scales rs ON rs.id = qr.rating_scale_id
		 WHERE qr.question_id = $1
		 ORDER BY rs.value`,
		questionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query question ratings")
	}
	defer rows.Close()

	var ratings []questionnaire.QuestionRating
	for rows.Next() {
		var r questionnaire.QuestionRating
		if err := rows.Scan(&r.ScaleID, &r.Value, &r.Description); err != nil {
			return nil, errors.Wrap(err, "scan question rating")
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query question ratings")
	}
	return ratings, nil
}

func (r *QuestionnaireRepository) queryRatingScales(ctx context.Context, tx composables.Tx, questionnaireID uuid.UUID) ([]questionnaire.RatingScale, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT id, value, name, description, order_index FROM rating_scales
		 WHERE questionnaire_id = $1 ORDER BY order_index, value`,
		questionnaireID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query rating scales")
	}
	defer rows.Close()

	var scales []questionnaire.RatingScale
	for rows.Next() {
		var s questionnaire.RatingScale
		if err := rows.Scan(&s.ID, &s.Value, &s.Name, &s.Description, &s.OrderIndex); err != nil {
			return nil, errors.Wrap(err, "scan rating scale")
		}
		scales = append(scales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query rating scales")
	}
	return scales, nil
}
