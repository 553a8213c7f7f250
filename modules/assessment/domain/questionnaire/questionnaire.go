package questionnaire

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Questionnaire is the aggregate root produced by a CSV import. Sections,
// steps and questions keep the order they carried on the imported sheet.
type Questionnaire struct {
	id           uuid.UUID
	name         string
	description  string
	guidelines   string
	sections     []Section
	ratingScales []RatingScale
	createdAt    time.Time
	updatedAt    time.Time
}

type Section struct {
	ID         uuid.UUID
	Title      string
	OrderIndex int
	Steps      []Step
}

type Step struct {
	ID         uuid.UUID
	Title      string
	OrderIndex int
	Questions  []Question
}

type Question struct {
	ID         uuid.UUID
	Title      string
	Text       string
	Context    string
	OrderIndex int
	Ratings    []QuestionRating
}

// QuestionRating links a question to one of the questionnaire's rating
// scales, optionally overriding the scale description for this question.
type QuestionRating struct {
	ScaleID     uuid.UUID
	Value       int
	Description string
}

type RatingScale struct {
	ID          uuid.UUID
	Value       int
	Name        string
	Description string
	OrderIndex  int
}

func New(name, description, guidelines string) Questionnaire {
	return Questionnaire{
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		guidelines:  strings.TrimSpace(guidelines),
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	description string,
	guidelines string,
	sections []Section,
	ratingScales []RatingScale,
	createdAt time.Time,
	updatedAt time.Time,
) Questionnaire {
	return Questionnaire{
		id:           id,
		name:         strings.TrimSpace(name),
		description:  description,
		guidelines:   guidelines,
		sections:     sections,
		ratingScales: ratingScales,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (q Questionnaire) ID() uuid.UUID               { return q.id }
func (q Questionnaire) Name() string                { return q.name }
func (q Questionnaire) Description() string         { return q.description }
func (q Questionnaire) Guidelines() string          { return q.guidelines }
func (q Questionnaire) Sections() []Section         { return q.sections }
func (q Questionnaire) RatingScales() []RatingScale { return q.ratingScales }
func (q Questionnaire) CreatedAt() time.Time        { return q.createdAt }
func (q Questionnaire) UpdatedAt() time.Time        { return q.updatedAt }
func (q Questionnaire) IsZero() bool                { return q.id == uuid.Nil && q.name == "" }

// QuestionCount walks the section tree so list views can report the
// number of imported questions without loading associations.
func (q Questionnaire) QuestionCount() int {
	n := 0
	for _, s := range q.sections {
		for _, st := range s.Steps {
			n += len(st.Questions)
		}
	}
	return n
}
