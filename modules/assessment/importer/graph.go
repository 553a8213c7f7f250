package importer

// The normalized object graph produced from one import run. Natural keys
// (title strings) are only meaningful within a single run; the persistence
// layer resolves them into surrogate identifiers.

const keySep = "|"

type Section struct {
	Title      string
	OrderIndex int
}

type Step struct {
	SectionTitle string
	Title        string
	OrderIndex   int
}

type Question struct {
	SectionTitle string
	StepTitle    string
	Title        string
	Text         string
	Context      string
	OrderIndex   int
}

type RatingScale struct {
	Value       int
	Name        string
	Description string
	OrderIndex  int
}

// Association links a question to a rating value with the description text
// the question's row supplied. One entry per (row, populated slot); it is
// never deduplicated.
type Association struct {
	QuestionKey string
	Value       int
	Description string
}

type Graph struct {
	Sections     []Section
	Steps        []Step
	Questions    []Question
	RatingScales []RatingScale
	Associations []Association
}

func StepKey(sectionTitle, stepTitle string) string {
	return sectionTitle + keySep + stepTitle
}

func QuestionKey(sectionTitle, stepTitle, questionTitle string) string {
	return sectionTitle + keySep + stepTitle + keySep + questionTitle
}
