package importer

import "fmt"

// MaxRatingSlots is the fixed ceiling of rating columns per row
// (rating_desc_1..10 / rating_value_1..10).
const MaxRatingSlots = 10

// RatingSlot is one (description, value) column pair. An empty Value means
// the slot is unused for that row.
type RatingSlot struct {
	Description string
	Value       string
}

// Row is one tokenized data record, mapped to named fields immediately after
// parsing so downstream code never touches raw CSV records.
type Row struct {
	// Line is the 1-based source line; the header is line 1, so the first
	// data row is line 2.
	Line int

	SectionTitle    string
	SectionOrder    string
	StepTitle       string
	StepOrder       string
	QuestionTitle   string
	QuestionText    string
	QuestionContext string
	QuestionOrder   string

	Ratings [MaxRatingSlots]RatingSlot
}

func (r Row) QuestionKey() string {
	return QuestionKey(r.SectionTitle, r.StepTitle, r.QuestionTitle)
}

// RequiredHeaders returns the full required header set, in reporting order.
func RequiredHeaders() []string {
	headers := []string{
		"section_title",
		"section_order",
		"step_title",
		"step_order",
		"question_title",
		"question_text",
		"question_context",
		"question_order",
	}
	for i := 1; i <= MaxRatingSlots; i++ {
		headers = append(headers, fmt.Sprintf("rating_desc_%d", i))
	}
	for i := 1; i <= MaxRatingSlots; i++ {
		headers = append(headers, fmt.Sprintf("rating_value_%d", i))
	}
	return headers
}

func rowFromRecord(idx map[string]int, rec []string, line int) Row {
	get := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	row := Row{
		Line:            line,
		SectionTitle:    get("section_title"),
		SectionOrder:    get("section_order"),
		StepTitle:       get("step_title"),
		StepOrder:       get("step_order"),
		QuestionTitle:   get("question_title"),
		QuestionText:    get("question_text"),
		QuestionContext: get("question_context"),
		QuestionOrder:   get("question_order"),
	}
	for i := 0; i < MaxRatingSlots; i++ {
		row.Ratings[i] = RatingSlot{
			Description: get(fmt.Sprintf("rating_desc_%d", i+1)),
			Value:       get(fmt.Sprintf("rating_value_%d", i+1)),
		}
	}
	return row
}
