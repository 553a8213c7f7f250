package importer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func validRow(line int, questionTitle string) Row {
	row := Row{
		Line:            line,
		SectionTitle:    "Safety",
		SectionOrder:    "1",
		StepTitle:       "Training",
		StepOrder:       "1",
		QuestionTitle:   questionTitle,
		QuestionText:    "Are records kept?",
		QuestionContext: "Site walkthrough",
		QuestionOrder:   "1",
	}
	row.Ratings[0] = RatingSlot{Description: "No", Value: "1"}
	row.Ratings[1] = RatingSlot{Description: "Yes", Value: "2"}
	return row
}

func TestValidateRows_ValidSheet(t *testing.T) {
	t.Parallel()

	rows := []Row{validRow(2, "Q1"), validRow(3, "Q2")}
	require.Empty(t, ValidateRows(rows))
}

func TestValidateRows_RequiredFields(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	row.SectionTitle = "  "
	row.QuestionText = ""

	errs := ValidateRows([]Row{row})
	require.Contains(t, errs, "Row 2: section_title is required")
	require.Contains(t, errs, "Row 2: question_text is required")
}

func TestValidateRows_OrderFields(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	row.QuestionOrder = "abc"
	errs := ValidateRows([]Row{row})
	require.Contains(t, errs, `Row 2: question_order must be a positive number (got: "abc")`)

	row = validRow(2, "Q1")
	row.SectionOrder = "0"
	errs = ValidateRows([]Row{row})
	require.Contains(t, errs, `Row 2: section_order must be a positive number (got: "0")`)

	row = validRow(2, "Q1")
	row.StepOrder = "-3"
	errs = ValidateRows([]Row{row})
	require.Contains(t, errs, `Row 2: step_order must be a positive number (got: "-3")`)
}

func TestValidateRows_DuplicateQuestion(t *testing.T) {
	t.Parallel()

	rows := []Row{validRow(2, "Q1"), validRow(3, "Q1")}
	errs := ValidateRows(rows)
	require.Equal(t, []string{
		`Row 3: Duplicate question found - section "Safety", step "Training", question "Q1"`,
	}, errs)
}

func TestValidateRows_RepeatedSectionStepIsLegal(t *testing.T) {
	t.Parallel()

	rows := []Row{validRow(2, "Q1"), validRow(3, "Q2"), validRow(4, "Q3")}
	require.Empty(t, ValidateRows(rows))
}

func TestValidateRows_DuplicateRatingValueWithinRow(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	row.Ratings[0] = RatingSlot{Description: "No", Value: "5"}
	row.Ratings[1] = RatingSlot{Description: "Yes", Value: "5"}

	errs := ValidateRows([]Row{row})
	require.Equal(t, []string{"Row 2: Duplicate rating_value 5 found in question"}, errs)
}

func TestValidateRows_SameRatingValueAcrossRowsIsLegal(t *testing.T) {
	t.Parallel()

	rows := []Row{validRow(2, "Q1"), validRow(3, "Q2")}
	require.Empty(t, ValidateRows(rows))
}

func TestValidateRows_NonNumericRatingValue(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	row.Ratings[2] = RatingSlot{Description: "Maybe", Value: "x"}

	errs := ValidateRows([]Row{row})
	require.Equal(t, []string{`Row 2: rating_value_3 must be a number (got: "x")`}, errs)
}

func TestValidateRows_NoRatingSlots(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	row.Ratings = [MaxRatingSlots]RatingSlot{}

	errs := ValidateRows([]Row{row})
	require.Equal(t, []string{"Row 2: At least one rating scale (rating_value_1) is required"}, errs)
}

func TestValidateRows_NeverShortCircuitsWithinRow(t *testing.T) {
	t.Parallel()

	row := Row{Line: 2}
	errs := ValidateRows([]Row{row})

	// All four presence checks, all three order checks, and the empty
	// rating-slot check fire on the same row.
	require.Len(t, errs, 8)
}

func TestValidateRows_OneErrorPerViolatingRow(t *testing.T) {
	t.Parallel()

	var rows []Row
	for i := 0; i < 20; i++ {
		row := validRow(i+2, fmt.Sprintf("Q%d", i))
		row.QuestionOrder = "nope"
		rows = append(rows, row)
	}

	errs := ValidateRows(rows)
	require.GreaterOrEqual(t, len(errs), 20)
	require.Contains(t, errs[0], "Row 2:")
	require.Contains(t, errs[len(errs)-1], "Row 21:")
}
