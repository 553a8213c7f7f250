package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateRows checks the full sheet and returns every violation found, each
// prefixed with its 1-based source row number. It never stops at the first
// failure, within a row or across rows: a user correcting a 500-row sheet
// should not need 500 uploads.
func ValidateRows(rows []Row) []string {
	var errs []string
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		errs = append(errs, validateRequired(row)...)
		errs = append(errs, validateOrders(row)...)

		key := row.QuestionKey()
		if _, ok := seen[key]; ok {
			errs = append(errs, fmt.Sprintf(
				"Row %d: Duplicate question found - section %q, step %q, question %q",
				row.Line, row.SectionTitle, row.StepTitle, row.QuestionTitle,
			))
		} else {
			seen[key] = struct{}{}
		}

		errs = append(errs, validateRatings(row)...)
	}

	return errs
}

func validateRequired(row Row) []string {
	var errs []string
	required := []struct {
		name  string
		value string
	}{
		{"section_title", row.SectionTitle},
		{"step_title", row.StepTitle},
		{"question_title", row.QuestionTitle},
		{"question_text", row.QuestionText},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Sprintf("Row %d: %s is required", row.Line, f.name))
		}
	}
	return errs
}

func validateOrders(row Row) []string {
	var errs []string
	orders := []struct {
		name  string
		value string
	}{
		{"section_order", row.SectionOrder},
		{"step_order", row.StepOrder},
		{"question_order", row.QuestionOrder},
	}
	for _, f := range orders {
		n, err := strconv.Atoi(strings.TrimSpace(f.value))
		if err != nil || n < 1 {
			errs = append(errs, fmt.Sprintf(
				"Row %d: %s must be a positive number (got: %q)",
				row.Line, f.name, f.value,
			))
		}
	}
	return errs
}

func validateRatings(row Row) []string {
	var errs []string
	values := make(map[int]struct{}, MaxRatingSlots)
	populated := 0

	for i, slot := range row.Ratings {
		raw := strings.TrimSpace(slot.Value)
		if raw == "" {
			continue
		}
		populated++

		value, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf(
				"Row %d: rating_value_%d must be a number (got: %q)",
				row.Line, i+1, slot.Value,
			))
			continue
		}
		if _, ok := values[value]; ok {
			errs = append(errs, fmt.Sprintf(
				"Row %d: Duplicate rating_value %d found in question", row.Line, value,
			))
			continue
		}
		values[value] = struct{}{}
	}

	if populated == 0 {
		errs = append(errs, fmt.Sprintf(
			"Row %d: At least one rating scale (rating_value_1) is required", row.Line,
		))
	}

	return errs
}
