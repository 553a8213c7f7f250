package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_SingleRow(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	graph := Normalize([]Row{row})

	require.Len(t, graph.Sections, 1)
	require.Equal(t, Section{Title: "Safety", OrderIndex: 1}, graph.Sections[0])

	require.Len(t, graph.Steps, 1)
	require.Equal(t, Step{SectionTitle: "Safety", Title: "Training", OrderIndex: 1}, graph.Steps[0])

	require.Len(t, graph.Questions, 1)
	require.Equal(t, Question{
		SectionTitle: "Safety",
		StepTitle:    "Training",
		Title:        "Q1",
		Text:         "Are records kept?",
		Context:      "Site walkthrough",
		OrderIndex:   1,
	}, graph.Questions[0])

	require.Len(t, graph.RatingScales, 2)
	require.Equal(t, RatingScale{Value: 1, Name: "Level 1", Description: "Imported scale level 1", OrderIndex: 0}, graph.RatingScales[0])
	require.Equal(t, RatingScale{Value: 2, Name: "Level 2", Description: "Imported scale level 2", OrderIndex: 1}, graph.RatingScales[1])

	require.Len(t, graph.Associations, 2)
	require.Equal(t, Association{QuestionKey: "Safety|Training|Q1", Value: 1, Description: "No"}, graph.Associations[0])
	require.Equal(t, Association{QuestionKey: "Safety|Training|Q1", Value: 2, Description: "Yes"}, graph.Associations[1])
}

func TestNormalize_DedupSectionsAndSteps(t *testing.T) {
	t.Parallel()

	first := validRow(2, "Q1")
	second := validRow(3, "Q2")
	// Later rows sharing the key must not override first-seen metadata.
	second.SectionOrder = "9"
	second.StepOrder = "9"

	graph := Normalize([]Row{first, second})

	require.Len(t, graph.Sections, 1)
	require.Equal(t, 1, graph.Sections[0].OrderIndex)
	require.Len(t, graph.Steps, 1)
	require.Equal(t, 1, graph.Steps[0].OrderIndex)
	require.Len(t, graph.Questions, 2)
}

func TestNormalize_ScaleOrderIsFirstSeen(t *testing.T) {
	t.Parallel()

	first := validRow(2, "Q1")
	first.Ratings[0] = RatingSlot{Description: "High", Value: "7"}
	first.Ratings[1] = RatingSlot{Description: "Low", Value: "2"}
	second := validRow(3, "Q2")
	second.Ratings[0] = RatingSlot{Description: "Low", Value: "2"}
	second.Ratings[1] = RatingSlot{Description: "Mid", Value: "5"}

	graph := Normalize([]Row{first, second})

	require.Len(t, graph.RatingScales, 3)
	// First rating value ever encountered gets index 0, regardless of its
	// numeric value.
	require.Equal(t, 7, graph.RatingScales[0].Value)
	require.Equal(t, 0, graph.RatingScales[0].OrderIndex)
	require.Equal(t, 2, graph.RatingScales[1].Value)
	require.Equal(t, 1, graph.RatingScales[1].OrderIndex)
	require.Equal(t, 5, graph.RatingScales[2].Value)
	require.Equal(t, 2, graph.RatingScales[2].OrderIndex)
}

func TestNormalize_AssociationsNotDeduplicated(t *testing.T) {
	t.Parallel()

	first := validRow(2, "Q1")
	second := validRow(3, "Q2")

	graph := Normalize([]Row{first, second})

	// Both questions offer values 1 and 2; four associations, two scales.
	require.Len(t, graph.RatingScales, 2)
	require.Len(t, graph.Associations, 4)
}

func TestNormalize_AssociationDescriptionTrimmed(t *testing.T) {
	t.Parallel()

	row := validRow(2, "Q1")
	row.Ratings[0] = RatingSlot{Description: "  Not at all  ", Value: "1"}
	row.Ratings[1] = RatingSlot{}

	graph := Normalize([]Row{row})
	require.Len(t, graph.Associations, 1)
	require.Equal(t, "Not at all", graph.Associations[0].Description)
}

func TestNormalize_ReferentialClosure(t *testing.T) {
	t.Parallel()

	rows := []Row{validRow(2, "Q1"), validRow(3, "Q2")}
	other := validRow(4, "Q1")
	other.SectionTitle = "Quality"
	other.StepTitle = "Audits"
	rows = append(rows, other)

	graph := Normalize(rows)

	questionKeys := make(map[string]int)
	for _, q := range graph.Questions {
		questionKeys[QuestionKey(q.SectionTitle, q.StepTitle, q.Title)]++
	}
	scaleValues := make(map[int]int)
	for _, s := range graph.RatingScales {
		scaleValues[s.Value]++
	}

	for _, a := range graph.Associations {
		require.Equal(t, 1, questionKeys[a.QuestionKey], "association question key must resolve to exactly one question")
		require.Equal(t, 1, scaleValues[a.Value], "association value must resolve to exactly one scale")
	}

	sectionTitles := make(map[string]int)
	for _, s := range graph.Sections {
		sectionTitles[s.Title]++
	}
	stepKeys := make(map[string]int)
	for _, s := range graph.Steps {
		require.Equal(t, 1, sectionTitles[s.SectionTitle], "step parent must resolve to exactly one section")
		stepKeys[StepKey(s.SectionTitle, s.Title)]++
	}
	for _, q := range graph.Questions {
		require.Equal(t, 1, stepKeys[StepKey(q.SectionTitle, q.StepTitle)], "question parent must resolve to exactly one step")
	}
}

func TestNormalize_UnparseableOrderFallsBackToZero(t *testing.T) {
	t.Parallel()

	// Cannot happen after ValidateRows, but normalization must not fail.
	row := validRow(2, "Q1")
	row.SectionOrder = "oops"
	graph := Normalize([]Row{row})
	require.Equal(t, 0, graph.Sections[0].OrderIndex)
}
