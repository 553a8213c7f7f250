package importer

import (
	"strconv"
	"strings"
)

// orderedMap pairs an index map with an insertion-order key list, so
// first-seen ordering is a stated property of the structure rather than an
// accident of any particular map implementation.
type orderedMap[K comparable, V any] struct {
	index map[K]V
	keys  []K
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{index: make(map[K]V)}
}

// setIfAbsent inserts only on first sight of the key and reports whether it
// inserted. The first occurrence wins for entity metadata.
func (m *orderedMap[K, V]) setIfAbsent(key K, value V) bool {
	if _, ok := m.index[key]; ok {
		return false
	}
	m.index[key] = value
	m.keys = append(m.keys, key)
	return true
}

func (m *orderedMap[K, V]) values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.index[k])
	}
	return out
}

// Normalize walks validated rows once and assembles the deduplicated graph.
// Rows must have passed ValidateRows; parse failures cannot occur here, so
// unparseable order fields quietly become 0 instead of failing the run.
func Normalize(rows []Row) *Graph {
	sections := newOrderedMap[string, Section]()
	steps := newOrderedMap[string, Step]()
	questions := newOrderedMap[string, Question]()
	scales := newOrderedMap[int, RatingScale]()
	var associations []Association

	for _, row := range rows {
		sections.setIfAbsent(row.SectionTitle, Section{
			Title:      row.SectionTitle,
			OrderIndex: parseOrder(row.SectionOrder),
		})

		steps.setIfAbsent(StepKey(row.SectionTitle, row.StepTitle), Step{
			SectionTitle: row.SectionTitle,
			Title:        row.StepTitle,
			OrderIndex:   parseOrder(row.StepOrder),
		})

		questionKey := row.QuestionKey()
		questions.setIfAbsent(questionKey, Question{
			SectionTitle: row.SectionTitle,
			StepTitle:    row.StepTitle,
			Title:        row.QuestionTitle,
			Text:         row.QuestionText,
			Context:      row.QuestionContext,
			OrderIndex:   parseOrder(row.QuestionOrder),
		})

		for _, slot := range row.Ratings {
			raw := strings.TrimSpace(slot.Value)
			if raw == "" {
				continue
			}
			value, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}

			scales.setIfAbsent(value, RatingScale{
				Value:       value,
				Name:        "Level " + strconv.Itoa(value),
				Description: "Imported scale level " + strconv.Itoa(value),
			})

			associations = append(associations, Association{
				QuestionKey: questionKey,
				Value:       value,
				Description: strings.TrimSpace(slot.Description),
			})
		}
	}

	// Scale identity is global across the sheet and there is no explicit
	// order column; first-seen position becomes the order index.
	ratingScales := scales.values()
	for i := range ratingScales {
		ratingScales[i].OrderIndex = i
	}

	return &Graph{
		Sections:     sections.values(),
		Steps:        steps.values(),
		Questions:    questions.values(),
		RatingScales: ratingScales,
		Associations: associations,
	}
}

func parseOrder(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
