package syncer

import (
	"sort"

	"github.com/areaewhy/JoplinView/internal/models"
)

// TagCounts derives the tag frequency table from a note set. Pure
// function; iteration order of the result is unspecified.
func TagCounts(notes []models.Note) map[string]int {
	counts := make(map[string]int)
	for _, n := range notes {
		for _, tag := range n.Tags {
			counts[tag]++
		}
	}
	return counts
}

// ListTags returns the tag frequency table for the current note set,
// sorted by name.
func (s *Syncer) ListTags() ([]models.TagCount, error) {
	notes, err := s.notes.All()
	if err != nil {
		return nil, err
	}
	counts := TagCounts(notes)
	out := make([]models.TagCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.TagCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
