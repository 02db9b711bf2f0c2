package task

import "github.com/google/uuid"

type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// HasProgress is false for a plan with no resolvable tasks. That state is
// different from a plan at 0%.
func (p Progress) HasProgress() bool {
	return p.Total > 0
}

// Score counts done tasks among ids. Ids missing from live are not counted at all.
func Score(ids []uuid.UUID, live map[uuid.UUID]*Suggestion) Progress {
	var p Progress
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		s, ok := live[id]
		if !ok {
			continue
		}
		p.Total++
		if s.IsDone() {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = float64(p.Completed) / float64(p.Total) * 100
	}
	return p
}

type Section struct {
	Title string        `json:"title"`
	Tasks []*Suggestion `json:"tasks"`
}

// ResolveSections swaps plan stubs for live suggestions, dropping stale ids and
// sections that end up empty.
func ResolveSections(plan *ActionPlan, live map[uuid.UUID]*Suggestion) []Section {
	sections := make([]Section, 0, len(plan.GroupSections))
	for _, gs := range plan.GroupSections {
		sec := Section{Title: gs.Title}
		for _, stub := range gs.Tasks {
			if s, ok := live[stub.ID]; ok {
				sec.Tasks = append(sec.Tasks, s)
			}
		}
		if len(sec.Tasks) > 0 {
			sections = append(sections, sec)
		}
	}
	return sections
}

func IndexByID(suggestions []*Suggestion) map[uuid.UUID]*Suggestion {
	idx := make(map[uuid.UUID]*Suggestion, len(suggestions))
	for _, s := range suggestions {
		idx[s.ID] = s
	}
	return idx
}
