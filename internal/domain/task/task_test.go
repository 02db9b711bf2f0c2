package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timep(t time.Time) *time.Time { return &t }

func TestScore_MixedStates(t *testing.T) {
	now := time.Now()
	done := &Suggestion{ID: uuid.New(), CompletedAt: timep(now)}
	skipped := &Suggestion{ID: uuid.New(), SkippedAt: timep(now)}
	open := &Suggestion{ID: uuid.New()}

	p := Score([]uuid.UUID{done.ID, skipped.ID, open.ID}, IndexByID([]*Suggestion{done, skipped, open}))

	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 3, p.Total)
	assert.InDelta(t, 66.67, p.Percentage, 0.01)
	assert.True(t, p.HasProgress())
}

func TestScore_EmptyPlanIsSentinel(t *testing.T) {
	p := Score(nil, nil)

	assert.Equal(t, 0.0, p.Percentage)
	assert.False(t, p.HasProgress())
}

func TestScore_ZeroPercentIsNotSentinel(t *testing.T) {
	open := &Suggestion{ID: uuid.New()}
	p := Score([]uuid.UUID{open.ID}, IndexByID([]*Suggestion{open}))

	assert.Equal(t, 0.0, p.Percentage)
	assert.True(t, p.HasProgress())
}

func TestScore_AllSkippedIsComplete(t *testing.T) {
	a := &Suggestion{ID: uuid.New(), SkippedAt: timep(time.Now())}
	b := &Suggestion{ID: uuid.New(), SnoozedAt: timep(time.Now())}

	p := Score([]uuid.UUID{a.ID, b.ID}, IndexByID([]*Suggestion{a, b}))

	assert.Equal(t, 100.0, p.Percentage)
}

func TestScore_DropsStaleAndDuplicateIDs(t *testing.T) {
	live := &Suggestion{ID: uuid.New(), CompletedAt: timep(time.Now())}

	p := Score([]uuid.UUID{live.ID, uuid.New(), live.ID}, IndexByID([]*Suggestion{live}))

	assert.Equal(t, Progress{Completed: 1, Total: 1, Percentage: 100}, p)
}

func TestResolveSections(t *testing.T) {
	a := &Suggestion{ID: uuid.New()}
	b := &Suggestion{ID: uuid.New()}
	plan := &ActionPlan{GroupSections: []GroupSection{
		{Title: "Inner 5", Tasks: []Stub{{ID: a.ID}, {ID: uuid.New()}}},
		{Title: "Stale", Tasks: []Stub{{ID: uuid.New()}}},
		{Title: "Central 50", Tasks: []Stub{{ID: b.ID}}},
	}}

	sections := ResolveSections(plan, IndexByID([]*Suggestion{a, b}))

	require.Len(t, sections, 2)
	assert.Equal(t, "Inner 5", sections[0].Title)
	assert.Equal(t, []*Suggestion{a}, sections[0].Tasks)
	assert.Equal(t, "Central 50", sections[1].Title)
	assert.Len(t, plan.TaskIDs(), 4)
}

func TestMark_ClearsOtherMarkers(t *testing.T) {
	now := time.Now()
	s := &Suggestion{ID: uuid.New(), SkippedAt: timep(now)}

	require.NoError(t, s.Mark(StateCompleted, now))
	assert.NotNil(t, s.CompletedAt)
	assert.Nil(t, s.SkippedAt)
	assert.Nil(t, s.SnoozedAt)

	assert.ErrorIs(t, s.Mark(State("archived"), now), ErrInvalidState)
}

func TestParseState(t *testing.T) {
	st, err := ParseState("snoozed")
	require.NoError(t, err)
	assert.Equal(t, StateSnoozed, st)

	_, err = ParseState("done")
	assert.ErrorIs(t, err, ErrInvalidState)
}
