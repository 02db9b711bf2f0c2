package network

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tier identifies a relationship tier. The three reserved tiers map 1:1 to
// reserved group slugs; TierEveryone is everybody outside all of them.
type Tier string

const (
	TierInner5       Tier = "inner-5"
	TierCentral50    Tier = "central-50"
	TierStrategic100 Tier = "strategic-100"
	TierEveryone     Tier = "everyone"
)

// ReservedTiers is ordered the way results are presented.
var ReservedTiers = []Tier{TierInner5, TierCentral50, TierStrategic100}

// ReservedSlugs returns the reserved group slugs as plain strings for queries.
func ReservedSlugs() []string {
	slugs := make([]string, len(ReservedTiers))
	for i, t := range ReservedTiers {
		slugs[i] = string(t)
	}
	return slugs
}

func IsReservedSlug(slug string) bool {
	for _, t := range ReservedTiers {
		if string(t) == slug {
			return true
		}
	}
	return false
}

type Completeness struct {
	Inner5       int `json:"inner5"`
	Central50    int `json:"central50"`
	Strategic100 int `json:"strategic100"`
	Everyone     int `json:"everyone"`
}

// TierSeries holds one day-indexed count series per tier. Index 0 is the oldest day.
type TierSeries struct {
	Inner5       []int `json:"inner5"`
	Central50    []int `json:"central50"`
	Strategic100 []int `json:"strategic100"`
	Everyone     []int `json:"everyone"`
}

func NewTierSeries(days int) TierSeries {
	return TierSeries{
		Inner5:       make([]int, days),
		Central50:    make([]int, days),
		Strategic100: make([]int, days),
		Everyone:     make([]int, days),
	}
}

// For returns the series of tier t, or nil for an unknown tier.
func (s *TierSeries) For(t Tier) []int {
	switch t {
	case TierInner5:
		return s.Inner5
	case TierCentral50:
		return s.Central50
	case TierStrategic100:
		return s.Strategic100
	case TierEveryone:
		return s.Everyone
	}
	return nil
}

func (s TierSeries) Sum() int {
	total := 0
	for _, series := range [][]int{s.Inner5, s.Central50, s.Strategic100, s.Everyone} {
		for _, n := range series {
			total += n
		}
	}
	return total
}

type Activity struct {
	CurrentPeriod   TierSeries `json:"currentPeriod"`
	PreviousPeriod  TierSeries `json:"previousPeriod"`
	TotalActivities int        `json:"totalActivities"`
}

// ActivityBucket is one row of the stored aggregation.
type ActivityBucket struct {
	DayIndex int
	Tier     Tier
	Count    int
}

type ActivityQuery struct {
	UserID        uuid.UUID
	Days          int
	Offset        int
	ReservedSlugs []string
	Timezone      string
}

type PersonRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TodayInteraction is one interaction of the day attributed to one tier. A
// person in several reserved tiers yields one row per tier.
type TodayInteraction struct {
	InteractionID uuid.UUID
	Person        PersonRef
	Tier          Tier
	CreatedAt     time.Time
}

type TierActivity struct {
	Count  int         `json:"count"`
	People []PersonRef `json:"people"`
}

type TodaysActivity struct {
	Inner5       TierActivity `json:"inner5"`
	Central50    TierActivity `json:"central50"`
	Strategic100 TierActivity `json:"strategic100"`
	Everyone     TierActivity `json:"everyone"`
}

func (a *TodaysActivity) For(t Tier) *TierActivity {
	switch t {
	case TierInner5:
		return &a.Inner5
	case TierCentral50:
		return &a.Central50
	case TierStrategic100:
		return &a.Strategic100
	case TierEveryone:
		return &a.Everyone
	}
	return nil
}

type Repository interface {
	// ListTierScores returns the completeness score of every member of the
	// reserved group slug. Nil entries are persons without a score.
	ListTierScores(ctx context.Context, userID uuid.UUID, slug string) ([]*int, error)
	// ListUnassignedScores returns scores of persons in none of reservedSlugs.
	ListUnassignedScores(ctx context.Context, userID uuid.UUID, reservedSlugs []string) ([]*int, error)
	AggregateActivity(ctx context.Context, q ActivityQuery) ([]ActivityBucket, error)
	ListTodayInteractions(ctx context.Context, userID uuid.UUID, reservedSlugs []string, timezone string) ([]TodayInteraction, error)
}
