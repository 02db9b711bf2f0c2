package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Step struct {
	Completed bool `json:"completed"`
}

// Onboarding is stored as a JSON document on the user row. Steps only ever move
// from incomplete to complete; Completed is set independently of the steps.
type Onboarding struct {
	Completed bool            `json:"completed"`
	Steps     map[string]Step `json:"steps"`
}

func New() *Onboarding {
	return &Onboarding{Steps: map[string]Step{}}
}

// Update is a partial change. A nil Completed leaves the top-level flag alone.
type Update struct {
	StepsCompleted []string
	Completed      *bool
}

var (
	ErrEmptyUpdate  = errors.New("onboarding update has nothing to change")
	ErrEmptyStepKey = errors.New("onboarding step key must not be empty")
	ErrUserNotFound = errors.New("user not found")
)

func (u Update) Validate() error {
	if len(u.StepsCompleted) == 0 && u.Completed == nil {
		return ErrEmptyUpdate
	}
	for _, k := range u.StepsCompleted {
		if k == "" {
			return ErrEmptyStepKey
		}
	}
	return nil
}

// Patch renders u as the document that gets deep-merged into the stored one.
func (u Update) Patch() map[string]any {
	patch := map[string]any{}
	if len(u.StepsCompleted) > 0 {
		steps := make(map[string]any, len(u.StepsCompleted))
		for _, k := range u.StepsCompleted {
			steps[k] = map[string]any{"completed": true}
		}
		patch["steps"] = steps
	}
	if u.Completed != nil {
		patch["completed"] = *u.Completed
	}
	return patch
}

// Apply merges u into o in place. It is the in-memory form of the repository's
// atomic update and must produce the same document for the same input.
func (o *Onboarding) Apply(u Update) error {
	doc, err := toMap(o)
	if err != nil {
		return err
	}
	merged := DeepMerge(doc, u.Patch())

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal merged onboarding: %w", err)
	}
	next := New()
	if err := json.Unmarshal(raw, next); err != nil {
		return fmt.Errorf("unmarshal merged onboarding: %w", err)
	}
	if next.Steps == nil {
		next.Steps = map[string]Step{}
	}
	*o = *next
	return nil
}

func toMap(o *Onboarding) (map[string]any, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal onboarding: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal onboarding: %w", err)
	}
	return m, nil
}

// DeepMerge returns a new map with src merged over dst. Nested maps merge
// recursively; any other value in src replaces the one in dst. Neither input
// is modified.
func DeepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, sv := range src {
		sm, srcIsMap := sv.(map[string]any)
		dm, dstIsMap := out[k].(map[string]any)
		if srcIsMap && dstIsMap {
			out[k] = DeepMerge(dm, sm)
			continue
		}
		out[k] = sv
	}
	return out
}

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Onboarding, error)
	// ApplyUpdate merges u into the stored document atomically and returns the result.
	ApplyUpdate(ctx context.Context, userID uuid.UUID, u Update) (*Onboarding, error)
}
