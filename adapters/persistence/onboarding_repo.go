package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/superleader/internal/domain/onboarding"
)

type postgresOnboardingRepo struct {
	db *pgxpool.Pool
}

func NewPostgresOnboardingRepo(db *pgxpool.Pool) onboarding.Repository {
	return &postgresOnboardingRepo{db: db}
}

func (r *postgresOnboardingRepo) Get(ctx context.Context, userID uuid.UUID) (*onboarding.Onboarding, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT onboarding FROM users WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, onboarding.ErrUserNotFound
		}
		return nil, fmt.Errorf("query onboarding: %w", err)
	}
	return decodeOnboarding(raw)
}

// applyOnboardingUpdate merges each patched step object into the stored one and
// sets the top-level flag only when $3 is not null. It must stay a single
// statement so concurrent writers cannot drop each other's steps.
const applyOnboardingUpdate = `
	UPDATE users
	SET onboarding = jsonb_set(
		jsonb_set(
			COALESCE(onboarding, '{}'::jsonb),
			'{steps}',
			COALESCE(onboarding->'steps', '{}'::jsonb) || (
				SELECT COALESCE(jsonb_object_agg(e.key, COALESCE(onboarding->'steps'->e.key, '{}'::jsonb) || e.value), '{}'::jsonb)
				FROM jsonb_each($2::jsonb) AS e
			)
		),
		'{completed}',
		COALESCE(to_jsonb($3::boolean), onboarding->'completed', 'false'::jsonb)
	)
	WHERE id = $1
	RETURNING onboarding
`

func (r *postgresOnboardingRepo) ApplyUpdate(ctx context.Context, userID uuid.UUID, u onboarding.Update) (*onboarding.Onboarding, error) {
	steps, ok := u.Patch()["steps"]
	if !ok {
		steps = map[string]any{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("marshal onboarding steps: %w", err)
	}

	var raw []byte
	err = r.db.QueryRow(ctx, applyOnboardingUpdate, userID, string(stepsJSON), u.Completed).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, onboarding.ErrUserNotFound
		}
		return nil, fmt.Errorf("update onboarding: %w", err)
	}
	return decodeOnboarding(raw)
}

func decodeOnboarding(raw []byte) (*onboarding.Onboarding, error) {
	o := onboarding.New()
	if len(raw) == 0 {
		return o, nil
	}
	if err := json.Unmarshal(raw, o); err != nil {
		return nil, fmt.Errorf("decode onboarding: %w", err)
	}
	if o.Steps == nil {
		o.Steps = map[string]onboarding.Step{}
	}
	return o, nil
}
