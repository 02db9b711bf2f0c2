package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/domain/task"
	"github.com/khoahotran/superleader/pkg/logger"
)

type postgresTaskRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresTaskRepo(db *pgxpool.Pool, logger logger.Logger) task.Repository {
	return &postgresTaskRepo{db: db, logger: logger}
}

var suggestionColumns = []string{
	"id", "user_id", "person_id", "type", "content",
	"end_at", "completed_at", "skipped_at", "snoozed_at", "created_at",
}

func (r *postgresTaskRepo) scanSuggestion(row pgx.Row) (*task.Suggestion, error) {
	s := &task.Suggestion{}
	var contentBytes []byte
	err := row.Scan(
		&s.ID, &s.UserID, &s.PersonID, &s.Type, &contentBytes,
		&s.EndAt, &s.CompletedAt, &s.SkippedAt, &s.SnoozedAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(contentBytes) > 0 {
		if err := json.Unmarshal(contentBytes, &s.Content); err != nil {
			r.logger.Warn("Failed to unmarshal task content", zap.String("task_id", s.ID.String()), zap.Error(err))
		}
	}
	return s, nil
}

func (r *postgresTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*task.Suggestion, error) {
	query, args, err := psql.Select(suggestionColumns...).
		From("task_suggestions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list suggestions query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*task.Suggestion, error) {
		return r.scanSuggestion(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan suggestions: %w", err)
	}
	return out, nil
}

func (r *postgresTaskRepo) FindLatestPlan(ctx context.Context, userID uuid.UUID) (*task.ActionPlan, error) {
	query, args, err := psql.Select("id", "user_id", "executive_summary", "group_sections", "created_at").
		From("action_plans").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest plan query: %w", err)
	}

	p := &task.ActionPlan{}
	var sectionsBytes []byte
	err = r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.UserID, &p.ExecutiveSummary, &sectionsBytes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrActionPlanNotFound
		}
		return nil, fmt.Errorf("scan action plan: %w", err)
	}

	if err := json.Unmarshal(sectionsBytes, &p.GroupSections); err != nil {
		r.logger.Warn("Failed to unmarshal group_sections", zap.String("plan_id", p.ID.String()), zap.Error(err))
		p.GroupSections = []task.GroupSection{}
	}
	return p, nil
}

// MarkState sets the marker column for state and clears the other two in one statement.
func (r *postgresTaskRepo) MarkState(ctx context.Context, userID, taskID uuid.UUID, state task.State, at time.Time) (*task.Suggestion, error) {
	markers := &task.Suggestion{}
	if err := markers.Mark(state, at); err != nil {
		return nil, err
	}

	query, args, err := psql.Update("task_suggestions").
		Set("completed_at", markers.CompletedAt).
		Set("skipped_at", markers.SkippedAt).
		Set("snoozed_at", markers.SnoozedAt).
		Where(sq.Eq{"id": taskID, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(suggestionColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build mark state query: %w", err)
	}

	s, err := r.scanSuggestion(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("mark suggestion %s: %w", taskID, err)
	}
	return s, nil
}
