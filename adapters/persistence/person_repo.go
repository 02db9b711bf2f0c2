package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/domain/customfield"
	"github.com/khoahotran/superleader/internal/domain/person"
	"github.com/khoahotran/superleader/pkg/logger"
)

type postgresPersonRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPersonRepo(db *pgxpool.Pool, logger logger.Logger) person.Repository {
	return &postgresPersonRepo{db: db, logger: logger}
}

func (r *postgresPersonRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*person.Person, error) {
	query, args, err := psql.Select(
		"id", "user_id", "first_name", "last_name", "bio",
		"completeness_score", "follow_up_score", "ai_summary", "custom_fields",
		"created_at", "updated_at",
	).From("persons").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build person query: %w", err)
	}

	p := &person.Person{}
	var summaryBytes, fieldsBytes []byte
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Bio,
		&p.CompletenessScore, &p.FollowUpScore, &summaryBytes, &fieldsBytes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, person.ErrPersonNotFound
		}
		return nil, fmt.Errorf("scan person: %w", err)
	}

	if len(summaryBytes) > 0 {
		var s person.Summary
		if err := json.Unmarshal(summaryBytes, &s); err != nil {
			r.logger.Warn("Failed to unmarshal ai_summary", zap.String("person_id", id.String()), zap.Error(err))
		} else {
			p.AISummary = &s
		}
	}

	p.CustomFields = []customfield.Field{}
	if err := json.Unmarshal(fieldsBytes, &p.CustomFields); err != nil {
		r.logger.Warn("Failed to unmarshal custom_fields", zap.String("person_id", id.String()), zap.Error(err))
		p.CustomFields = []customfield.Field{}
	}
	return p, nil
}

func (r *postgresPersonRepo) UpdateSummary(ctx context.Context, id, userID uuid.UUID, summary person.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	query, args, err := psql.Update("persons").
		Set("ai_summary", raw).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update summary query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return person.ErrPersonNotFound
	}
	return nil
}
