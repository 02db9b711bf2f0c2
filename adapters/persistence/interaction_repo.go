package persistence

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/superleader/internal/domain/interaction"
)

type postgresInteractionRepo struct {
	db *pgxpool.Pool
}

func NewPostgresInteractionRepo(db *pgxpool.Pool) interaction.Repository {
	return &postgresInteractionRepo{db: db}
}

func (r *postgresInteractionRepo) Save(ctx context.Context, i *interaction.Interaction) error {
	query, args, err := psql.Insert("interactions").
		Columns("id", "user_id", "person_id", "type", "note", "created_at").
		Values(i.ID, i.UserID, i.PersonID, i.Type, i.Note, i.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert interaction query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (r *postgresInteractionRepo) ListRecentByPerson(ctx context.Context, personID, userID uuid.UUID, limit int) ([]*interaction.Interaction, error) {
	query, args, err := psql.Select("id", "user_id", "person_id", "type", "note", "created_at").
		From("interactions").
		Where(sq.Eq{"person_id": personID, "user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list interactions query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*interaction.Interaction, error) {
		i := &interaction.Interaction{}
		err := row.Scan(&i.ID, &i.UserID, &i.PersonID, &i.Type, &i.Note, &i.CreatedAt)
		return i, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan interactions: %w", err)
	}
	return out, nil
}
