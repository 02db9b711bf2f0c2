package persistence

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/superleader/internal/domain/group"
)

type postgresGroupRepo struct {
	db *pgxpool.Pool
}

func NewPostgresGroupRepo(db *pgxpool.Pool) group.Repository {
	return &postgresGroupRepo{db: db}
}

func (r *postgresGroupRepo) FindBySlug(ctx context.Context, userID uuid.UUID, slug string) (*group.Group, error) {
	query, args, err := psql.Select("id", "user_id", "name", "slug", "created_at").
		From("groups").
		Where(sq.Eq{"user_id": userID, "slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build group query: %w", err)
	}

	g := &group.Group{}
	err = r.db.QueryRow(ctx, query, args...).Scan(&g.ID, &g.UserID, &g.Name, &g.Slug, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return g, nil
}

func (r *postgresGroupRepo) AddMember(ctx context.Context, m group.Member) error {
	query, args, err := psql.Insert("group_members").
		Columns("group_id", "person_id", "user_id").
		Values(m.GroupID, m.PersonID, m.UserID).
		Suffix("ON CONFLICT (group_id, person_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add member query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert group member: %w", err)
	}
	return nil
}

func (r *postgresGroupRepo) RemoveMember(ctx context.Context, m group.Member) error {
	query, args, err := psql.Delete("group_members").
		Where(sq.Eq{"group_id": m.GroupID, "person_id": m.PersonID, "user_id": m.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove member query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete group member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return group.ErrMemberNotFound
	}
	return nil
}
