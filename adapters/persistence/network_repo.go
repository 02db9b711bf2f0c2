package persistence

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/domain/network"
	"github.com/khoahotran/superleader/pkg/logger"
)

type postgresNetworkRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresNetworkRepo(db *pgxpool.Pool, logger logger.Logger) network.Repository {
	return &postgresNetworkRepo{db: db, logger: logger}
}

const reservedMembershipExists = `EXISTS (
	SELECT 1
	FROM group_members gm
	JOIN groups g ON g.id = gm.group_id
	WHERE gm.person_id = p.id
	  AND gm.user_id = p.user_id
	  AND g.user_id = p.user_id
	  AND g.slug = ANY(?)
)`

func (r *postgresNetworkRepo) ListTierScores(ctx context.Context, userID uuid.UUID, slug string) ([]*int, error) {
	query, args, err := psql.Select("p.completeness_score").
		From("persons p").
		Join("group_members gm ON gm.person_id = p.id").
		Join("groups g ON g.id = gm.group_id").
		Where(sq.Eq{"p.user_id": userID, "gm.user_id": userID, "g.user_id": userID, "g.slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tier scores query: %w", err)
	}
	return r.queryScores(ctx, query, args...)
}

func (r *postgresNetworkRepo) ListUnassignedScores(ctx context.Context, userID uuid.UUID, reservedSlugs []string) ([]*int, error) {
	query, args, err := psql.Select("p.completeness_score").
		From("persons p").
		Where(sq.Eq{"p.user_id": userID}).
		Where(sq.Expr("NOT "+reservedMembershipExists, reservedSlugs)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unassigned scores query: %w", err)
	}
	return r.queryScores(ctx, query, args...)
}

func (r *postgresNetworkRepo) queryScores(ctx context.Context, query string, args ...any) ([]*int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*int, error) {
		var score *int
		err := row.Scan(&score)
		return score, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan scores: %w", err)
	}
	return scores, nil
}

func (r *postgresNetworkRepo) AggregateActivity(ctx context.Context, q network.ActivityQuery) ([]network.ActivityBucket, error) {
	const query = `SELECT day_index, tier, activity_count FROM get_network_activity($1, $2, $3, $4, $5)`

	rows, err := r.db.Query(ctx, query, q.UserID, q.Days, q.Offset, q.ReservedSlugs, q.Timezone)
	if err != nil {
		return nil, fmt.Errorf("call get_network_activity: %w", err)
	}
	buckets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (network.ActivityBucket, error) {
		var (
			b     network.ActivityBucket
			tier  string
			count int64
		)
		if err := row.Scan(&b.DayIndex, &tier, &count); err != nil {
			return b, err
		}
		b.Tier = network.Tier(tier)
		b.Count = int(count)
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan activity buckets: %w", err)
	}

	r.logger.Debug("Aggregated network activity",
		zap.String("user_id", q.UserID.String()),
		zap.Int("offset", q.Offset),
		zap.Int("buckets", len(buckets)))
	return buckets, nil
}

func (r *postgresNetworkRepo) ListTodayInteractions(ctx context.Context, userID uuid.UUID, reservedSlugs []string, timezone string) ([]network.TodayInteraction, error) {
	const query = `
		WITH today AS (
			SELECT i.id, i.person_id, i.created_at,
			       TRIM(p.first_name || ' ' || p.last_name) AS person_name
			FROM interactions i
			JOIN persons p ON p.id = i.person_id
			WHERE i.user_id = $1
			  AND (i.created_at AT TIME ZONE $3)::date = (now() AT TIME ZONE $3)::date
		)
		SELECT t.id, t.person_id, t.person_name, g.slug AS tier, t.created_at
		FROM today t
		JOIN group_members gm ON gm.person_id = t.person_id AND gm.user_id = $1
		JOIN groups g ON g.id = gm.group_id AND g.user_id = $1
		WHERE g.slug = ANY($2)
		UNION ALL
		SELECT t.id, t.person_id, t.person_name, 'everyone' AS tier, t.created_at
		FROM today t
		WHERE NOT EXISTS (
			SELECT 1
			FROM group_members gm
			JOIN groups g ON g.id = gm.group_id
			WHERE gm.person_id = t.person_id
			  AND gm.user_id = $1
			  AND g.user_id = $1
			  AND g.slug = ANY($2)
		)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, reservedSlugs, timezone)
	if err != nil {
		return nil, fmt.Errorf("query today interactions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (network.TodayInteraction, error) {
		var (
			ti   network.TodayInteraction
			tier string
		)
		err := row.Scan(&ti.InteractionID, &ti.Person.ID, &ti.Person.Name, &tier, &ti.CreatedAt)
		ti.Tier = network.Tier(tier)
		return ti, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan today interactions: %w", err)
	}
	return out, nil
}
