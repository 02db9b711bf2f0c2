package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/superleader/internal/application/service"
	"github.com/khoahotran/superleader/internal/domain/network"
	"github.com/khoahotran/superleader/pkg/apperror"
	"github.com/khoahotran/superleader/pkg/logger"
	"github.com/khoahotran/superleader/pkg/metrics"
)

const completenessCacheName = "completeness"

// CompletenessCacheKey is shared with the worker, which invalidates it.
func CompletenessCacheKey(userID uuid.UUID) string {
	return "network:completeness:" + userID.String()
}

type NetworkUseCase struct {
	repo     network.Repository
	cache    service.Cache
	cacheTTL time.Duration
	metrics  metrics.Recorder
	logger   logger.Logger
	tracer   trace.Tracer
}

// NewNetworkUseCase wires the aggregators. cache may be nil, which disables caching.
func NewNetworkUseCase(repo network.Repository, cache service.Cache, cacheTTL time.Duration, rec metrics.Recorder, log logger.Logger) *NetworkUseCase {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &NetworkUseCase{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  rec,
		logger:   log,
		tracer:   otel.Tracer("superleader/network"),
	}
}

func (uc *NetworkUseCase) observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, apperror.ErrInvalidInput):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeFailed
	}
	uc.metrics.ObserveOperation(op, outcome, time.Since(start))
}

// GetNetworkCompleteness averages completeness scores per reserved tier and for
// everyone outside the reserved tiers.
func (uc *NetworkUseCase) GetNetworkCompleteness(ctx context.Context, userID uuid.UUID) (out *network.Completeness, err error) {
	defer func(start time.Time) { uc.observe("network.completeness", start, err) }(time.Now())

	if userID == uuid.Nil {
		return nil, ErrMissingUserID.New("GetNetworkCompleteness", nil)
	}

	ctx, span := uc.tracer.Start(ctx, "NetworkUseCase.GetNetworkCompleteness",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	l := uc.logger.With(zap.String("user_id", userID.String()))

	if cached, ok := uc.cachedCompleteness(ctx, l, userID); ok {
		return cached, nil
	}

	var tierScores [3]int
	var everyone int

	g, gctx := errgroup.WithContext(ctx)
	for i, tier := range network.ReservedTiers {
		g.Go(func() error {
			scores, err := uc.repo.ListTierScores(gctx, userID, string(tier))
			if err != nil {
				return fmt.Errorf("tier %s: %w", tier, err)
			}
			tierScores[i] = network.AverageScore(scores)
			return nil
		})
	}
	g.Go(func() error {
		scores, err := uc.repo.ListUnassignedScores(gctx, userID, network.ReservedSlugs())
		if err != nil {
			return fmt.Errorf("everyone: %w", err)
		}
		everyone = network.AverageScore(scores)
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		l.Error("Failed to fetch network completeness", err)
		return nil, ErrFetchCompleteness.New(fmt.Sprintf("user_id=%s", userID), err)
	}

	out = &network.Completeness{
		Inner5:       tierScores[0],
		Central50:    tierScores[1],
		Strategic100: tierScores[2],
		Everyone:     everyone,
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, CompletenessCacheKey(userID), out, uc.cacheTTL); err != nil {
			l.Warn("Failed to cache network completeness", zap.Error(err))
		}
	}
	return out, nil
}

func (uc *NetworkUseCase) cachedCompleteness(ctx context.Context, l logger.Logger, userID uuid.UUID) (*network.Completeness, bool) {
	if uc.cache == nil {
		return nil, false
	}
	var cached network.Completeness
	found, err := uc.cache.Get(ctx, CompletenessCacheKey(userID), &cached)
	if err != nil {
		l.Warn("Completeness cache lookup failed", zap.Error(err))
		return nil, false
	}
	uc.metrics.RecordCacheLookup(completenessCacheName, found)
	if !found {
		return nil, false
	}
	return &cached, true
}

// GetNetworkActivity returns per-tier daily interaction counts for the last
// days days (current period) and the days before that (previous period).
// A period whose aggregation fails comes back as zeros.
func (uc *NetworkUseCase) GetNetworkActivity(ctx context.Context, userID uuid.UUID, days int, timezone string) (out *network.Activity, err error) {
	defer func(start time.Time) { uc.observe("network.activity", start, err) }(time.Now())

	if userID == uuid.Nil {
		return nil, ErrMissingUserID.New("GetNetworkActivity", nil)
	}
	if days <= 0 || days > MaxActivityDays {
		return nil, ErrInvalidWindow.New(fmt.Sprintf("days=%d", days), nil)
	}
	timezone, err = normalizeTimezone(timezone)
	if err != nil {
		return nil, ErrInvalidTimezone.New(fmt.Sprintf("timezone=%s", timezone), err)
	}

	ctx, span := uc.tracer.Start(ctx, "NetworkUseCase.GetNetworkActivity",
		trace.WithAttributes(
			attribute.String("user_id", userID.String()),
			attribute.Int("days", days),
			attribute.String("timezone", timezone),
		))
	defer span.End()

	l := uc.logger.With(
		zap.String("user_id", userID.String()),
		zap.Int("days", days),
		zap.String("timezone", timezone),
	)

	current, err := uc.activityPeriod(ctx, l, network.ActivityQuery{
		UserID: userID, Days: days, Offset: 0, ReservedSlugs: network.ReservedSlugs(), Timezone: timezone,
	}, "current")
	if err != nil {
		span.RecordError(err)
		return nil, ErrFetchActivity.New(fmt.Sprintf("user_id=%s period=current", userID), err)
	}

	previous, err := uc.activityPeriod(ctx, l, network.ActivityQuery{
		UserID: userID, Days: days, Offset: days, ReservedSlugs: network.ReservedSlugs(), Timezone: timezone,
	}, "previous")
	if err != nil {
		span.RecordError(err)
		return nil, ErrFetchActivity.New(fmt.Sprintf("user_id=%s period=previous", userID), err)
	}

	return &network.Activity{
		CurrentPeriod:   current,
		PreviousPeriod:  previous,
		TotalActivities: current.Sum(),
	}, nil
}

// activityPeriod only returns an error when the request itself is gone;
// aggregation failures degrade to an all-zero period.
func (uc *NetworkUseCase) activityPeriod(ctx context.Context, l logger.Logger, q network.ActivityQuery, period string) (network.TierSeries, error) {
	series := network.NewTierSeries(q.Days)

	buckets, err := uc.repo.AggregateActivity(ctx, q)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return network.TierSeries{}, err
		}
		l.Warn("Activity aggregation failed, returning zeros for period",
			zap.String("period", period), zap.Int("offset", q.Offset), zap.Error(err))
		uc.metrics.RecordDegradedPeriod(period)
		return series, nil
	}

	for _, b := range buckets {
		if b.DayIndex < 0 || b.DayIndex >= q.Days {
			l.Debug("Dropping activity bucket outside window", zap.Int("day_index", b.DayIndex))
			continue
		}
		counts := series.For(b.Tier)
		if counts == nil {
			continue
		}
		counts[b.DayIndex] += b.Count
	}
	return series, nil
}

// GetTodaysActivity groups today's interactions by tier, with the distinct people involved.
func (uc *NetworkUseCase) GetTodaysActivity(ctx context.Context, userID uuid.UUID, timezone string) (out *network.TodaysActivity, err error) {
	defer func(start time.Time) { uc.observe("network.today", start, err) }(time.Now())

	if userID == uuid.Nil {
		return nil, ErrMissingUserID.New("GetTodaysActivity", nil)
	}
	timezone, err = normalizeTimezone(timezone)
	if err != nil {
		return nil, ErrInvalidTimezone.New(fmt.Sprintf("timezone=%s", timezone), err)
	}

	ctx, span := uc.tracer.Start(ctx, "NetworkUseCase.GetTodaysActivity",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()

	rows, err := uc.repo.ListTodayInteractions(ctx, userID, network.ReservedSlugs(), timezone)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to fetch today's activity", err,
			zap.String("user_id", userID.String()), zap.String("timezone", timezone))
		return nil, ErrFetchTodaysActivity.New(fmt.Sprintf("user_id=%s timezone=%s", userID, timezone), err)
	}

	out = &network.TodaysActivity{}
	seen := make(map[network.Tier]map[uuid.UUID]struct{}, 4)
	for _, tier := range []network.Tier{network.TierInner5, network.TierCentral50, network.TierStrategic100, network.TierEveryone} {
		out.For(tier).People = []network.PersonRef{}
		seen[tier] = map[uuid.UUID]struct{}{}
	}

	for _, r := range rows {
		ta := out.For(r.Tier)
		if ta == nil {
			continue
		}
		ta.Count++
		if _, ok := seen[r.Tier][r.Person.ID]; ok {
			continue
		}
		seen[r.Tier][r.Person.ID] = struct{}{}
		ta.People = append(ta.People, r.Person)
	}
	return out, nil
}

func normalizeTimezone(tz string) (string, error) {
	if tz == "" {
		return "UTC", nil
	}
	if tz == "Local" {
		return tz, errors.New("Local is not a portable timezone")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return tz, err
	}
	return tz, nil
}
