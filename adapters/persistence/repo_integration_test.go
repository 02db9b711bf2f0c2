package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/superleader/internal/domain/group"
	"github.com/khoahotran/superleader/internal/domain/interaction"
	"github.com/khoahotran/superleader/internal/domain/network"
	"github.com/khoahotran/superleader/internal/domain/onboarding"
	"github.com/khoahotran/superleader/internal/domain/person"
	"github.com/khoahotran/superleader/internal/domain/task"
	"github.com/khoahotran/superleader/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger

	networkRepo     network.Repository
	personRepo      person.Repository
	interactionRepo interaction.Repository
	groupRepo       group.Repository
	taskRepo        task.Repository
	onboardingRepo  onboarding.Repository
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := RunMigrations(dsn); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool
	s.testLogger = logger.NewNopLogger()

	s.networkRepo = NewPostgresNetworkRepo(pool, s.testLogger)
	s.personRepo = NewPostgresPersonRepo(pool, s.testLogger)
	s.interactionRepo = NewPostgresInteractionRepo(pool)
	s.groupRepo = NewPostgresGroupRepo(pool)
	s.taskRepo = NewPostgresTaskRepo(pool, s.testLogger)
	s.onboardingRepo = NewPostgresOnboardingRepo(pool)
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

// seedUser creates a user with the three reserved groups and returns the user id
// plus the group ids by slug.
func (s *RepoIntegrationTestSuite) seedUser(ctx context.Context) (uuid.UUID, map[string]uuid.UUID) {
	userID := uuid.New()
	_, err := s.dbPool.Exec(ctx, `INSERT INTO users (id, email) VALUES ($1, $2)`, userID, userID.String()+"@example.com")
	s.Require().NoError(err)

	groups := map[string]uuid.UUID{}
	for _, slug := range append(network.ReservedSlugs(), "book-club") {
		id := uuid.New()
		_, err := s.dbPool.Exec(ctx, `INSERT INTO groups (id, user_id, name, slug) VALUES ($1, $2, $3, $3)`, id, userID, slug)
		s.Require().NoError(err)
		groups[slug] = id
	}
	return userID, groups
}

func (s *RepoIntegrationTestSuite) seedPerson(ctx context.Context, userID uuid.UUID, name string, score *int) uuid.UUID {
	id := uuid.New()
	_, err := s.dbPool.Exec(ctx,
		`INSERT INTO persons (id, user_id, first_name, completeness_score) VALUES ($1, $2, $3, $4)`,
		id, userID, name, score)
	s.Require().NoError(err)
	return id
}

func (s *RepoIntegrationTestSuite) join(ctx context.Context, userID, groupID, personID uuid.UUID) {
	s.Require().NoError(s.groupRepo.AddMember(ctx, group.Member{GroupID: groupID, PersonID: personID, UserID: userID}))
}

func (s *RepoIntegrationTestSuite) interactDaysAgo(ctx context.Context, userID, personID uuid.UUID, daysAgo int) {
	s.Require().NoError(s.interactionRepo.Save(ctx, &interaction.Interaction{
		ID:        uuid.New(),
		UserID:    userID,
		PersonID:  personID,
		Type:      "call",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -daysAgo),
	}))
}

func intp(v int) *int { return &v }

func (s *RepoIntegrationTestSuite) Test_Completeness_ByTier() {
	ctx := context.Background()
	userID, groups := s.seedUser(ctx)

	alice := s.seedPerson(ctx, userID, "Alice", intp(80))
	s.seedPerson(ctx, userID, "Bob", nil)
	carol := s.seedPerson(ctx, userID, "Carol", intp(50))
	s.join(ctx, userID, groups["inner-5"], alice)
	s.join(ctx, userID, groups["central-50"], alice)
	s.join(ctx, userID, groups["book-club"], carol)

	inner, err := s.networkRepo.ListTierScores(ctx, userID, "inner-5")
	s.Require().NoError(err)
	s.Equal(80, network.AverageScore(inner))

	strategic, err := s.networkRepo.ListTierScores(ctx, userID, "strategic-100")
	s.Require().NoError(err)
	s.Empty(strategic)

	everyone, err := s.networkRepo.ListUnassignedScores(ctx, userID, network.ReservedSlugs())
	s.Require().NoError(err)
	s.Len(everyone, 2, "bob and carol are outside the reserved tiers")
	s.Equal(25, network.AverageScore(everyone))
}

func (s *RepoIntegrationTestSuite) Test_Activity_AdjacentWindowsDoNotOverlap() {
	ctx := context.Background()
	userID, groups := s.seedUser(ctx)

	alice := s.seedPerson(ctx, userID, "Alice", nil)
	bob := s.seedPerson(ctx, userID, "Bob", nil)
	s.join(ctx, userID, groups["inner-5"], alice)
	s.join(ctx, userID, groups["central-50"], alice)

	s.interactDaysAgo(ctx, userID, alice, 0)
	s.interactDaysAgo(ctx, userID, bob, 1)
	s.interactDaysAgo(ctx, userID, bob, 7)
	s.interactDaysAgo(ctx, userID, bob, 8)

	query := network.ActivityQuery{UserID: userID, Days: 7, ReservedSlugs: network.ReservedSlugs(), Timezone: "UTC"}
	current, err := s.networkRepo.AggregateActivity(ctx, query)
	s.Require().NoError(err)
	s.ElementsMatch([]network.ActivityBucket{
		{DayIndex: 6, Tier: network.TierInner5, Count: 1},
		{DayIndex: 6, Tier: network.TierCentral50, Count: 1},
		{DayIndex: 5, Tier: network.TierEveryone, Count: 1},
	}, current)

	query.Offset = 7
	previous, err := s.networkRepo.AggregateActivity(ctx, query)
	s.Require().NoError(err)
	s.ElementsMatch([]network.ActivityBucket{
		{DayIndex: 6, Tier: network.TierEveryone, Count: 1},
		{DayIndex: 5, Tier: network.TierEveryone, Count: 1},
	}, previous)
}

func (s *RepoIntegrationTestSuite) Test_TodayInteractions() {
	ctx := context.Background()
	userID, groups := s.seedUser(ctx)

	alice := s.seedPerson(ctx, userID, "Alice", nil)
	s.join(ctx, userID, groups["strategic-100"], alice)
	s.interactDaysAgo(ctx, userID, alice, 0)
	s.interactDaysAgo(ctx, userID, alice, 3)

	rows, err := s.networkRepo.ListTodayInteractions(ctx, userID, network.ReservedSlugs(), "UTC")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(network.TierStrategic100, rows[0].Tier)
	s.Equal("Alice", rows[0].Person.Name)
}

func (s *RepoIntegrationTestSuite) Test_TierMembership_IgnoresRowsOfAnotherUser() {
	ctx := context.Background()
	userID, groups := s.seedUser(ctx)
	otherUserID, _ := s.seedUser(ctx)

	alice := s.seedPerson(ctx, userID, "Alice", intp(70))
	_, err := s.dbPool.Exec(ctx,
		`INSERT INTO group_members (group_id, person_id, user_id) VALUES ($1, $2, $3)`,
		groups["inner-5"], alice, otherUserID)
	s.Require().NoError(err)
	s.interactDaysAgo(ctx, userID, alice, 0)

	inner, err := s.networkRepo.ListTierScores(ctx, userID, "inner-5")
	s.Require().NoError(err)
	s.Empty(inner)

	everyone, err := s.networkRepo.ListUnassignedScores(ctx, userID, network.ReservedSlugs())
	s.Require().NoError(err)
	s.Equal(70, network.AverageScore(everyone))

	buckets, err := s.networkRepo.AggregateActivity(ctx, network.ActivityQuery{
		UserID: userID, Days: 1, ReservedSlugs: network.ReservedSlugs(), Timezone: "UTC",
	})
	s.Require().NoError(err)
	s.Equal([]network.ActivityBucket{{DayIndex: 0, Tier: network.TierEveryone, Count: 1}}, buckets)

	today, err := s.networkRepo.ListTodayInteractions(ctx, userID, network.ReservedSlugs(), "UTC")
	s.Require().NoError(err)
	s.Require().Len(today, 1)
	s.Equal(network.TierEveryone, today[0].Tier)
}

func (s *RepoIntegrationTestSuite) Test_Onboarding_StoredMergeMatchesApply() {
	ctx := context.Background()
	userID, _ := s.seedUser(ctx)
	done, notDone := true, false

	updates := []onboarding.Update{
		{StepsCompleted: []string{"personal", "import"}},
		{Completed: &done},
		{StepsCompleted: []string{"import", "groups"}, Completed: &notDone},
		{StepsCompleted: []string{"plan"}},
	}

	want := onboarding.New()
	for _, u := range updates {
		s.Require().NoError(want.Apply(u))

		got, err := s.onboardingRepo.ApplyUpdate(ctx, userID, u)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *RepoIntegrationTestSuite) Test_Onboarding_ConcurrentMerges() {
	ctx := context.Background()
	userID, _ := s.seedUser(ctx)

	steps := []string{"personal", "import", "groups", "calendar", "goals", "plan"}
	var wg sync.WaitGroup
	for _, step := range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.onboardingRepo.ApplyUpdate(ctx, userID, onboarding.Update{StepsCompleted: []string{step}})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.onboardingRepo.Get(ctx, userID)
	s.Require().NoError(err)
	s.Len(got.Steps, len(steps))
	for _, step := range steps {
		s.True(got.Steps[step].Completed, step)
	}
	s.False(got.Completed)

	done := true
	got, err = s.onboardingRepo.ApplyUpdate(ctx, userID, onboarding.Update{Completed: &done})
	s.Require().NoError(err)
	s.True(got.Completed)
	s.Len(got.Steps, len(steps))

	_, err = s.onboardingRepo.ApplyUpdate(ctx, uuid.New(), onboarding.Update{Completed: &done})
	s.ErrorIs(err, onboarding.ErrUserNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Tasks_MarkAndLatestPlan() {
	ctx := context.Background()
	userID, _ := s.seedUser(ctx)

	taskID := uuid.New()
	_, err := s.dbPool.Exec(ctx,
		`INSERT INTO task_suggestions (id, user_id, type, content) VALUES ($1, $2, 'follow_up', '{"action":"Call"}')`,
		taskID, userID)
	s.Require().NoError(err)

	sections := fmt.Sprintf(`[{"title":"Inner 5","tasks":[{"id":%q}]}]`, taskID)
	_, err = s.dbPool.Exec(ctx,
		`INSERT INTO action_plans (user_id, executive_summary, group_sections, created_at) VALUES ($1, 'old', '[]', now() - interval '1 day'), ($1, 'new', $2, now())`,
		userID, sections)
	s.Require().NoError(err)

	plan, err := s.taskRepo.FindLatestPlan(ctx, userID)
	s.Require().NoError(err)
	s.Equal("new", plan.ExecutiveSummary)
	s.Equal([]uuid.UUID{taskID}, plan.TaskIDs())

	_, err = s.taskRepo.MarkState(ctx, userID, taskID, task.StateSnoozed, time.Now())
	s.Require().NoError(err)
	marked, err := s.taskRepo.MarkState(ctx, userID, taskID, task.StateCompleted, time.Now())
	s.Require().NoError(err)
	s.NotNil(marked.CompletedAt)
	s.Nil(marked.SnoozedAt)
	s.Equal("Call", marked.Content.Action)

	_, err = s.taskRepo.MarkState(ctx, uuid.New(), taskID, task.StateCompleted, time.Now())
	s.ErrorIs(err, task.ErrSuggestionNotFound)
}

func (s *RepoIntegrationTestSuite) Test_Groups_MembershipAndPersonSummary() {
	ctx := context.Background()
	userID, _ := s.seedUser(ctx)
	personID := s.seedPerson(ctx, userID, "Dana", nil)

	g, err := s.groupRepo.FindBySlug(ctx, userID, "inner-5")
	s.Require().NoError(err)

	m := group.Member{GroupID: g.ID, PersonID: personID, UserID: userID}
	s.NoError(s.groupRepo.AddMember(ctx, m))
	s.NoError(s.groupRepo.AddMember(ctx, m), "adding twice is a no-op")
	s.NoError(s.groupRepo.RemoveMember(ctx, m))
	s.ErrorIs(s.groupRepo.RemoveMember(ctx, m), group.ErrMemberNotFound)

	_, err = s.groupRepo.FindBySlug(ctx, userID, "missing")
	s.ErrorIs(err, group.ErrGroupNotFound)

	summary := person.Summary{Text: "Dana runs ops.", Model: "m", GeneratedAt: time.Now().UTC().Truncate(time.Second)}
	s.Require().NoError(s.personRepo.UpdateSummary(ctx, personID, userID, summary))

	p, err := s.personRepo.FindByID(ctx, personID, userID)
	s.Require().NoError(err)
	s.Require().NotNil(p.AISummary)
	s.Equal(summary.Text, p.AISummary.Text)
	s.Empty(p.CustomFields)

	_, err = s.personRepo.FindByID(ctx, personID, uuid.New())
	s.ErrorIs(err, person.ErrPersonNotFound)
}
