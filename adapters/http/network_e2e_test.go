package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/superleader/adapters/persistence"
	actionplanUC "github.com/khoahotran/superleader/internal/application/usecase/actionplan"
	groupUC "github.com/khoahotran/superleader/internal/application/usecase/group"
	networkUC "github.com/khoahotran/superleader/internal/application/usecase/network"
	onboardingUC "github.com/khoahotran/superleader/internal/application/usecase/onboarding"
	personUC "github.com/khoahotran/superleader/internal/application/usecase/person"
	"github.com/khoahotran/superleader/internal/domain/network"
	"github.com/khoahotran/superleader/pkg/auth"
	"github.com/khoahotran/superleader/pkg/logger"
)

type NetworkE2ETestSuite struct {
	suite.Suite
	router      *gin.Engine
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	redisC      testcontainers.Container
	rdb         *redis.Client
	token       string
	userID      uuid.UUID
	alice, bob  uuid.UUID
}

func TestNetworkE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") == "" {
		t.Skip("Skipping E2E tests. Set E2E_TESTS=1 to run.")
	}
	suite.Run(t, new(NetworkE2ETestSuite))
}

func (s *NetworkE2ETestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("e2e_db"),
		postgres.WithUsername("e2e"),
		postgres.WithPassword("e2e"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(persistence.RunMigrations(dsn))

	s.dbPool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)

	s.userID, s.alice, s.bob = uuid.New(), uuid.New(), uuid.New()
	_, err = s.dbPool.Exec(ctx, `INSERT INTO users (id, email) VALUES ($1, 'e2e@example.com')`, s.userID)
	s.Require().NoError(err)
	for _, slug := range network.ReservedSlugs() {
		_, err = s.dbPool.Exec(ctx, `INSERT INTO groups (user_id, name, slug) VALUES ($1, $2, $2)`, s.userID, slug)
		s.Require().NoError(err)
	}
	_, err = s.dbPool.Exec(ctx,
		`INSERT INTO persons (id, user_id, first_name, completeness_score) VALUES ($1, $3, 'Alice', 90), ($2, $3, 'Bob', 40)`,
		s.alice, s.bob, s.userID)
	s.Require().NoError(err)

	s.redisC, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	s.Require().NoError(err)
	redisAddr, err := s.redisC.Endpoint(ctx, "")
	s.Require().NoError(err)
	s.rdb = redis.NewClient(&redis.Options{Addr: redisAddr})

	log := logger.NewNopLogger()
	cache := persistence.NewRedisCache(s.rdb, log)
	jwtSvc := auth.NewJWTService("e2e-secret", time.Hour)
	s.token, err = jwtSvc.GenerateToken(s.userID)
	s.Require().NoError(err)

	personRepo := persistence.NewPostgresPersonRepo(s.dbPool, log)
	gin.SetMode(gin.TestMode)
	s.router = NewRouter(RouterDeps{
		Logger:     log,
		JWT:        jwtSvc,
		Network:    NewNetworkHandler(networkUC.NewNetworkUseCase(persistence.NewPostgresNetworkRepo(s.dbPool, log), cache, 5*time.Minute, nil, log)),
		ActionPlan: NewActionPlanHandler(actionplanUC.NewActionPlanUseCase(persistence.NewPostgresTaskRepo(s.dbPool, log), nil, log)),
		Onboarding: NewOnboardingHandler(onboardingUC.NewOnboardingUseCase(persistence.NewPostgresOnboardingRepo(s.dbPool), nil, log)),
		Person:     NewPersonHandler(personUC.NewPersonUseCase(personRepo, persistence.NewPostgresInteractionRepo(s.dbPool), nil, nil, log)),
		Group:      NewGroupHandler(groupUC.NewMembershipUseCase(persistence.NewPostgresGroupRepo(s.dbPool), personRepo, cache, nil, log)),
	})
}

func (s *NetworkE2ETestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.redisC != nil {
		_ = s.redisC.Terminate(context.Background())
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *NetworkE2ETestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *NetworkE2ETestSuite) Test_Network_Flow() {
	rr := s.request(http.MethodGet, "/api/network/completeness", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"inner5":0,"central50":0,"strategic100":0,"everyone":65}`, rr.Body.String())

	rr = s.request(http.MethodPut, "/api/groups/inner-5/members/"+s.alice.String(), nil)
	s.Require().Equal(http.StatusNoContent, rr.Code)

	rr = s.request(http.MethodGet, "/api/network/completeness", nil)
	s.JSONEq(`{"inner5":90,"central50":0,"strategic100":0,"everyone":40}`, rr.Body.String())

	rr = s.request(http.MethodDelete, "/api/groups/inner-5/members/"+s.alice.String(), nil)
	s.Require().Equal(http.StatusNoContent, rr.Code)
	rr = s.request(http.MethodGet, "/api/network/completeness", nil)
	s.JSONEq(`{"inner5":0,"central50":0,"strategic100":0,"everyone":65}`, rr.Body.String())

	rr = s.request(http.MethodPut, "/api/groups/inner-5/members/"+s.alice.String(), nil)
	s.Require().Equal(http.StatusNoContent, rr.Code)
	rr = s.request(http.MethodGet, "/api/network/completeness", nil)
	s.JSONEq(`{"inner5":90,"central50":0,"strategic100":0,"everyone":40}`, rr.Body.String())

	rr = s.request(http.MethodPost, "/api/people/"+s.alice.String()+"/interactions", gin.H{"type": "coffee"})
	s.Require().Equal(http.StatusCreated, rr.Code)

	rr = s.request(http.MethodGet, "/api/network/activity?days=3&timezone=UTC", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var activity network.Activity
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &activity))
	s.Equal([]int{0, 0, 1}, activity.CurrentPeriod.Inner5)
	s.Equal([]int{0, 0, 0}, activity.PreviousPeriod.Inner5)
	s.Equal(1, activity.TotalActivities)

	rr = s.request(http.MethodGet, "/api/network/today?timezone=UTC", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var today network.TodaysActivity
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &today))
	s.Equal(1, today.Inner5.Count)
	s.Equal(0, today.Everyone.Count)
}

func (s *NetworkE2ETestSuite) Test_Onboarding_And_Progress() {
	rr := s.request(http.MethodPatch, "/api/onboarding", gin.H{"steps_completed": []string{"personal"}})
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.request(http.MethodGet, "/api/onboarding", nil)
	s.JSONEq(`{"onboarding_completed":false,"steps":{"personal":{"completed":true}}}`, rr.Body.String())

	rr = s.request(http.MethodPatch, "/api/onboarding", gin.H{})
	s.Equal(http.StatusBadRequest, rr.Code)

	rr = s.request(http.MethodGet, "/api/action-plan/progress", nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"plan_id":null,"executive_summary":"","progress":null,"sections":[]}`, rr.Body.String())
}
