//go:build integration

package integration

// Integration tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/integration/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/infra"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/router"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/service"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	token  string
	db     *gorm.DB
	rdb    *redis.Client
	repo   repository.ParticipantRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("checkin_test"),
		tcPostgres.WithUsername("checkin"),
		tcPostgres.WithPassword("checkin"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "integration-test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed an admin through the real auth service so the bcrypt hash is honest
	staffRepo := repository.NewStaffRepository(db)
	authSvc := service.NewAuthService(staffRepo, cfg)
	_, err = authSvc.CreateStaff(ctx, dto.CreateStaffRequest{
		Username: "admin", Name: "Integration Admin", Password: "integration-pass", Role: "admin",
	})
	require.NoError(t, err)

	dispatcher := worker.NewDispatcher(rdb)
	r := router.New(cfg, db, rdb, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		map[string]string{"username": "admin", "password": "integration-pass"}, "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server: srv,
		token:  loginBody.AccessToken,
		db:     db,
		rdb:    rdb,
		repo:   repository.NewParticipantRepository(db),
	}
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestIntegration_CheckinLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// Register a participant through the API
	regResp := do(t, env.server, "POST", "/v1/participants",
		map[string]string{"name": "Lifecycle Tester", "email": "lifecycle@example.com"}, env.token)
	require.Equal(t, http.StatusCreated, regResp.StatusCode)
	var participant dto.ParticipantResponse
	decodeJSON(t, regResp, &participant)
	require.NotEmpty(t, participant.UniqueID)

	// Issue a token directly through the service layer; the HTTP QR
	// endpoint returns a PNG, which is awkward to decode in a test.
	ticketSvc := service.NewTicketService(env.repo, worker.NewDispatcher(env.rdb), &config.Config{})
	token, err := ticketSvc.IssueToken(ctx, participant.UniqueID)
	require.NoError(t, err)

	// First scan succeeds
	scanResp := do(t, env.server, "POST", "/api/checkin",
		dto.CheckinRequest{Credential: participant.UniqueID + "|" + token, Type: "qrcode"}, "")
	require.Equal(t, http.StatusOK, scanResp.StatusCode)
	var scan dto.CheckinResponse
	decodeJSON(t, scanResp, &scan)
	assert.True(t, scan.OK)
	assert.Equal(t, "Lifecycle Tester", scan.ParticipantName)

	// Hash is cleared after the QR check-in
	p, err := env.repo.FindByUniqueID(ctx, participant.UniqueID)
	require.NoError(t, err)
	assert.True(t, p.Present)
	assert.Nil(t, p.QRHash)

	// Re-scan reads as a duplicate, not as a forged code
	dupResp := do(t, env.server, "POST", "/api/checkin",
		dto.CheckinRequest{Credential: participant.UniqueID + "|" + token, Type: "qrcode"}, "")
	require.Equal(t, http.StatusConflict, dupResp.StatusCode)
	var dup dto.CheckinResponse
	decodeJSON(t, dupResp, &dup)
	assert.False(t, dup.OK)
	assert.Equal(t, "AlreadyCheckedIn", dup.Kind)
}

func TestIntegration_WrongToken_Rejected(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	now := time.Now()
	stored := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	require.NoError(t, env.repo.Create(ctx, &model.Participant{
		UniqueID: "SEMNASTI2025-100", Name: "Wrong Token", Email: "wrong@example.com",
		RegisteredAt: &now, QRHash: &stored,
	}))

	resp := do(t, env.server, "POST", "/api/checkin",
		dto.CheckinRequest{
			Credential: "SEMNASTI2025-100|ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			Type:       "qrcode",
		}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.CheckinResponse
	decodeJSON(t, resp, &body)
	assert.True(t, body.InvalidQR)

	// State untouched
	p, err := env.repo.FindByUniqueID(ctx, "SEMNASTI2025-100")
	require.NoError(t, err)
	assert.False(t, p.Present)
	require.NotNil(t, p.QRHash)
	assert.Equal(t, stored, *p.QRHash)
}

func TestIntegration_ConcurrentConditionalUpdate_OneWinner(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, env.repo.Create(ctx, &model.Participant{
		UniqueID: "SEMNASTI2025-101", Name: "Race Target", Email: "race@example.com",
		RegisteredAt: &now,
	}))

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			updated, err := env.repo.ConditionalMarkPresent(ctx, "SEMNASTI2025-101", true)
			assert.NoError(t, err)
			results[i] = updated
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, won := range results {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "the conditional UPDATE admits exactly one winner")
}

func TestIntegration_DispatcherQueueRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	dispatcher := worker.NewDispatcher(env.rdb)
	payload := worker.TicketEmailPayload{
		UniqueID:  "SEMNASTI2025-102",
		Name:      "Queued",
		Email:     "queued@example.com",
		QRPayload: "SEMNASTI2025-102|deadbeef",
	}
	require.NoError(t, dispatcher.EnqueueTicketEmail(ctx, payload))

	raw, err := env.rdb.BRPop(ctx, 5*time.Second, worker.QueueTicketEmail).Result()
	require.NoError(t, err)
	require.Len(t, raw, 2)

	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw[1]), &job))
	var got worker.TicketEmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, payload.UniqueID, got.UniqueID)
	assert.Equal(t, payload.Email, got.Email)
	assert.Equal(t, payload.QRPayload, got.QRPayload)
}
