package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/api"
	"github.com/dragomirurdov/AtrijumApi/internal/api/middleware"
	"github.com/dragomirurdov/AtrijumApi/internal/config"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/metrics"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"github.com/dragomirurdov/AtrijumApi/internal/repository/memory"
	repoPostgres "github.com/dragomirurdov/AtrijumApi/internal/repository/postgres"
	"github.com/dragomirurdov/AtrijumApi/internal/service"
	"github.com/dragomirurdov/AtrijumApi/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated
// connection. It is skipped in -short mode.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_atrijum"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	db, err := repoPostgres.NewConnection(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	testDB.DB = db

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"session_tokens", "users"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	cfg := config.Default()
	cfg.Port = "0"
	cfg.Environment = "test"
	cfg.DatabaseURL = ""
	cfg.JWTSecret = "test-jwt-secret-key-for-testing-only"
	cfg.JWTTTL = time.Hour
	cfg.BcryptCost = bcrypt.MinCost
	cfg.AuthRatePerMinute = 600
	cfg.AuthRateBurst = 100
	return cfg
}

// RecordingMailer keeps confirmation mails in memory.
type RecordingMailer struct {
	mu      sync.Mutex
	secrets map[string]string
	Err     error
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{secrets: make(map[string]string)}
}

func (m *RecordingMailer) SendUserConfirmation(ctx context.Context, user *domain.User, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if user.ActivationSecret != nil {
		m.secrets[strings.ToLower(user.Email)] = *user.ActivationSecret
	}
	return nil
}

// SecretFor returns the activation secret last mailed to email.
func (m *RecordingMailer) SecretFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secrets[strings.ToLower(email)]
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Mailer   *RecordingMailer
	Registry *prometheus.Registry
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by PostgreSQL
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	ts := newServer(t, repoPostgres.NewRepositories(testDB.DB), TestConfig())
	ts.DB = testDB
	return ts
}

// NewMemoryTestServer creates a test server over in-memory repositories.
func NewMemoryTestServer(t *testing.T) *TestServer {
	t.Helper()

	repos := &repository.Repositories{
		User:         memory.NewUserRepository(),
		SessionToken: memory.NewSessionTokenRepository(),
	}
	return newServer(t, repos, TestConfig())
}

func newServer(t *testing.T, repos *repository.Repositories, cfg *config.Config) *TestServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	tr := i18n.NewTranslator(cfg.DefaultLanguage)
	mailer := NewRecordingMailer()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	hub := websocket.NewHub(logger)
	go hub.Run()

	services := service.NewServices(repos, mailer, cfg,
		service.WithLogger(logger),
		service.WithMetrics(collector),
		service.WithEvents(hub),
	)
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.AuthRatePerMinute, cfg.AuthRateBurst), tr)

	router := api.NewRouter(api.Deps{
		Services:       services,
		Hub:            hub,
		Translator:     tr,
		RateLimiter:    limiter,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
		Logger:         logger,
	}, cfg)

	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
		limiter.Stop()
	})

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Mailer:   mailer,
		Registry: registry,
		Config:   cfg,
	}
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http")
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}
