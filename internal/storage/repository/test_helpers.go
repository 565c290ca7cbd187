package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/vpn-miniapp/internal/migrations"
)

// setupTestDatabase поднимает контейнер PostgreSQL, накатывает миграции
// и возвращает готовое хранилище.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))

	cleanup := func() {
		storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, tgUserID int64, firstName, role string, balance float64) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO users (tg_user_id, first_name, role, balance)
		VALUES ($1, $2, $3, $4)`,
		tgUserID, firstName, role, balance)
	require.NoError(t, err)
}

// CreateInvite создает тестовый код приглашения
func (f *TestDataFactory) CreateInvite(t *testing.T, code, role string, isUsed bool) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO invites (code, role, is_used)
		VALUES ($1, $2, $3)`,
		code, role, isUsed)
	require.NoError(t, err)
}

// CreateConfig создает тестовую конфигурацию и возвращает её идентификатор
func (f *TestDataFactory) CreateConfig(t *testing.T, tgUserID int64, title, configText string, isActive bool) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO user_configs (tg_user_id, title, config_text, is_active)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		tgUserID, title, configText, isActive).Scan(&id)
	require.NoError(t, err)
	return id
}
