package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twotier-board/internal/bootstrap"
	"twotier-board/internal/config"
	"twotier-board/internal/repository"
	"twotier-board/internal/testutil"
)

// isolateEnv keeps config.Load away from local config files and ambient variables.
func isolateEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("DOTENV_FILE", filepath.Join(dir, "missing.env"))
	for _, key := range []string{"GIN_MODE", "REDIS_ADDR", "RABBITMQ_URL", "DB_PARAMS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNewFailsWhenMySQLUnreachable(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := bootstrap.New(ctx)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, repository.ErrSchemaBootstrap)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GIN_MODE", "prod")

	app, err := bootstrap.New(context.Background())
	assert.Nil(t, app)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrSchemaBootstrap)
}

func TestNewWithDBFailsWhenSchemaCannotBeCreated(t *testing.T) {
	db, rec := testutil.NewMySQLRecorder(t)
	rec.FailCreateTable = true

	app, err := bootstrap.NewWithDB(context.Background(), config.Default(), db)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, repository.ErrSchemaBootstrap)
}

func TestNewWithDBWiresOptionalClientsOff(t *testing.T) {
	cfg := config.Default()

	app, err := bootstrap.NewWithDB(context.Background(), cfg, testutil.NewDB(t))
	require.NoError(t, err)

	assert.NotNil(t, app.Messages)
	assert.Nil(t, app.Redis)
	assert.Nil(t, app.MQConn)
	assert.False(t, app.StartedAt.IsZero())

	_, err = app.Messages.PostMessage(context.Background(), "wired")
	require.NoError(t, err)
	messages, err := app.Messages.ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "wired", messages[0].Content)
}
