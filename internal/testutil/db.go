// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"twotier-board/internal/model"
	"twotier-board/internal/repository"
)

// NewDB returns an in-memory sqlite handle with the messages table in place.
// The pool is pinned to one connection so every statement sees the same database.
func NewDB(t *testing.T, seed ...string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewMessageRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	for _, content := range seed {
		require.NoError(t, repo.Create(context.Background(), &model.Message{Content: content}))
	}

	return db
}
