package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *database.DB {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "shareit.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *database.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func seedItem(t *testing.T, db *database.DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()

	item := &models.Item{Name: name, Description: name + " description", Available: available, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// fixedNow pins service clocks so interval assertions are stable.
var fixedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return fixedNow.Add(time.Duration(hours) * time.Hour)
}
