package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"budgettracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func openLoggedStore(t *testing.T, level logger.LogLevel) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "log.db"), LogLevel: level, Logger: log})
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	buf.Reset()
	return s, &buf
}

func TestNotFoundIsNotLogged(t *testing.T) {
	s, buf := openLoggedStore(t, logger.Error)
	ctx := context.Background()

	_, err := s.UserByEmail(ctx, "nobody@example.com")
	require.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, buf.String())
}

func TestFailedQueryLogsWithoutValues(t *testing.T) {
	s, buf := openLoggedStore(t, logger.Error)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "dup@example.com", HashedPassword: []byte("x")}))
	err := s.CreateUser(ctx, &models.User{Email: "dup@example.com", HashedPassword: []byte("x")})
	require.True(t, errors.Is(err, ErrDuplicate))

	out := buf.String()
	assert.Contains(t, out, "query failed")
	assert.Contains(t, out, `"component":"gorm"`)
	assert.NotContains(t, out, "dup@example.com")
}

func TestInfoLevelTracesQueries(t *testing.T) {
	s, buf := openLoggedStore(t, logger.Info)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "traced@example.com", HashedPassword: []byte("x")}))
	out := buf.String()
	assert.Contains(t, out, "INSERT INTO")
	assert.NotContains(t, out, "traced@example.com")
}
