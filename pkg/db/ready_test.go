package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReady(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPing()
	require.NoError(t, Ready(context.Background(), sqlDB))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReady_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	down := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(down)

	err = Ready(context.Background(), sqlDB)
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestGormConfig(t *testing.T) {
	cfg := GormConfig()
	assert.True(t, cfg.TranslateError)
	assert.False(t, cfg.PrepareStmt)
	assert.Equal(t, "UTC", cfg.NowFunc().Location().String())
}
