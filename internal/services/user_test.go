package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
)

// dupKeyConn simulates a unique-index violation on every insert while
// answering reads with zero rows. It stands in for the race where two
// registrations pass the email precheck and one loses the insert.
type dupKeyConn struct{}

type dupKeyConnector struct{}

func (dupKeyConnector) Connect(context.Context) (driver.Conn, error) { return dupKeyConn{}, nil }
func (dupKeyConnector) Driver() driver.Driver                        { return dupKeyDriver{} }

type dupKeyDriver struct{}

func (dupKeyDriver) Open(string) (driver.Conn, error) { return dupKeyConn{}, nil }

func (dupKeyConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (dupKeyConn) Close() error                        { return nil }
func (dupKeyConn) Begin() (driver.Tx, error)           { return dupKeyTx{}, nil }

func (dupKeyConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if strings.HasPrefix(query, "INSERT") {
		return nil, duplicateKeyError()
	}
	return emptyRows{}, nil
}

func (dupKeyConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	if strings.HasPrefix(query, "INSERT") {
		return nil, duplicateKeyError()
	}
	return driver.RowsAffected(0), nil
}

func duplicateKeyError() error {
	return &pgconn.PgError{
		Code:    "23505",
		Message: "duplicate key value violates unique constraint",
	}
}

type dupKeyTx struct{}

func (dupKeyTx) Commit() error   { return nil }
func (dupKeyTx) Rollback() error { return nil }

type emptyRows struct{}

func (emptyRows) Columns() []string         { return []string{} }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }

func newDupKeyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sql.OpenDB(dupKeyConnector{}),
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestRegisterDuplicateEmailRaceIsConflict(t *testing.T) {
	db := newDupKeyDB(t)
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
		&config.AuthConfig{},
		nil,
		logger.NewLogger(),
	)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Asha Patel",
		Email:    "asha@ppsu.ac.in",
		Password: "secret123",
	})
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "User already exists with this email.", appErr.Message)
}
