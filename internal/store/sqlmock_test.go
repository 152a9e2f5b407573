// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/custd/internal/customer"
)

func newMockStore(t *testing.T, d dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	s := newSQLStore(db, d)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, mock
}

func TestSQLStore_DriverFailuresWrapErrDatabase(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	t.Run("create", func(t *testing.T) {
		s, mock := newMockStore(t, postgresDialect)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).WillReturnError(boom)
		_, err := s.Create(ctx, sample("John", "Doe", "john@example.com"))
		assert.ErrorIs(t, err, customer.ErrDatabase)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("get", func(t *testing.T) {
		s, mock := newMockStore(t, postgresDialect)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WithArgs(int64(7)).WillReturnError(boom)
		_, err := s.Get(ctx, 7)
		assert.ErrorIs(t, err, customer.ErrDatabase)
	})

	t.Run("list", func(t *testing.T) {
		s, mock := newMockStore(t, sqliteDialect)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnError(boom)
		_, err := s.List(ctx, customer.Filter{})
		assert.ErrorIs(t, err, customer.ErrDatabase)
	})

	t.Run("delete", func(t *testing.T) {
		s, mock := newMockStore(t, sqliteDialect)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers")).WithArgs(int64(3)).WillReturnError(boom)
		err := s.Delete(ctx, 3)
		assert.ErrorIs(t, err, customer.ErrDatabase)
	})
}

func TestSQLStore_PostgresUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t, postgresDialect)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.Create(context.Background(), sample("John", "Doe", "john@example.com"))
	assert.ErrorIs(t, err, customer.ErrDuplicateEmail)
	assert.NotErrorIs(t, err, customer.ErrDatabase)
}

func TestSQLStore_PostgresCreateBindsArguments(t *testing.T) {
	s, mock := newMockStore(t, postgresDialect)
	now := s.now()

	mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id")).
		WithArgs("John", "Doe", "john@example.com", "secret", "1 Main Street", "active", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	c, err := s.Create(context.Background(), sample("John", "Doe", "john@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), c.ID)
	assert.Equal(t, customer.StatusActive, c.Status)
	assert.Equal(t, now, c.CreationDate)
}

func TestSQLStore_UpdateNoRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t, postgresDialect)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE customers SET")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c := sample("John", "Doe", "john@example.com")
	c.ID = 5
	_, err := s.Update(context.Background(), c)
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestSQLStore_PostgresSetStatusBindsArguments(t *testing.T) {
	s, mock := newMockStore(t, postgresDialect)
	now := s.now()

	mock.ExpectQuery(regexp.QuoteMeta("SET status = $1, last_updated = CASE WHEN status = $2 THEN last_updated ELSE $3 END")).
		WithArgs("suspended", "suspended", now, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password", "address", "status", "creation_date", "last_updated"}).
			AddRow(int64(5), "John", "Doe", "john@example.com", "pw", "addr", "suspended", now, now))

	c, err := s.SetStatus(context.Background(), 5, customer.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, customer.StatusSuspended, c.Status)

	mock.ExpectQuery(regexp.QuoteMeta("SET status = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = s.SetStatus(context.Background(), 6, customer.StatusActive)
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestSQLStore_ListScansRows(t *testing.T) {
	s, mock := newMockStore(t, postgresDialect)
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password", "address", "status", "creation_date", "last_updated"}).
		AddRow(int64(1), "John", "Doe", "john@example.com", "pw", "addr", "active", created, created).
		AddRow(int64(2), "Jane", "Doe", "jane@example.com", "pw", "addr", "suspended", "2024-05-06T07:08:09Z", []byte("2024-05-06T07:08:09Z"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE last_name ILIKE $1 ESCAPE '\\' ORDER BY id ASC")).
		WithArgs("%doe%").
		WillReturnRows(rows)

	got, err := s.List(context.Background(), customer.Filter{Terms: []customer.Term{{Field: customer.FieldLastName, Value: "doe"}}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, customer.StatusSuspended, got[1].Status)
	assert.True(t, got[1].CreationDate.Equal(created))
	assert.True(t, got[0].LastUpdated.Equal(created))
}

func TestSQLStore_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	s := newSQLStore(db, sqliteDialect)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.ErrorIs(t, s.Ping(context.Background()), customer.ErrDatabase)
	assert.NoError(t, mock.ExpectationsWereMet())
}
