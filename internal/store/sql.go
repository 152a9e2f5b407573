// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/custd/internal/customer"
)

// SQLStore is a customer.Repository over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time

	insertSQL string
	selectSQL string
	updateSQL string
	statusSQL string
	deleteSQL string
}

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	p := d.bind(8)
	return &SQLStore{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		insertSQL: fmt.Sprintf(`INSERT INTO customers (first_name, last_name, email, password, address, status, creation_date, last_updated)
			VALUES (%s, %s, %s, %s, %s, %s, %s, %s) RETURNING id`, p...),
		selectSQL: fmt.Sprintf(`SELECT %s FROM customers WHERE id = %s`, customerColumns, p[0]),
		// An empty status keeps the stored one.
		updateSQL: fmt.Sprintf(`UPDATE customers SET first_name = %s, last_name = %s, email = %s, password = %s, address = %s,
			status = COALESCE(NULLIF(%s, ''), status), last_updated = %s
			WHERE id = %s RETURNING %s`, append(p, customerColumns)...),
		// SET expressions see the old row, so an unchanged status keeps last_updated.
		statusSQL: fmt.Sprintf(`UPDATE customers SET status = %s, last_updated = CASE WHEN status = %s THEN last_updated ELSE %s END
			WHERE id = %s RETURNING %s`, p[0], p[1], p[2], p[3], customerColumns),
		deleteSQL: fmt.Sprintf(`DELETE FROM customers WHERE id = %s`, p[0]),
	}
}

// DB exposes the underlying pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Backend returns the engine name.
func (s *SQLStore) Backend() string { return s.dialect.name }

func (s *SQLStore) Create(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if c.Status == "" {
		c.Status = customer.StatusActive
	}
	now := s.now()
	c.CreationDate, c.LastUpdated = now, now

	err := s.db.QueryRowContext(ctx, s.insertSQL,
		c.FirstName, c.LastName, c.Email, c.Password, c.Address, string(c.Status),
		s.dialect.timeArg(now), s.dialect.timeArg(now),
	).Scan(&c.ID)
	if err != nil {
		return customer.Customer{}, s.wrap("insert customer", err)
	}
	return c, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (customer.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, s.selectSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return customer.Customer{}, fmt.Errorf("%w: id %d", customer.ErrNotFound, id)
	}
	if err != nil {
		return customer.Customer{}, s.wrap("get customer", err)
	}
	return c, nil
}

func (s *SQLStore) Update(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if c.ID == 0 {
		return customer.Customer{}, customer.ErrMissingID
	}
	out, err := scanCustomer(s.db.QueryRowContext(ctx, s.updateSQL,
		c.FirstName, c.LastName, c.Email, c.Password, c.Address, string(c.Status),
		s.dialect.timeArg(s.now()), c.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return customer.Customer{}, fmt.Errorf("%w: id %d", customer.ErrNotFound, c.ID)
	}
	if err != nil {
		return customer.Customer{}, s.wrap("update customer", err)
	}
	return out, nil
}

func (s *SQLStore) SetStatus(ctx context.Context, id int64, st customer.Status) (customer.Customer, error) {
	out, err := scanCustomer(s.db.QueryRowContext(ctx, s.statusSQL,
		string(st), string(st), s.dialect.timeArg(s.now()), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return customer.Customer{}, fmt.Errorf("%w: id %d", customer.ErrNotFound, id)
	}
	if err != nil {
		return customer.Customer{}, s.wrap("set customer status", err)
	}
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, s.deleteSQL, id); err != nil {
		return s.wrap("delete customer", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, f customer.Filter) ([]customer.Customer, error) {
	query, args, err := buildListQuery(s.dialect, f)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrap("list customers", err)
	}
	defer rows.Close()

	out := []customer.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, s.wrap("scan customer", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list customers", err)
	}
	return out, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.wrap("ping", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) wrap(op string, err error) error {
	if s.dialect.isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", customer.ErrDuplicateEmail, op)
	}
	return fmt.Errorf("%w: %s: %w", customer.ErrDatabase, op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(r rowScanner) (customer.Customer, error) {
	var (
		c                 customer.Customer
		status            string
		created, modified timeValue
	)
	if err := r.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Password, &c.Address, &status, &created, &modified); err != nil {
		return customer.Customer{}, err
	}
	c.Status = customer.Status(status)
	c.CreationDate = created.Time
	c.LastUpdated = modified.Time
	return c, nil
}

// timeValue scans a timestamp column that the driver may deliver as
// time.Time, string or []byte.
type timeValue struct {
	time.Time
}

func (t *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *timeValue) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}
