// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/ManuGH/custd/internal/customer"
)

// Key layout:
//   - customers: "cust:<20-digit id>" (JSON), zero padded so prefix
//     iteration returns them in id order
//   - email index: "email:<email>" (value=decimal id)
//   - id sequence: "seq:customer"
const (
	customerPrefix = "cust:"
	emailPrefix    = "email:"
	sequenceKey    = "seq:customer"

	conflictRetries = 5
)

// BadgerStore is a customer.Repository on an embedded badger database.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	now func() time.Time
}

// OpenBadgerStore opens the database at path. An empty path runs badger
// in memory.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: badger: %w", ErrOpen, err)
	}
	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: badger sequence: %w", ErrOpen, err)
	}
	return &BadgerStore{
		db:  db,
		seq: seq,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func customerKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", customerPrefix, id))
}

func emailKey(email string) []byte {
	return []byte(emailPrefix + email)
}

func (s *BadgerStore) Create(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	next, err := s.seq.Next()
	if err != nil {
		return customer.Customer{}, s.wrap("next id", err)
	}
	if c.Status == "" {
		c.Status = customer.StatusActive
	}
	now := s.now()
	c.ID = int64(next) + 1
	c.CreationDate, c.LastUpdated = now, now

	err = s.update(ctx, func(txn *badger.Txn) error {
		if _, err := s.lookupEmail(txn, c.Email); err == nil {
			return fmt.Errorf("%w: %s", customer.ErrDuplicateEmail, c.Email)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return s.put(txn, c, "")
	})
	if err != nil {
		return customer.Customer{}, s.wrap("create customer", err)
	}
	return c, nil
}

func (s *BadgerStore) Get(_ context.Context, id int64) (customer.Customer, error) {
	var out customer.Customer
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = s.load(txn, id)
		return err
	})
	if err != nil {
		return customer.Customer{}, s.wrap("get customer", err)
	}
	return out, nil
}

func (s *BadgerStore) Update(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if c.ID == 0 {
		return customer.Customer{}, customer.ErrMissingID
	}
	var out customer.Customer
	err := s.update(ctx, func(txn *badger.Txn) error {
		old, err := s.load(txn, c.ID)
		if err != nil {
			return err
		}
		if old.Email != c.Email {
			owner, err := s.lookupEmail(txn, c.Email)
			switch {
			case err == nil && owner != c.ID:
				return fmt.Errorf("%w: %s", customer.ErrDuplicateEmail, c.Email)
			case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
		}
		out = c
		if out.Status == "" {
			out.Status = old.Status
		}
		out.CreationDate = old.CreationDate
		out.LastUpdated = s.now()
		return s.put(txn, out, old.Email)
	})
	if err != nil {
		return customer.Customer{}, s.wrap("update customer", err)
	}
	return out, nil
}

func (s *BadgerStore) SetStatus(ctx context.Context, id int64, st customer.Status) (customer.Customer, error) {
	var out customer.Customer
	err := s.update(ctx, func(txn *badger.Txn) error {
		c, err := s.load(txn, id)
		if err != nil {
			return err
		}
		out = c
		if c.Status == st {
			return nil
		}
		out.Status = st
		out.LastUpdated = s.now()
		return s.put(txn, out, c.Email)
	})
	if err != nil {
		return customer.Customer{}, s.wrap("set customer status", err)
	}
	return out, nil
}

func (s *BadgerStore) Delete(ctx context.Context, id int64) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		old, err := s.load(txn, id)
		if errors.Is(err, customer.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(emailKey(old.Email)); err != nil {
			return err
		}
		return txn.Delete(customerKey(id))
	})
	if err != nil {
		return s.wrap("delete customer", err)
	}
	return nil
}

func (s *BadgerStore) List(_ context.Context, f customer.Filter) ([]customer.Customer, error) {
	out := []customer.Customer{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(customerPrefix),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var c customer.Customer
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return err
			}
			if f.Matches(c) {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("list customers", err)
	}
	return out, nil
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("%w: badger is closed", customer.ErrDatabase)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return errors.Join(s.seq.Release(), s.db.Close())
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) load(txn *badger.Txn, id int64) (customer.Customer, error) {
	var c customer.Customer
	item, err := txn.Get(customerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return c, fmt.Errorf("%w: id %d", customer.ErrNotFound, id)
	}
	if err != nil {
		return c, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &c)
	})
	return c, err
}

func (s *BadgerStore) lookupEmail(txn *badger.Txn, email string) (int64, error) {
	item, err := txn.Get(emailKey(email))
	if err != nil {
		return 0, err
	}
	var id int64
	err = item.Value(func(val []byte) error {
		id, err = strconv.ParseInt(string(val), 10, 64)
		return err
	})
	return id, err
}

// put writes c and its email index entry. A non-empty previous email is
// removed from the index when it differs.
func (s *BadgerStore) put(txn *badger.Txn, c customer.Customer, previous string) error {
	buf, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if previous != "" && previous != c.Email {
		if err := txn.Delete(emailKey(previous)); err != nil {
			return err
		}
	}
	if err := txn.Set(emailKey(c.Email), []byte(strconv.FormatInt(c.ID, 10))); err != nil {
		return err
	}
	return txn.Set(customerKey(c.ID), buf)
}

func (s *BadgerStore) wrap(op string, err error) error {
	if errors.Is(err, customer.ErrNotFound) || errors.Is(err, customer.ErrDuplicateEmail) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", customer.ErrDatabase, op, err)
}
