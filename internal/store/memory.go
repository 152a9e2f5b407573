// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/custd/internal/customer"
)

// MemoryStore keeps customers in process memory. Used by tests and by the
// memory backend.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]customer.Customer
	now    func() time.Time
}

// NewMemoryStore returns an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[int64]customer.Customer),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(c.Email, 0) {
		return customer.Customer{}, fmt.Errorf("%w: %s", customer.ErrDuplicateEmail, c.Email)
	}
	if c.Status == "" {
		c.Status = customer.StatusActive
	}
	s.nextID++
	now := s.now()
	c.ID = s.nextID
	c.CreationDate, c.LastUpdated = now, now
	s.byID[c.ID] = c
	return c, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return customer.Customer{}, fmt.Errorf("%w: id %d", customer.ErrNotFound, id)
	}
	return c, nil
}

func (s *MemoryStore) Update(_ context.Context, c customer.Customer) (customer.Customer, error) {
	if c.ID == 0 {
		return customer.Customer{}, customer.ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[c.ID]
	if !ok {
		return customer.Customer{}, fmt.Errorf("%w: id %d", customer.ErrNotFound, c.ID)
	}
	if s.emailTaken(c.Email, c.ID) {
		return customer.Customer{}, fmt.Errorf("%w: %s", customer.ErrDuplicateEmail, c.Email)
	}
	if c.Status == "" {
		c.Status = old.Status
	}
	c.CreationDate = old.CreationDate
	c.LastUpdated = s.now()
	s.byID[c.ID] = c
	return c, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id int64, st customer.Status) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byID[id]
	if !ok {
		return customer.Customer{}, fmt.Errorf("%w: id %d", customer.ErrNotFound, id)
	}
	if c.Status != st {
		c.Status = st
		c.LastUpdated = s.now()
		s.byID[id] = c
	}
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f customer.Filter) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []customer.Customer{}
	for _, c := range s.byID {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// emailTaken must be called with s.mu held.
func (s *MemoryStore) emailTaken(email string, except int64) bool {
	for id, c := range s.byID {
		if id != except && c.Email == email {
			return true
		}
	}
	return false
}
