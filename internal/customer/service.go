// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/custd/internal/cache"
	"github.com/ManuGH/custd/internal/log"
	"github.com/ManuGH/custd/internal/metrics"
	"github.com/ManuGH/custd/internal/telemetry"
)

const (
	opCreate = "create"
	opGet    = "get"
	opUpdate = "update"
	opDelete = "delete"
	opList   = "list"
	opAction = "action"
)

// DefaultCacheTTL bounds how long a cached record may be served.
const DefaultCacheTTL = 30 * time.Second

var tracer = otel.Tracer("github.com/ManuGH/custd/internal/customer")

// Service provides business logic for customer operations.
type Service struct {
	repo   Repository
	cache  cache.Cache
	ttl    atomic.Int64
	flight singleflight.Group

	// epoch advances on every invalidation. A cache fill only lands when no
	// invalidation ran between its repository read and its write.
	fillMu sync.RWMutex
	epoch  atomic.Uint64
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache enables the read-through cache for Get.
func WithCache(c cache.Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = c
		s.SetCacheTTL(ttl)
	}
}

// NewService creates a new customer service on top of repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo}
	s.ttl.Store(int64(DefaultCacheTTL))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCacheTTL changes the lifetime of entries cached from now on.
// Non-positive values are ignored.
func (s *Service) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl.Store(int64(ttl))
	}
}

// Create stores a new customer. Client supplied ids are discarded.
func (s *Service) Create(ctx context.Context, c Customer) (created Customer, err error) {
	ctx, span := tracer.Start(ctx, "customer.create")
	defer func() { s.finish(ctx, span, opCreate, created.ID, err) }()

	if err = ValidateEmail(c.Email); err != nil {
		return Customer{}, err
	}
	if c.Status == "" {
		c.Status = StatusActive
	} else if _, err = ParseStatus(string(c.Status)); err != nil {
		return Customer{}, err
	}
	c.ID = 0

	created, err = s.repo.Create(ctx, c)
	if err != nil {
		return Customer{}, mapDuplicate(err, c.Email)
	}
	return created, nil
}

// Get returns a customer by id, consulting the cache first.
func (s *Service) Get(ctx context.Context, id int64) (c Customer, err error) {
	ctx, span := tracer.Start(ctx, "customer.get", trace.WithAttributes(telemetry.CustomerAttributes(id)...))
	defer func() { s.finish(ctx, span, opGet, id, err) }()

	if s.cache == nil {
		return s.repo.Get(ctx, id)
	}

	key := cacheKey(id)
	if data, ok := s.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(data, &c); err == nil {
			metrics.RecordCacheLookup(true)
			return c, nil
		}
		s.cache.Delete(ctx, key)
	}
	metrics.RecordCacheLookup(false)

	// Concurrent misses share one repository read. The shared call must not
	// fail because the first caller went away.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		epoch := s.epoch.Load()
		found, err := s.repo.Get(shared, id)
		if err != nil {
			return Customer{}, err
		}
		s.fill(shared, key, found, epoch)
		return found, nil
	})
	if err != nil {
		return Customer{}, err
	}
	return v.(Customer), nil
}

// Update replaces the mutable fields of an existing customer. An empty
// status keeps the stored one. Only the fields of in are written.
func (s *Service) Update(ctx context.Context, id int64, in Customer) (updated Customer, err error) {
	ctx, span := tracer.Start(ctx, "customer.update", trace.WithAttributes(telemetry.CustomerAttributes(id)...))
	defer func() { s.finish(ctx, span, opUpdate, id, err) }()

	if _, err = s.repo.Get(ctx, id); err != nil {
		return Customer{}, err
	}
	if err = ValidateEmail(in.Email); err != nil {
		return Customer{}, err
	}

	next := Customer{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Address:   in.Address,
	}
	if in.Status != "" {
		if next.Status, err = ParseStatus(string(in.Status)); err != nil {
			return Customer{}, err
		}
	}

	updated, err = s.repo.Update(ctx, next)
	s.invalidate(ctx, id)
	if err != nil {
		return Customer{}, mapDuplicate(err, in.Email)
	}
	return updated, nil
}

// Delete removes a customer. Missing ids are not an error.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "customer.delete", trace.WithAttributes(telemetry.CustomerAttributes(id)...))
	defer func() { s.finish(ctx, span, opDelete, id, err) }()

	err = s.repo.Delete(ctx, id)
	s.invalidate(ctx, id)
	return err
}

// List returns all customers matching f ordered by id.
func (s *Service) List(ctx context.Context, f Filter) (out []Customer, err error) {
	ctx, span := tracer.Start(ctx, "customer.list", trace.WithAttributes(attribute.StringSlice(telemetry.CustomerFilterKey, f.Fields())))
	defer func() { s.finish(ctx, span, opList, 0, err) }()

	metrics.RecordFilterFields(f.Fields())
	out, err = s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Customer{}
	}
	metrics.ObserveListResults(len(out))
	logger := log.WithComponentFromContext(ctx, "customer")
	logger.Debug().
		Strs(log.FieldFilter, f.Fields()).
		Int(log.FieldCount, len(out)).
		Msg("customers listed")
	return out, nil
}

// ApplyAction moves a customer to the status targeted by a. Applying an
// action to a customer already in the target status changes nothing.
func (s *Service) ApplyAction(ctx context.Context, id int64, a Action) (c Customer, err error) {
	ctx, span := tracer.Start(ctx, "customer.action", trace.WithAttributes(
		attribute.Int64(telemetry.CustomerIDKey, id),
		attribute.String(telemetry.CustomerActionKey, string(a)),
	))
	defer func() { s.finish(ctx, span, opAction, id, err) }()

	if _, err = ParseAction(string(a)); err != nil {
		return Customer{}, err
	}

	c, err = s.repo.SetStatus(ctx, id, a.Target())
	s.invalidate(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// fill caches c unless an invalidation ran since epoch was taken.
func (s *Service) fill(ctx context.Context, key string, c Customer, epoch uint64) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	if s.epoch.Load() != epoch {
		return
	}
	s.cache.Set(ctx, key, data, time.Duration(s.ttl.Load()))
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	s.fillMu.Lock()
	s.epoch.Add(1)
	s.fillMu.Unlock()

	key := cacheKey(id)
	s.flight.Forget(key)
	s.cache.Delete(context.WithoutCancel(ctx), key)
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, id int64, err error) {
	defer span.End()

	outcome := Outcome(err)
	metrics.RecordCustomerOperation(op, outcome)

	span.SetAttributes(telemetry.CustomerAttributes(id)...)
	span.SetAttributes(telemetry.ErrorAttributes(err, outcome)...)

	logger := log.WithComponentFromContext(ctx, "customer")
	var evt = logger.Debug()
	if outcome == metrics.OutcomeError {
		evt = logger.Error().Err(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if err != nil {
		evt = logger.Info().Str("reason", err.Error())
	}
	if id != 0 {
		evt = evt.Int64(log.FieldCustomerID, id)
	}
	evt.Str(log.FieldEvent, "customer."+op).
		Str(log.FieldOperation, op).
		Str("outcome", outcome).
		Msg("customer operation")
}

// Outcome classifies an operation error into a metrics outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case IsValidation(err), errors.Is(err, ErrMissingID):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func mapDuplicate(err error, email string) error {
	if errors.Is(err, ErrDuplicateEmail) {
		return &ValidationError{Msg: fmt.Sprintf("Customer with email '%s' already exists.", email), Err: err}
	}
	return err
}

func cacheKey(id int64) string {
	return "customer:" + strconv.FormatInt(id, 10)
}
