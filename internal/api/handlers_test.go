// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/custd/internal/api/middleware"
	"github.com/ManuGH/custd/internal/api/problem"
	"github.com/ManuGH/custd/internal/cache"
	"github.com/ManuGH/custd/internal/customer"
	"github.com/ManuGH/custd/internal/store"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return newTestHandlerWithRepo(t, store.NewMemoryStore())
}

func newTestHandlerWithRepo(t *testing.T, repo customer.Repository) http.Handler {
	t.Helper()
	c := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = c.Close() })
	svc := customer.NewService(repo, customer.WithCache(c, time.Minute))
	srv := New(svc, nil, Config{Stack: middleware.StackConfig{EnableSecurityHeaders: true}})
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func customerJSON(first, last, email, password, address string) string {
	b, _ := json.Marshal(map[string]string{
		"first_name": first,
		"last_name":  last,
		"email":      email,
		"password":   password,
		"address":    address,
	})
	return string(b)
}

func createCustomer(t *testing.T, h http.Handler, first, last, email, password, address string) customer.Customer {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/customers", contentTypeJSON, customerJSON(first, last, email, password, address))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var c customer.Customer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	return c
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) problem.Body {
	t.Helper()
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body problem.Body
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, rr.Code, body.Status)
	return body
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []customer.Customer {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out []customer.Customer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestIndex(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Customer Demo REST API Service")
}

func TestIndex_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodPut, "/", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "Method Not Allowed", decodeProblem(t, rr).Error)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not Found", decodeProblem(t, rr).Error)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOpenAPIDocument(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/openapi.yaml", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/customers/{id}/action")

	doc, err := LoadOpenAPI(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/customers"))
}

func TestCreateCustomer(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/customers", contentTypeJSON,
		customerJSON("Ada", "Lovelace", "ada@example.com", "secret", "12 St James's Square"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created customer.Customer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Ada", created.FirstName)
	assert.Equal(t, "Lovelace", created.LastName)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "secret", created.Password)
	assert.Equal(t, customer.StatusActive, created.Status)
	assert.False(t, created.CreationDate.IsZero())

	location := rr.Header().Get("Location")
	assert.Equal(t, fmt.Sprintf("http://example.com/customers/%d", created.ID), location)

	rr = do(t, h, http.MethodGet, strings.TrimPrefix(location, "http://example.com"), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched customer.Customer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Ada", fetched.FirstName)
}

func TestCreateCustomer_ContentType(t *testing.T) {
	h := newTestHandler(t)
	body := customerJSON("A", "B", "a@example.com", "pw", "addr")

	tests := []struct {
		name        string
		contentType string
		wantCode    int
	}{
		{"missing", "", http.StatusUnsupportedMediaType},
		{"wrong", "text/html", http.StatusUnsupportedMediaType},
		{"charset parameter", "application/json; charset=utf-8", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/customers", tt.contentType, body)
			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusUnsupportedMediaType {
				assert.Contains(t, decodeProblem(t, rr).Message, "Content-Type must be application/json")
			}
		})
	}
}

func TestCreateCustomer_BadRequest(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", "{bad json", "Invalid JSON body"},
		{"trailing data", customerJSON("A", "B", "a@example.com", "pw", "addr") + " trailing-garbage", "Invalid JSON body"},
		{"not an object", `["a"]`, "Invalid input data"},
		{"missing field", `{"email":"bad@example.com"}`, "Invalid Customer: missing first_name"},
		{"bad email", customerJSON("A", "B", "not-an-email", "pw", "addr"), "Invalid email format: 'not-an-email'"},
		{"bad status", `{"first_name":"A","last_name":"B","email":"a@example.com","password":"pw","address":"x","status":"gone"}`, "Invalid status 'gone'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/customers", contentTypeJSON, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			p := decodeProblem(t, rr)
			assert.Equal(t, "Bad Request", p.Error)
			assert.Contains(t, p.Message, tt.message)
		})
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	h := newTestHandler(t)
	createCustomer(t, h, "A", "B", "dup@example.com", "pw", "addr")

	rr := do(t, h, http.MethodPost, "/customers", contentTypeJSON, customerJSON("C", "D", "dup@example.com", "pw", "addr"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Customer with email 'dup@example.com' already exists.", decodeProblem(t, rr).Message)
}

func TestCreateCustomer_BodyTooLarge(t *testing.T) {
	srv := New(customer.NewService(store.NewMemoryStore()), nil, Config{MaxBodyBytes: 16})

	rr := do(t, srv.Handler(), http.MethodPost, "/customers", contentTypeJSON, customerJSON("A", "B", "a@example.com", "pw", "addr"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestGetCustomer_NotFound(t *testing.T) {
	h := newTestHandler(t)

	for _, id := range []string{"0", "999", "abc"} {
		rr := do(t, h, http.MethodGet, "/customers/"+id, "", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, fmt.Sprintf("Customer with id '%s' was not found.", id), decodeProblem(t, rr).Message)
	}
}

func TestCustomerID_PlainDigitsOnly(t *testing.T) {
	h := newTestHandler(t)
	c := createCustomer(t, h, "A", "B", "a@example.com", "pw", "addr")
	require.Equal(t, int64(1), c.ID)

	rr := do(t, h, http.MethodGet, "/customers/1", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	for _, id := range []string{"+1", "01", "-1", "1.0", "0x1"} {
		rr := do(t, h, http.MethodGet, "/customers/"+id, "", "")
		assert.Equal(t, http.StatusNotFound, rr.Code, id)
	}
}

func TestMalformedIDBeatsContentType(t *testing.T) {
	h := newTestHandler(t)

	for _, target := range []string{"/customers/abc", "/customers/abc/action"} {
		rr := do(t, h, http.MethodPut, target, "", `{"action":"suspend"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code, target)
		assert.Equal(t, "Customer with id 'abc' was not found.", decodeProblem(t, rr).Message)
	}
}

func TestUpdateCustomer(t *testing.T) {
	h := newTestHandler(t)
	c := createCustomer(t, h, "John", "Doe", "john@example.com", "pw", "addr")

	rr := do(t, h, http.MethodPut, fmt.Sprintf("/customers/%d", c.ID), contentTypeJSON,
		customerJSON("unknown", "Doe", "john@example.com", "pw2", "new addr"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated customer.Customer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "unknown", updated.FirstName)
	assert.Equal(t, "new addr", updated.Address)
	assert.True(t, c.CreationDate.Equal(updated.CreationDate))

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/customers/%d", c.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"first_name":"unknown"`)
}

func TestUpdateCustomer_Errors(t *testing.T) {
	h := newTestHandler(t)
	a := createCustomer(t, h, "A", "A", "a@example.com", "pw", "addr")
	createCustomer(t, h, "B", "B", "b@example.com", "pw", "addr")

	rr := do(t, h, http.MethodPut, "/customers/999", contentTypeJSON, customerJSON("X", "Y", "x@example.com", "pw", "addr"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Message, "was not found")

	rr = do(t, h, http.MethodPut, fmt.Sprintf("/customers/%d", a.ID), contentTypeJSON, customerJSON("A", "A", "b@example.com", "pw", "addr"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Message, "already exists")

	rr = do(t, h, http.MethodPut, fmt.Sprintf("/customers/%d", a.ID), "text/plain", "x")
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestDeleteCustomer(t *testing.T) {
	h := newTestHandler(t)
	c := createCustomer(t, h, "A", "B", "a@example.com", "pw", "addr")

	rr := do(t, h, http.MethodDelete, fmt.Sprintf("/customers/%d", c.ID), "", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.Bytes())

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/customers/%d", c.ID), "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Deleting again is not an error.
	rr = do(t, h, http.MethodDelete, fmt.Sprintf("/customers/%d", c.ID), "", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.Bytes())
}

func TestListCustomers_Filters(t *testing.T) {
	h := newTestHandler(t)
	createCustomer(t, h, "Alice", "Johnson", "alice@example.com", "superpass", "1 Rainy Road")
	createCustomer(t, h, "Alina", "Smith", "alina@other.org", "plain", "2 Sunny Street")
	createCustomer(t, h, "Bob", "johnston", "bob@example.com", "SuperSecret", "3 Drain Lane")

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Alice", "Alina", "Bob"}},
		{"?first_name=ali", []string{"Alice", "Alina"}},
		{"?last_name=JOHN", []string{"Alice", "Bob"}},
		{"?email=example", []string{"Alice", "Bob"}},
		{"?password=super", []string{"Alice", "Bob"}},
		{"?address=rain", []string{"Alice", "Bob"}},
		{"?first_name=ali&last_name=john", []string{"Alice"}},
		{"?first_name=", []string{"Alice", "Alina", "Bob"}},
		{"?first_name=%25", nil},
		{"?status=active", []string{"Alice", "Alina", "Bob"}},
		{"?status=suspended", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			out := decodeList(t, do(t, h, http.MethodGet, "/customers"+tt.query, "", ""))
			var names []string
			for _, c := range out {
				names = append(names, c.FirstName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestListCustomers_EmptyIsArray(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/customers", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListCustomers_InvalidParams(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/customers?zeta=1&alpha=2", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid query parameter(s): alpha, zeta", decodeProblem(t, rr).Message)

	rr = do(t, h, http.MethodGet, "/customers?status=frozen", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Message, "Invalid status 'frozen'")
}

func TestCustomerAction(t *testing.T) {
	h := newTestHandler(t)
	c := createCustomer(t, h, "A", "B", "a@example.com", "pw", "addr")
	path := fmt.Sprintf("/customers/%d/action", c.ID)

	steps := []struct {
		action string
		want   customer.Status
	}{
		{"suspend", customer.StatusSuspended},
		{"suspend", customer.StatusSuspended},
		{"activate", customer.StatusActive},
		{"activate", customer.StatusActive},
	}
	for _, step := range steps {
		rr := do(t, h, http.MethodPut, path, contentTypeJSON, `{"action":"`+step.action+`"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var got customer.Customer
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, step.want, got.Status)
	}

	out := decodeList(t, do(t, h, http.MethodGet, "/customers?status=active", "", ""))
	assert.Len(t, out, 1)
}

func TestCustomerAction_Errors(t *testing.T) {
	h := newTestHandler(t)
	c := createCustomer(t, h, "A", "B", "a@example.com", "pw", "addr")
	path := fmt.Sprintf("/customers/%d/action", c.ID)

	rr := do(t, h, http.MethodPut, path, contentTypeJSON, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Message, "Invalid action")

	rr = do(t, h, http.MethodPut, path, contentTypeJSON, `{"action":"freeze"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid action 'freeze'. Must be one of: activate, suspend", decodeProblem(t, rr).Message)

	rr = do(t, h, http.MethodPut, "/customers/999999/action", contentTypeJSON, `{"action":"suspend"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Message, "was not found")

	rr = do(t, h, http.MethodPut, path, contentTypeJSON, `{"action":"suspend"} trailing-garbage`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Message, "Invalid JSON body")

	rr = do(t, h, http.MethodPut, path, "", `{"action":"suspend"}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

// brokenRepo fails every call the way a lost database connection would.
type brokenRepo struct {
	customer.Repository
}

func (brokenRepo) Get(context.Context, int64) (customer.Customer, error) {
	return customer.Customer{}, fmt.Errorf("%w: connection refused", customer.ErrDatabase)
}

func (brokenRepo) List(context.Context, customer.Filter) ([]customer.Customer, error) {
	return nil, errors.Join(customer.ErrDatabase, errors.New("connection refused"))
}

func TestDatabaseFailureIsInternalError(t *testing.T) {
	h := newTestHandlerWithRepo(t, brokenRepo{Repository: store.NewMemoryStore()})

	for _, target := range []string{"/customers/1", "/customers"} {
		rr := do(t, h, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		p := decodeProblem(t, rr)
		assert.Equal(t, "Internal Server Error", p.Error)
		assert.NotContains(t, p.Message, "connection refused")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/customers/42", nil)
	req.Header.Set(problem.HeaderRequestID, "req-abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "req-abc-123", rr.Header().Get(problem.HeaderRequestID))
}
