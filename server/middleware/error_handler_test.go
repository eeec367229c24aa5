// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/debugflag/debugflag/server/filter"
	"codeberg.org/debugflag/debugflag/server/request_context"
)

// createTestRequest creates a test HTTP request with request context.
func createTestRequest(t *testing.T, target string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)

	return req.WithContext(request_context.WithRequestContext(req.Context()))
}

// TestCatchError_Success tests CatchError when handler succeeds.
func TestCatchError_Success(t *testing.T) {
	t.Parallel()

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "success"}`))

		return nil
	})
	req := createTestRequest(t, "/test")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	if body := rr.Body.String(); body != `{"status": "success"}` {
		t.Errorf("Expected body %q, got %q", `{"status": "success"}`, body)
	}

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	if ctx := request_context.FromRequest(req); ctx.RequestError != nil {
		t.Errorf("Expected no error in context, got %v", ctx.RequestError)
	}
}

// TestCatchError_HandlerError tests CatchError when handler returns an error.
func TestCatchError_HandlerError(t *testing.T) {
	t.Parallel()

	testError := errors.New("test handler error")
	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		_, _ = w.Write([]byte("partial output"))

		return testError
	})
	req := createTestRequest(t, "/test")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code, "expect 500 status code")
	assert.NotContains(t, rr.Body.String(), "partial output")
	assert.NotContains(t, rr.Body.String(), "test handler error", "error is hidden outside debug mode")

	ctx := request_context.FromRequest(req)
	if !errors.Is(ctx.RequestError, testError) {
		t.Errorf("Expected error %q in context, got %v", testError, ctx.RequestError)
	}

	assert.Equal(t, http.StatusInternalServerError, ctx.StatusCode)
}

// TestCatchError_HandledError tests that an error with an error status is passed through.
func TestCatchError_HandledError(t *testing.T) {
	t.Parallel()

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad input"))

		return errors.New("bad input")
	})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, createTestRequest(t, "/test"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "bad input", rr.Body.String())
}

// TestCatchError_NotFound tests that a 404 is replaced with the error page.
func TestCatchError_NotFound(t *testing.T) {
	t.Parallel()

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		http.NotFound(w, r)

		return nil
	})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, createTestRequest(t, "/missing"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not Found\n", rr.Body.String())
	assert.Equal(t, []string{"session=abc"}, rr.Header().Values("Set-Cookie"), "cookies survive the error page")
}

// TestCatchError_FilterOrder tests that filters run in order before the
// handler and in reverse order after it.
func TestCatchError_FilterOrder(t *testing.T) {
	t.Parallel()

	var calls []string

	record := func(name string) filter.Filter {
		return filter.Funcs{
			Executing: func(*filter.ExecutingContext) { calls = append(calls, name+".executing") },
			Executed: func(ctx *filter.ExecutedContext) {
				calls = append(calls, name+".executed")
				assert.NoError(t, ctx.Error)
			},
		}
	}

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		calls = append(calls, "handler")

		return nil
	}, record("a"), record("b"))
	handler.ServeHTTP(httptest.NewRecorder(), createTestRequest(t, "/test"))

	assert.Equal(t, []string{"a.executing", "b.executing", "handler", "b.executed", "a.executed"}, calls)
}

// TestCatchError_FilterSeesError tests that filters observe the handler error.
func TestCatchError_FilterSeesError(t *testing.T) {
	t.Parallel()

	testError := errors.New("boom")

	var seen error

	handler := CatchError(func(w http.ResponseWriter, r *http.Request) error {
		return testError
	}, filter.Funcs{Executed: func(ctx *filter.ExecutedContext) { seen = ctx.Error }})
	handler.ServeHTTP(httptest.NewRecorder(), createTestRequest(t, "/test"))

	assert.ErrorIs(t, seen, testError)
}
