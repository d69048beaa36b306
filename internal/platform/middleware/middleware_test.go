// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokidev/tana/internal/platform/constants"
	"github.com/aokidev/tana/internal/platform/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestRateLimit_ExceededReturnsRateLimited verifies the bucket eventually
rejects a burst and that the rejection carries the API's error code.
*/
func TestRateLimit_ExceededReturnsRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	var rejected *httptest.ResponseRecorder
	// Well past the burst capacity; token refill during the loop is far
	// smaller than the overshoot.
	for i := 0; i < constants.DefaultRateLimitBurst+100; i++ {
		request := httptest.NewRequest(http.MethodGet, "/records", nil)
		request.RemoteAddr = "203.0.113.9:51424"

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		if recorder.Code == http.StatusTooManyRequests {
			rejected = recorder
			break
		}
	}

	require.NotNil(t, rejected, "burst overshoot must be rejected")
	assert.Contains(t, rejected.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "1", rejected.Header().Get("Retry-After"))
}

/*
TestPanicRecovery returns a 500 with the standard error code instead of
crashing the server.
*/
func TestPanicRecovery(t *testing.T) {
	logger := discardLogger()
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		panic("boom")
	}))

	request := httptest.NewRequest(http.MethodGet, "/records", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, recorder.Body.String(), "boom", "panic details must not leak to the client")
}
