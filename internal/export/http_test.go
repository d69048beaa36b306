// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package export_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokidev/tana/internal/collection"
	"github.com/aokidev/tana/internal/export"
)

// stubLister serves canned records to the handler.
type stubLister struct {
	records []collection.Record
	err     error
}

func (lister *stubLister) List(ctx context.Context, filter collection.Filter) ([]collection.Record, error) {
	return lister.records, lister.err
}

/*
TestHandler_Export verifies the download headers and payload.
*/
func TestHandler_Export(t *testing.T) {
	handler := export.NewHandler(&stubLister{records: testRecords()})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv; charset=utf-8", recorder.Header().Get("Content-Type"))

	disposition := recorder.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "manga-")
	assert.Contains(t, disposition, ".csv")

	assert.Contains(t, recorder.Body.String(), "One Piece,OWNED,,")
}

/*
TestHandler_Export_ListFailure maps a store failure to a 500 envelope.
*/
func TestHandler_Export_ListFailure(t *testing.T) {
	handler := export.NewHandler(&stubLister{err: errors.New("disk gone")})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}
