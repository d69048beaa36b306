// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package export

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aokidev/tana/internal/collection"
	"github.com/aokidev/tana/internal/platform/respond"
)

// Lister is the read-only slice of the collection service the export needs.
type Lister interface {
	List(ctx context.Context, filter collection.Filter) ([]collection.Record, error)
}

// Handler serves the export download endpoint.
type Handler struct {
	lister Lister
}

// NewHandler wires the collection reader.
func NewHandler(lister Lister) *Handler {
	return &Handler{lister: lister}
}

// Routes returns the chi router for the export endpoint.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.exportCollection)
	return router
}

// exportCollection handles GET /export: the whole collection as a CSV download.
func (handler *Handler) exportCollection(writer http.ResponseWriter, request *http.Request) {
	records, err := handler.lister.List(request.Context(), collection.Filter{})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := CSV(records)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filename := "manga-" + time.Now().UTC().Format("20060102") + ".csv"
	respond.Attachment(writer, filename, "text/csv; charset=utf-8", payload)
}
