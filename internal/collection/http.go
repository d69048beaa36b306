// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package collection

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aokidev/tana/internal/lookup"
	requestutil "github.com/aokidev/tana/internal/platform/request"
	"github.com/aokidev/tana/internal/platform/respond"
	"github.com/aokidev/tana/internal/platform/validate"
)

// Handler exposes the collection over HTTP.
type Handler struct {
	service  *Service
	searcher lookup.Searcher
}

// NewHandler wires the collection service and the metadata searcher.
func NewHandler(service *Service, searcher lookup.Searcher) *Handler {
	return &Handler{service: service, searcher: searcher}
}

// Routes returns the chi router for the collection API.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/records", func(r chi.Router) {
		r.Get("/", handler.listRecords)
		r.Post("/", handler.createRecord)
		r.Get("/{id}", handler.getRecord)
		r.Patch("/{id}", handler.updateRecord)
		r.Patch("/{id}/status", handler.updateStatus)
		r.Delete("/{id}", handler.deleteRecord)
		r.Post("/{id}/lookup", handler.lookupRecord)
	})

	router.Get("/search", handler.searchTitles)

	return router
}

// listRecords handles GET /records?status=&view=&genre=.
func (handler *Handler) listRecords(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Status: Status(requestutil.Query(request, "status")),
		View:   View(requestutil.Query(request, "view")),
		Genre:  requestutil.Query(request, "genre"),
	}

	records, err := handler.service.List(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, records)
}

// createRecord handles POST /records.
func (handler *Handler) createRecord(writer http.ResponseWriter, request *http.Request) {
	var input AddInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Add(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, record)
}

// getRecord handles GET /records/{id}.
func (handler *Handler) getRecord(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// updateRecord handles PATCH /records/{id} (partial edit).
func (handler *Handler) updateRecord(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Update(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// updateStatus handles PATCH /records/{id}/status.
func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.UpdateStatus(request.Context(), requestutil.ID(request, "id"), body.Status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, record)
}

// deleteRecord handles DELETE /records/{id}.
func (handler *Handler) deleteRecord(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Remove(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// lookupRecord handles POST /records/{id}/lookup.
//
// The request suspends until the metadata service answers; an abandoned
// request (client navigated away) cancels the context and nothing is written.
func (handler *Handler) lookupRecord(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Lookup(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// searchTitles handles GET /search?q= for the assisted add-record form.
func (handler *Handler) searchTitles(writer http.ResponseWriter, request *http.Request) {
	query := requestutil.Query(request, "q")
	if query == "" {
		respond.Error(writer, request, validate.RequiredError("q", "This field is required"))
		return
	}

	candidates, err := handler.searcher.Search(request.Context(), query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if candidates == nil {
		candidates = []lookup.Candidate{}
	}
	respond.OK(writer, candidates)
}
