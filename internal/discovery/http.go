// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package discovery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thepensieveindex/pensieve-api/internal/core/story"
	requestutil "github.com/thepensieveindex/pensieve-api/internal/platform/request"
	"github.com/thepensieveindex/pensieve-api/internal/platform/respond"
	"github.com/thepensieveindex/pensieve-api/pkg/query"
)

// Handler implements the HTTP layer for discovery. Every endpoint is
// public; an authenticated caller's identity is attached to logs only.
type Handler struct {
	service *Service
}

// NewHandler constructs a new discovery [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the discovery endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/pathways/validate", handler.validatePathway)
	router.Post("/pathways/share", handler.sharePathway)
	router.Get("/pathways/{id}", handler.loadShared)
	router.Post("/search/stories", handler.searchStories)
	router.Get("/fandoms/{id}/elements", handler.fandomElements)

	return router
}

// validateRequest is the JSON body for pathway validation.
type validateRequest struct {
	FandomID string        `json:"fandom_id"`
	Pathway  []PathwayItem `json:"pathway"`
	UserID   string        `json:"user_id,omitempty"`
}

/*
POST /api/v1/discovery/pathways/validate.

Request:
  - body: validateRequest

Response:
  - 200: ValidateResponse: Success (even for invalid pathways; validity is data)
  - 400: VALIDATION_ERROR: Missing fandom_id or malformed body
  - 404: ErrNotFound: Unknown fandom
  - 422: UNPROCESSABLE: Pathway too large
*/
func (handler *Handler) validatePathway(writer http.ResponseWriter, request *http.Request) {

	// Decode request body
	var body validateRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Prefer the verified identity over the client-declared one
	userID := requestutil.OptionalUserID(request)
	if userID == "" {
		userID = body.UserID
	}

	response, err := handler.service.ValidatePathway(request.Context(), body.FandomID, body.Pathway, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}

// searchRequest is the JSON body for story search.
type searchRequest struct {
	FandomID string        `json:"fandom_id"`
	Pathway  []PathwayItem `json:"pathway"`
	Filters  story.Filters `json:"filters"`
	Limit    int           `json:"limit"`
}

/*
POST /api/v1/discovery/search/stories.

Request:
  - body: searchRequest

Response:
  - 200: SearchResponse: Scored stories plus prompt and analysis
  - 400: VALIDATION_ERROR: Missing fandom_id or malformed body
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) searchStories(writer http.ResponseWriter, request *http.Request) {
	var body searchRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := handler.service.Search(request.Context(), body.FandomID, body.Pathway, body.Filters, body.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}

/*
GET /api/v1/discovery/fandoms/{id}/elements.

Description: The pathway builder's vocabulary: active tags grouped by
category, the plot-block forest, and tag class constraints. An optional
comma-separated "categories" query parameter narrows the tag groups.

Response:
  - 200: Elements: Success
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) fandomElements(writer http.ResponseWriter, request *http.Request) {
	elements, err := handler.service.FandomElements(
		request.Context(),
		requestutil.ID(request, "id"),
		query.StringSlice(request.URL.Query().Get("categories")),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, elements)
}

// shareRequest is the JSON body for pathway sharing.
type shareRequest struct {
	FandomID string        `json:"fandom_id"`
	Pathway  []PathwayItem `json:"pathway"`
}

/*
POST /api/v1/discovery/pathways/share.

Response:
  - 201: ShareResult: Short identifier plus stateless token
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) sharePathway(writer http.ResponseWriter, request *http.Request) {
	var body shareRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Share(request.Context(), body.FandomID, body.Pathway)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
GET /api/v1/discovery/pathways/{id}.

Description: Accepts both short share identifiers and stateless base64url
tokens, re-running the full validation pipeline against current state.

Response:
  - 200: SharedPathwayResponse: Success
  - 404: ErrNotFound: Unknown, expired, or malformed identifier
*/
func (handler *Handler) loadShared(writer http.ResponseWriter, request *http.Request) {
	response, err := handler.service.LoadShared(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}
