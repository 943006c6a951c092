// Copyright (c) 2026 The Pensieve Index. All rights reserved.

/*
Package fandom provides the HTTP interface for managing scoping namespaces.

# Access Control

  - Public: Listing and reading active fandoms.
  - Project Admin: Creating, updating, (de)activating fandoms and managing
    fandom-admin grants.

The handler serves as the bridge between RESTful requests and the [Service] layer.
*/
package fandom

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thepensieveindex/pensieve-api/internal/platform/middleware"
	requestutil "github.com/thepensieveindex/pensieve-api/internal/platform/request"
	"github.com/thepensieveindex/pensieve-api/internal/platform/respond"
	"github.com/thepensieveindex/pensieve-api/internal/platform/sec"
)

// Handler implements the HTTP layer for the fandom domain.
type Handler struct {
	service *Service
}

// NewHandler constructs a new fandom [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the fandom domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// # Public Endpoints
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Get("/by-slug/{slug}", handler.getBySlug)

	// # Project Admin Only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleProjectAdmin))

		adminRoute.Post("/", handler.create)
		adminRoute.Patch("/{id}", handler.update)
		adminRoute.Post("/{id}/activate", handler.activate)
		adminRoute.Post("/{id}/deactivate", handler.deactivate)
		adminRoute.Post("/{id}/grants", handler.addGrant)
		adminRoute.Delete("/{id}/grants/{userId}", handler.removeGrant)
	})

	return router
}

/*
GET /api/v1/fandoms.

Description: Retrieves the fandom catalogue. Deactivated fandoms are included
only for project admins.

Response:
  - 200: []Fandom: Success
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {

	// Get all fandoms visible to this caller
	fandoms, err := handler.service.List(request.Context(), requestutil.Claims(request))

	// Handle error
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, fandoms)
}

/*
GET /api/v1/fandoms/{id}.

Response:
  - 200: Fandom: Success
  - 404: ErrNotFound: Unknown or deactivated fandom
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	f, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, f)
}

/*
GET /api/v1/fandoms/by-slug/{slug}.

Response:
  - 200: Fandom: Success
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	slugStr := requestutil.Param(request, "slug")

	f, err := handler.service.GetBySlug(request.Context(), slugStr)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, f)
}

// createRequest is the JSON body for fandom creation.
type createRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

/*
POST /api/v1/fandoms.

Request:
  - body: createRequest

Response:
  - 201: Fandom: Created
  - 400: VALIDATION_ERROR: Missing/invalid name
  - 409: CONFLICT: Duplicate slug
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {

	// Decode request body
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Domain logic execution
	f, err := handler.service.Create(request.Context(), actorID, CreateInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, f)
}

// updateRequest is the JSON body for partial fandom updates.
type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

/*
PATCH /api/v1/fandoms/{id}.

Response:
  - 200: Fandom: Updated
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var body updateRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	f, err := handler.service.Update(request.Context(), actorID, requestutil.ID(request, "id"), UpdateInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, f)
}

/*
POST /api/v1/fandoms/{id}/activate.
*/
func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, true)
}

/*
POST /api/v1/fandoms/{id}/deactivate.
*/
func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	handler.setActive(writer, request, false)
}

// setActive is the shared implementation for activate/deactivate.
func (handler *Handler) setActive(writer http.ResponseWriter, request *http.Request, active bool) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetActive(request.Context(), actorID, requestutil.ID(request, "id"), active); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// grantRequest is the JSON body for adding a fandom-admin grant.
type grantRequest struct {
	UserID string `json:"user_id"`
}

/*
POST /api/v1/fandoms/{id}/grants.

Response:
  - 204: Grant recorded
  - 404: ErrNotFound: Unknown fandom
  - 409: CONFLICT: Grant already exists
*/
func (handler *Handler) addGrant(writer http.ResponseWriter, request *http.Request) {
	var body grantRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AddGrant(request.Context(), actorID, body.UserID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/fandoms/{id}/grants/{userId}.
*/
func (handler *Handler) removeGrant(writer http.ResponseWriter, request *http.Request) {
	actorID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.RemoveGrant(
		request.Context(),
		actorID,
		requestutil.ID(request, "userId"),
		requestutil.ID(request, "id"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
