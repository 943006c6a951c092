// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package rules

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thepensieveindex/pensieve-api/internal/platform/middleware"
	requestutil "github.com/thepensieveindex/pensieve-api/internal/platform/request"
	"github.com/thepensieveindex/pensieve-api/internal/platform/respond"
)

// Handler implements the HTTP layer for validation rules.
type Handler struct {
	service *Service
}

// NewHandler constructs a new rules [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the rule endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// # Public Endpoints
	router.Get("/fandoms/{fandomId}/rules", handler.list)
	router.Get("/rules/{id}", handler.get)

	// # Authenticated Mutations
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireAuth)

		adminRoute.Post("/fandoms/{fandomId}/rules", handler.create)
		adminRoute.Put("/rules/{id}", handler.update)
		adminRoute.Post("/rules/{id}/activate", handler.setActive(true))
		adminRoute.Post("/rules/{id}/deactivate", handler.setActive(false))
	})

	return router
}

/*
GET /api/v1/validation/fandoms/{fandomId}/rules.

Response:
  - 200: []Rule: Success (admins also see deactivated rules)
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	list, err := handler.service.List(request.Context(), requestutil.Claims(request), requestutil.ID(request, "fandomId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, list)
}

/*
GET /api/v1/validation/rules/{id}.
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	rule, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rule)
}

// ruleRequest is the JSON body for rule creation and replacement.
type ruleRequest struct {
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	RuleType    string      `json:"rule_type"`
	Priority    int         `json:"priority"`
	Conditions  []Condition `json:"conditions"`
	Actions     []Action    `json:"actions"`
}

func (body ruleRequest) toInput() Input {
	return Input{
		Name:        body.Name,
		Description: body.Description,
		RuleType:    body.RuleType,
		Priority:    body.Priority,
		Conditions:  body.Conditions,
		Actions:     body.Actions,
	}
}

/*
POST /api/v1/validation/fandoms/{fandomId}/rules.

Request:
  - body: ruleRequest

Response:
  - 201: Rule: Created
  - 400: VALIDATION_ERROR: Bad shape
  - 403: FORBIDDEN: No admin grant for this fandom
  - 422: UNPROCESSABLE: Unknown condition/action type or bad variant payload
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {

	// Decode request body
	var body ruleRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	rule, err := handler.service.Create(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "fandomId"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, rule)
}

/*
PUT /api/v1/validation/rules/{id}.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var body ruleRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	rule, err := handler.service.Update(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "id"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rule)
}

// setActive builds the activate/deactivate handler for rules.
func (handler *Handler) setActive(active bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		err := handler.service.SetActive(
			request.Context(),
			requestutil.Claims(request),
			requestutil.ID(request, "id"),
			active,
		)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.NoContent(writer)
	}
}
