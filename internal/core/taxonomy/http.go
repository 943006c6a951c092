// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package taxonomy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thepensieveindex/pensieve-api/internal/platform/middleware"
	requestutil "github.com/thepensieveindex/pensieve-api/internal/platform/request"
	"github.com/thepensieveindex/pensieve-api/internal/platform/respond"
)

// Handler implements the HTTP layer for the taxonomy domain.
//
// Reads are public. Mutations require authentication; fandom-level
// authorization (project admin or fandom grant) happens in the service.
type Handler struct {
	service *Service
}

// NewHandler constructs a new taxonomy [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the taxonomy endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// # Public Endpoints
	router.Get("/fandoms/{fandomId}/tags", handler.listTags)
	router.Get("/fandoms/{fandomId}/tag-classes", handler.listTagClasses)
	router.Get("/fandoms/{fandomId}/plot-blocks", handler.listPlotBlocks)
	router.Get("/tags/{id}", handler.getTag)
	router.Get("/tag-classes/{id}", handler.getTagClass)
	router.Get("/plot-blocks/{id}", handler.getPlotBlock)

	// # Authenticated Mutations
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireAuth)

		adminRoute.Post("/fandoms/{fandomId}/tags", handler.createTag)
		adminRoute.Put("/tags/{id}", handler.updateTag)
		adminRoute.Post("/tags/{id}/activate", handler.tagActive(true))
		adminRoute.Post("/tags/{id}/deactivate", handler.tagActive(false))

		adminRoute.Post("/fandoms/{fandomId}/tag-classes", handler.createTagClass)
		adminRoute.Put("/tag-classes/{id}", handler.updateTagClass)
		adminRoute.Post("/tag-classes/{id}/activate", handler.tagClassActive(true))
		adminRoute.Post("/tag-classes/{id}/deactivate", handler.tagClassActive(false))

		adminRoute.Post("/fandoms/{fandomId}/plot-blocks", handler.createPlotBlock)
		adminRoute.Put("/plot-blocks/{id}", handler.updatePlotBlock)
		adminRoute.Post("/plot-blocks/{id}/activate", handler.plotBlockActive(true))
		adminRoute.Post("/plot-blocks/{id}/deactivate", handler.plotBlockActive(false))
	})

	return router
}

// # Tags

/*
GET /api/v1/taxonomy/fandoms/{fandomId}/tags.

Response:
  - 200: []Tag: Success
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.ListTags(request.Context(), requestutil.Claims(request), requestutil.ID(request, "fandomId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tags)
}

/*
GET /api/v1/taxonomy/tags/{id}.
*/
func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tag, err := handler.service.GetTag(request.Context(), requestutil.Claims(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

// tagRequest is the JSON body for tag creation and replacement.
type tagRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Category     string   `json:"category"`
	TagClassID   *string  `json:"tag_class_id"`
	RequiresTags []string `json:"requires_tags"`
	EnhancesTags []string `json:"enhances_tags"`
}

func (body tagRequest) toInput() TagInput {
	return TagInput{
		Name:         body.Name,
		Description:  body.Description,
		Category:     body.Category,
		TagClassID:   body.TagClassID,
		RequiresTags: body.RequiresTags,
		EnhancesTags: body.EnhancesTags,
	}
}

/*
POST /api/v1/taxonomy/fandoms/{fandomId}/tags.

Response:
  - 201: Tag: Created
  - 400: VALIDATION_ERROR: Bad shape or dangling references
  - 403: FORBIDDEN: No admin grant for this fandom
  - 409: CONFLICT: Duplicate slug within the fandom
*/
func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {

	// Decode request body
	var body tagRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.CreateTag(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "fandomId"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, tag)
}

/*
PUT /api/v1/taxonomy/tags/{id}.
*/
func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	var body tagRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.UpdateTag(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "id"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tag)
}

// tagActive builds the activate/deactivate handler for tags.
func (handler *Handler) tagActive(active bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		err := handler.service.SetTagActive(
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

// # Tag Classes

/*
GET /api/v1/taxonomy/fandoms/{fandomId}/tag-classes.
*/
func (handler *Handler) listTagClasses(writer http.ResponseWriter, request *http.Request) {
	classes, err := handler.service.ListTagClasses(request.Context(), requestutil.Claims(request), requestutil.ID(request, "fandomId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, classes)
}

/*
GET /api/v1/taxonomy/tag-classes/{id}.
*/
func (handler *Handler) getTagClass(writer http.ResponseWriter, request *http.Request) {
	class, err := handler.service.GetTagClass(request.Context(), requestutil.Claims(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, class)
}

// tagClassRequest is the JSON body for tag class creation and replacement.
type tagClassRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Constraint  ClassConstraint `json:"constraint"`
}

/*
POST /api/v1/taxonomy/fandoms/{fandomId}/tag-classes.

Response:
  - 201: TagClass: Created
  - 409: CONFLICT: Duplicate name within the fandom
*/
func (handler *Handler) createTagClass(writer http.ResponseWriter, request *http.Request) {
	var body tagClassRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	class, err := handler.service.CreateTagClass(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "fandomId"),
		TagClassInput{Name: body.Name, Description: body.Description, Constraint: body.Constraint},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, class)
}

/*
PUT /api/v1/taxonomy/tag-classes/{id}.
*/
func (handler *Handler) updateTagClass(writer http.ResponseWriter, request *http.Request) {
	var body tagClassRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	class, err := handler.service.UpdateTagClass(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "id"),
		TagClassInput{Name: body.Name, Description: body.Description, Constraint: body.Constraint},
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, class)
}

// tagClassActive builds the activate/deactivate handler for tag classes.
func (handler *Handler) tagClassActive(active bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		err := handler.service.SetTagClassActive(
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

// # Plot Blocks

/*
GET /api/v1/taxonomy/fandoms/{fandomId}/plot-blocks.

Description: Returns the fandom's plot trees with children nested.

Response:
  - 200: []PlotBlockNode: Success
*/
func (handler *Handler) listPlotBlocks(writer http.ResponseWriter, request *http.Request) {
	forest, err := handler.service.ListPlotBlocks(request.Context(), requestutil.Claims(request), requestutil.ID(request, "fandomId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, forest)
}

/*
GET /api/v1/taxonomy/plot-blocks/{id}.
*/
func (handler *Handler) getPlotBlock(writer http.ResponseWriter, request *http.Request) {
	block, err := handler.service.GetPlotBlock(request.Context(), requestutil.Claims(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, block)
}

// plotBlockRequest is the JSON body for plot block creation and replacement.
type plotBlockRequest struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Category      string   `json:"category"`
	ParentID      *string  `json:"parent_id"`
	ConflictsWith []string `json:"conflicts_with"`
	RequiresTags  []string `json:"requires_tags"`
	EnhancesTags  []string `json:"enhances_tags"`
}

func (body plotBlockRequest) toInput() PlotBlockInput {
	return PlotBlockInput{
		Name:          body.Name,
		Description:   body.Description,
		Category:      body.Category,
		ParentID:      body.ParentID,
		ConflictsWith: body.ConflictsWith,
		RequiresTags:  body.RequiresTags,
		EnhancesTags:  body.EnhancesTags,
	}
}

/*
POST /api/v1/taxonomy/fandoms/{fandomId}/plot-blocks.

Response:
  - 201: PlotBlock: Created
  - 400: VALIDATION_ERROR: Bad shape, dangling parent, or cycle
*/
func (handler *Handler) createPlotBlock(writer http.ResponseWriter, request *http.Request) {
	var body plotBlockRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	block, err := handler.service.CreatePlotBlock(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "fandomId"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, block)
}

/*
PUT /api/v1/taxonomy/plot-blocks/{id}.
*/
func (handler *Handler) updatePlotBlock(writer http.ResponseWriter, request *http.Request) {
	var body plotBlockRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	block, err := handler.service.UpdatePlotBlock(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "id"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, block)
}

// plotBlockActive builds the activate/deactivate handler for plot blocks.
func (handler *Handler) plotBlockActive(active bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		err := handler.service.SetPlotBlockActive(
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
