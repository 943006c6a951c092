// Copyright (c) 2026 The Pensieve Index. All rights reserved.

package story

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thepensieveindex/pensieve-api/internal/platform/middleware"
	requestutil "github.com/thepensieveindex/pensieve-api/internal/platform/request"
	"github.com/thepensieveindex/pensieve-api/internal/platform/respond"
	"github.com/thepensieveindex/pensieve-api/pkg/pagination"
)

// Handler implements the HTTP layer for the story corpus.
type Handler struct {
	service *Service
}

// NewHandler constructs a new story [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the story endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// # Public Endpoints
	router.Get("/fandoms/{fandomId}/stories", handler.list)
	router.Get("/{id}", handler.get)

	// # Authenticated Mutations
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireAuth)

		adminRoute.Post("/fandoms/{fandomId}/stories", handler.create)
		adminRoute.Put("/{id}", handler.update)
		adminRoute.Post("/{id}/activate", handler.setActive(true))
		adminRoute.Post("/{id}/deactivate", handler.setActive(false))
	})

	return router
}

/*
GET /api/v1/stories/fandoms/{fandomId}/stories.

Description: Paginated catalogue for admin screens and browsing. Discovery
search uses its own scored endpoint, not this one.

Response:
  - 200: []Story + pagination meta: Success
  - 404: ErrNotFound: Unknown fandom
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	stories, total, err := handler.service.List(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "fandomId"),
		params,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, stories, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/stories/{id}.
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	story, err := handler.service.Get(request.Context(), requestutil.Claims(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, story)
}

// storyRequest is the JSON body for story creation and replacement.
type storyRequest struct {
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Summary      *string   `json:"summary"`
	SourceURL    string    `json:"source_url"`
	WordCount    int       `json:"word_count"`
	Status       string    `json:"status"`
	Rating       string    `json:"rating"`
	Language     string    `json:"language"`
	PublishedAt  time.Time `json:"published_at"`
	TagIDs       []string  `json:"tag_ids"`
	PlotBlockIDs []string  `json:"plot_block_ids"`
}

func (body storyRequest) toInput() Input {
	return Input{
		Title:        body.Title,
		Author:       body.Author,
		Summary:      body.Summary,
		SourceURL:    body.SourceURL,
		WordCount:    body.WordCount,
		Status:       body.Status,
		Rating:       body.Rating,
		Language:     body.Language,
		PublishedAt:  body.PublishedAt,
		TagIDs:       body.TagIDs,
		PlotBlockIDs: body.PlotBlockIDs,
	}
}

/*
POST /api/v1/stories/fandoms/{fandomId}/stories.

Response:
  - 201: Story: Created
  - 400: VALIDATION_ERROR: Bad shape or dangling taxonomy references
  - 403: FORBIDDEN: No admin grant for this fandom
  - 409: CONFLICT: Duplicate source URL
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {

	// Decode request body
	var body storyRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	story, err := handler.service.Create(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "fandomId"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, story)
}

/*
PUT /api/v1/stories/{id}.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var body storyRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	story, err := handler.service.Update(
		request.Context(),
		requestutil.Claims(request),
		requestutil.ID(request, "id"),
		body.toInput(),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, story)
}

// setActive builds the activate/deactivate handler for stories.
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
