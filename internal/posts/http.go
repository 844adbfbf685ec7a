// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/spark/internal/platform/middleware"
	requestutil "github.com/taibuivan/spark/internal/platform/request"
	"github.com/taibuivan/spark/internal/platform/respond"
	"github.com/taibuivan/spark/internal/platform/validate"
)

// Handler implements the post HTTP endpoints.
type Handler struct {
	postService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{postService: service}
}

// Routes returns a [chi.Router] with the post routes.
//
// # Endpoints
//   - GET  /           : Ranked feed.
//   - POST /           : Submit a post (authenticated).
//   - POST /{id}/vote  : Cast or toggle a vote.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/{id}/vote", handler.vote)

	// Submission requires an identity
	router.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)
		user.Post("/", handler.create)
	})

	return router
}

// # Payloads

type createRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type voteRequest struct {
	VoteType string `json:"voteType"`
}

type listResponse struct {
	Posts []Post `json:"posts"`
}

type postResponse struct {
	Post *Post `json:"post"`
}

/*
List returns every post ranked by score.

GET /api/posts

Response:
  - 200: {posts}
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	posts, mode, err := handler.postService.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKWithMode(writer, listResponse{Posts: posts}, string(mode))
}

/*
Create submits a post as the authenticated caller.

POST /api/posts

Request:
  - Body: createRequest (Title, Content, Category)

Response:
  - 201: {post}
  - 400: Validation failure
  - 401: No identity
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, TitleMaxLength).
		Required(FieldContent, input.Content).
		MaxLen(FieldContent, input.Content, ContentMaxLength).
		MaxLen(FieldCategory, input.Category, CategoryMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, mode, err := handler.postService.Submit(request.Context(), identity, NewPost{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.CreatedWithMode(writer, postResponse{Post: post}, string(mode))
}

/*
Vote casts the caller's vote on a post.

POST /api/posts/{id}/vote

Request:
  - Body: voteRequest (VoteType: "up" | "down")

Response:
  - 200: {post}
  - 400: Invalid voteType
  - 401: No identity while anonymous votes are disabled
  - 404: Unknown post
*/
func (handler *Handler) vote(writer http.ResponseWriter, request *http.Request) {
	var input voteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldVoteType, input.VoteType).
		OneOf(FieldVoteType, input.VoteType, string(DirectionUp), string(DirectionDown))

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, mode, err := handler.postService.Vote(
		request.Context(),
		requestutil.Param(request, "id"),
		requestutil.Identity(request),
		Direction(input.VoteType),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKWithMode(writer, postResponse{Post: post}, string(mode))
}
