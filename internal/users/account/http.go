// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/spark/internal/platform/middleware"
	requestutil "github.com/taibuivan/spark/internal/platform/request"
	"github.com/taibuivan/spark/internal/platform/respond"
	"github.com/taibuivan/spark/internal/platform/validate"
)

// Handler implements the HTTP layer for the member directory and profiles.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account endpoints.
//
// # Endpoints
//   - GET /users           : Member directory.
//   - GET /user?username=  : Public profile.
//   - GET /me              : Profile of the authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/users", handler.listUsers)
	router.Get("/user", handler.getProfile)
	router.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)
		user.Get("/me", handler.getMe)
	})

	return router
}

type directoryResponse struct {
	Users []Member `json:"users"`
	Count int      `json:"count"`
}

/*
GET /api/users.

Response:
  - 200: {users, count}
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	members, mode, err := handler.accountService.Directory(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKWithMode(writer, directoryResponse{Users: members, Count: len(members)}, string(mode))
}

/*
GET /api/user?username=.

Response:
  - 200: ProfilePage {user, posts}
  - 400: Missing username
  - 404: Unknown member
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	username := request.URL.Query().Get(FieldUsername)

	validator := &validate.Validator{}
	if err := validator.Required(FieldUsername, username).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, mode, err := handler.accountService.Profile(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKWithMode(writer, page, string(mode))
}

/*
GET /api/me.

Description: Identities derived at login may have no stored account, in which
case the caller gets a 404 like any unknown member.

Response:
  - 200: ProfilePage {user, posts}
  - 401: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, mode, err := handler.accountService.Profile(request.Context(), identity.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKWithMode(writer, page, string(mode))
}
