// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
HTTP delivery layer for profile browsing and account administration.

# Security

Every endpoint in this file requires an authenticated principal; the admin
listing and password-reset routes additionally require the admin role. The
routers are mounted behind the Authenticate middleware in internal/api.
*/
package account

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/centra/internal/platform/apperr"
	"github.com/taibuivan/centra/internal/platform/middleware"
	"github.com/taibuivan/centra/internal/platform/respond"
	"github.com/taibuivan/centra/internal/platform/sec"
	"github.com/taibuivan/centra/internal/platform/validate"
	"github.com/taibuivan/centra/pkg/pagination"

	requestutil "github.com/taibuivan/centra/internal/platform/request"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	handler.Register(router)
	return router
}

// Register attaches the account endpoints to an existing router.
//
// The auth and account domains share the same /users mount, so both
// handlers register onto one router instead of each owning a mux.
func (handler *Handler) Register(router chi.Router) {
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)

		// Self service
		protected.Get("/current", handler.getCurrent)

		// Admin browsing
		protected.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))
			admin.Get("/", handler.listAll)
			admin.Get("/page", handler.page)
			admin.Get("/search", handler.search)
			admin.Put("/{userID}/reset-password", handler.resetPassword)
		})

		// Reads scoped to admin-or-self
		protected.Get("/{userID}", handler.getByID)

		// Mutations (ownership enforced in the service)
		protected.Put("/{userID}", handler.update)
		protected.Put("/{userID}/password", handler.changePassword)
		protected.Delete("/{userID}", handler.remove)
	})
}

// # Read Endpoints

/*
GET /users/current.

Description: Retrieves the full profile of the authenticated user.

Response:
  - 200: auth.User: Fully hydrated user profile
  - 401: Authentication required
*/
func (handler *Handler) getCurrent(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
GET /users/{userID}.

Description: Retrieves one user's profile by ID. Admin-or-self.
*/
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !actor.CanActOn(userID) {
		respond.Error(writer, request, apperr.Forbidden("You may only view your own profile"))
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
GET /users.

Description: Lists every live account. Admin-only.
*/
func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.accountService.ListAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

/*
GET /users/page?page=N&limit=M.

Description: Returns one page of accounts with pagination metadata. An
optional username fragment narrows the page to matching accounts.
*/
func (handler *Handler) page(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	if fragment := request.URL.Query().Get("username"); fragment != "" {
		users, meta, err := handler.accountService.Search(request.Context(), fragment, params)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Paginated(writer, users, meta)
		return
	}

	users, meta, err := handler.accountService.Page(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

/*
GET /users/search?q=fragment&page=N&limit=M.

Description: Case-insensitive username search with pagination metadata.
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query().Get("q")

	users, meta, err := handler.accountService.Search(request.Context(), query, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

// # Mutation Endpoints

/*
PUT /users/{userID}.

Description: Applies partial updates to a user's profile. Ownership
(admin-or-self) is enforced in the service layer.

Response:
  - 200: auth.User: The updated profile
  - 403: Editing someone else without the admin role
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateProfileInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), actor, userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PUT /users/{userID}/password.

Description: Self-service password change; requires the current password.
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ChangePasswordInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.accountService.ChangePassword(request.Context(), actor, userID, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// resetPasswordRequest carries the admin-chosen replacement password.
type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

/*
PUT /users/{userID}/reset-password.

Description: Admin sets a new password without knowing the old one.
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input resetPasswordRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.accountService.ResetPassword(request.Context(), actor, userID, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /users/{userID}.

Description: Soft-deletes the account and flushes its sessions. Ownership
(admin-or-self) is enforced in the service layer.
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), actor, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
