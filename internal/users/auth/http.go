// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// HTTP delivery layer for the auth use cases.
//
// # Architecture
//
// Handlers act as the "gatekeepers" to the system. They are responsible for:
//   - JSON Request parsing and strict input validation.
//   - Mapping HTTP contexts to service layer method calls.
//   - Standardizing JSON response formats via the [respond] package.
//
// They contain NO business logic or database queries.
package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/centra/internal/platform/middleware"
	"github.com/taibuivan/centra/internal/platform/respond"
	"github.com/taibuivan/centra/internal/platform/validate"

	requestutil "github.com/taibuivan/centra/internal/platform/request"
)

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points
// (Registration, Login, Logout, bulk session revocation).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register          : Creates a new account (captcha-gated).
//   - POST /login             : Authenticates and returns a session token.
//   - POST /logout            : Revokes the presented token.
//   - POST /{id}/logout-all   : Revokes every session of a user.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	handler.Register(router)
	return router
}

// Register attaches the authentication endpoints to an existing router.
//
// The auth and account domains share the same /users mount, so both
// handlers register onto one router instead of each owning a mux.
func (handler *Handler) Register(router chi.Router) {
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout", handler.logout)
		protected.Post("/{userID}/logout-all", handler.logoutAll)
	})
}

// register handles POST /users/register requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the User profile.
//   - Writes HTTP 400 Bad Request if validation or captcha rules fail.
//   - Writes HTTP 409 Conflict if the account is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input RegisterInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	// The service performs normalization, the full validator chain, the
	// captcha gate, and Bcrypt hashing. Domain errors map to HTTP statuses
	// automatically through the respond helper.
	user, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	respond.Created(writer, user)
}

// login handles POST /users/login requests.
//
// # Returns
//   - Writes HTTP 200 OK on success with the session token and User profile.
//   - Writes HTTP 401 Unauthorized for bad credentials.
//   - Writes HTTP 429 Too Many Requests while the account is locked out.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input LoginInput
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if input.Account == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("account/password", "are required"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	result, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		// Returns HTTP 401 without leaking the reason (wrong pass vs unknown account)
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, result)
}

// logout handles POST /users/logout requests.
//
// The token being revoked is the one that authenticated this request.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := middleware.ExtractToken(request)

	if err := handler.authService.Logout(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// logoutAll handles POST /users/{userID}/logout-all requests.
//
// # Authorization
//
// Users may revoke their own sessions; admins may revoke anyone's.
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	targetID, err := requestutil.ID(request, "userID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	revoked, err := handler.authService.LogoutAll(request.Context(), actor, targetID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"revoked_sessions": revoked})
}
