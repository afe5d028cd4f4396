// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package captcha

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/centra/internal/platform/respond"

	requestutil "github.com/taibuivan/centra/internal/platform/request"
)

// Handler implements the captcha HTTP endpoints.
type Handler struct {
	captchaService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{captchaService: service}
}

// Routes returns a [chi.Router] configured with captcha routes.
//
// # Endpoints
//   - GET    /       : Generates a new challenge (ID + base64 PNG).
//   - DELETE /{id}   : Discards a challenge so the client can fetch a new one.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.generate)
	router.Delete("/{captchaID}", handler.discard)

	return router
}

// generate handles GET /captcha requests.
func (handler *Handler) generate(writer http.ResponseWriter, request *http.Request) {
	challenge, err := handler.captchaService.Generate(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, challenge)
}

// discard handles DELETE /captcha/{captchaID} requests.
func (handler *Handler) discard(writer http.ResponseWriter, request *http.Request) {
	captchaID := requestutil.Param(request, "captchaID")

	if err := handler.captchaService.Remove(request.Context(), captchaID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
