package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/FreshMarket/pkg/httputil"
	"github.com/utafrali/FreshMarket/pkg/middleware"
	"github.com/utafrali/FreshMarket/pkg/validator"
	"github.com/utafrali/FreshMarket/services/storefront/internal/service"
)

// StorefrontHandler handles HTTP requests for the storefront session API.
type StorefrontHandler struct {
	service *service.StorefrontService
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc *service.StorefrontService, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		service: svc,
		logger:  logger,
	}
}

// sessionID returns the session the request is scoped to. Auth guarantees one.
func sessionID(r *http.Request) string {
	return middleware.SessionIDFromContext(r.Context())
}

// decode reads and validates the JSON body into dst, writing the error
// response itself when it fails. An empty body is accepted when optional.
func (h *StorefrontHandler) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := validator.DecodeAndValidate(r, dst)
	if optional && errors.Is(err, io.EOF) {
		err = validator.Validate(dst)
	}
	if err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func (h *StorefrontHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}

func (h *StorefrontHandler) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, data)
}
