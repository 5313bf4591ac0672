// Package rest provides HTTP handlers for inventory operations.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/abgdnv/stockguard/internal/auth"
	perrors "github.com/abgdnv/stockguard/internal/inventory/errors"
	"github.com/abgdnv/stockguard/internal/inventory/service"
	"github.com/abgdnv/stockguard/internal/report"
	pkgauth "github.com/abgdnv/stockguard/pkg/auth"
	"github.com/abgdnv/stockguard/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// SessionManager issues and verifies bearer tokens.
type SessionManager interface {
	pkgauth.Verifier
	Issue(ctx context.Context, subject string) (string, time.Time, error)
}

type Handler struct {
	service     service.InventoryService
	credentials auth.CredentialVerifier
	sessions    SessionManager
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewHandler creates a new Handler serving svc behind a login backed by credentials.
func NewHandler(svc service.InventoryService, credentials auth.CredentialVerifier, sessions SessionManager, logger *slog.Logger) *Handler {
	return &Handler{
		service:     svc,
		credentials: credentials,
		sessions:    sessions,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("component", "rest"),
	}
}

// LoginDto carries the credentials of a login request.
type LoginDto struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenDto is the response of a successful login.
type TokenDto struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportDto describes a written report file.
type ExportDto struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// RegisterRoutes registers the HTTP routes of the inventory API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.sessions))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Find)
					r.Delete("/", h.Delete)
					r.Put("/stock", h.UpdateStock)
				})
			})
			r.Get("/dashboard", h.Dashboard)
			r.Get("/recommendations", h.Recommendations)
			r.Post("/reports/{format}", h.Export)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Login exchanges a username and password for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDto
	if err := web.DecodeJSON(r, &dto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding login request", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, dto) {
		return
	}

	if err := h.credentials.Verify(r.Context(), dto.Username, dto.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WarnContext(r.Context(), "Login failed", "username", dto.Username)
			web.RespondError(w, h.logger, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error verifying credentials", "username", dto.Username, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to verify credentials")
		return
	}

	token, expiresAt, err := h.sessions.Issue(r.Context(), dto.Username)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error issuing session token", "username", dto.Username, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to issue session token")
		return
	}
	h.logger.InfoContext(r.Context(), "User logged in", "username", dto.Username)
	web.RespondJSON(w, h.logger, http.StatusOK, TokenDto{Token: token, ExpiresAt: expiresAt})
}

// List returns every product in insertion order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list := h.service.List(r.Context())
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Find retrieves a product by its ID.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	found, err := h.service.Find(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto service.ProductCreateDto
	if err := web.DecodeJSON(r, &dto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Add(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, err, dto.ID)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// UpdateStock replaces the stock of a product.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var dto service.StockUpdateDto
	if err := web.DecodeJSON(r, &dto); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, dto) {
		return
	}

	updated, err := h.service.UpdateStock(r.Context(), id, *dto.Stock)
	if err != nil {
		h.respondServiceError(w, r, err, id)
		return
	}
	h.logger.InfoContext(r.Context(), "Stock updated successfully for product", "ID", updated.ID, "NewStock", updated.Stock)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Delete removes a product by its ID.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, id)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.service.Dashboard(r.Context()))
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.Recommendations(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, recs)
}

// Export renders the table in the format named by the URL.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	path, err := h.service.Export(r.Context(), format)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrRendererUnavailable):
			h.logger.WarnContext(r.Context(), "Report format unavailable", "format", format)
			web.RespondError(w, h.logger, http.StatusUnprocessableEntity,
				fmt.Sprintf("Report format %q is not available, enabled formats: %v", format, h.service.ExportFormats()))
		case errors.Is(err, report.ErrNothingToReport):
			web.RespondError(w, h.logger, http.StatusUnprocessableEntity, "No products to report")
		default:
			h.logger.ErrorContext(r.Context(), "Error exporting report", "format", format, "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to export report")
		}
		return
	}
	web.RespondJSON(w, h.logger, http.StatusCreated, ExportDto{Format: format, Path: path})
}

// HealthCheck reports 503 while changes cannot be persisted.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if warning := h.service.Dashboard(r.Context()).DurabilityWarning; warning != "" {
		web.RespondJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": warning})
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// validateDto writes a 400 response and reports false if dto fails validation.
func (h *Handler) validateDto(w http.ResponseWriter, r *http.Request, dto any) bool {
	err := h.validate.Struct(dto)
	if err == nil {
		return true
	}
	if errorResponse, ok := web.ValidationErrors(err); ok {
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
	return false
}

// respondServiceError maps inventory errors onto HTTP status codes.
// productID returns the decoded {id} path parameter. chi matches on the raw path
// when it holds escapes such as %2F, and then the parameter is still escaped.
func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, true
	}
	decoded, err := url.PathUnescape(id)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid product ID in path", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid product ID %q", id))
		return "", false
	}
	return decoded, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errorResponse, ok := web.ValidationErrors(err); ok {
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return
	}
	switch {
	case errors.Is(err, perrors.ErrValidation):
		h.logger.WarnContext(r.Context(), "Request rejected", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	default:
		h.logger.ErrorContext(r.Context(), "Error processing request", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to process request")
	}
}
