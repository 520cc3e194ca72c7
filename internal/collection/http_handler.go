package collection

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"mangaverse/internal/httpx"
)

func init() {
	httpx.RegisterValidation("collection_status", "must be one of: reading, completed, planned", func(fl validator.FieldLevel) bool {
		return ValidateStatus(Status(fl.Field().String())) == nil
	})
}

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type addReq struct {
	MalID int `json:"mal_id" validate:"required,gt=0"`
}

type updateReq struct {
	Status string `json:"status" validate:"required,collection_status"`
}

// List handles GET /v1/collection
// @Summary List my collection
// @Description Returns the caller's collection enriched with catalog data, in the order it was added
// @Tags collection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/collection [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, entries, map[string]any{"total": len(entries)})
}

// Add handles POST /v1/collection
// @Summary Add a title to my collection
// @Tags collection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body addReq true "Title to add"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/collection [post]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	var req addReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid request", details)
		return
	}

	link, err := h.service.Add(r.Context(), userID, req.MalID)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, httpx.CodeConflict, "Manga already in collection", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}
	httpx.JSONCreated(w, r, link)
}

// UpdateStatus handles PUT /v1/collection/{id}
// @Summary Change the reading status of a title
// @Tags collection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "MyAnimeList id"
// @Param body body updateReq true "New status"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/collection/{id} [put]
func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}
	malID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid request", details)
		return
	}

	entry, err := h.service.UpdateStatus(r.Context(), userID, malID, Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Manga not in collection", nil)
		case errors.Is(err, ErrInvalidStatus):
			httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, err.Error(), nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, r, entry, nil)
}

// Remove handles DELETE /v1/collection/{id}
// @Summary Remove a title from my collection
// @Tags collection
// @Security BearerAuth
// @Param id path int true "MyAnimeList id"
// @Success 204
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/collection/{id} [delete]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}
	malID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), userID, malID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Manga not in collection", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}
	httpx.NoContent(w)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid manga id", nil)
		return 0, false
	}
	return id, true
}
