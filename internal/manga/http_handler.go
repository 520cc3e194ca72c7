package manga

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mangaverse/internal/httpx"
)

const minSearchLength = 3

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Details handles GET /v1/manga/details/{id}
// @Summary Get one title
// @Tags manga
// @Produce json
// @Param id path int true "MyAnimeList id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/manga/details/{id} [get]
func (h *HTTPHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Details(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Manga not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, rec, nil)
}

// Search handles GET /v1/manga/search
// @Summary Free-text search
// @Tags manga
// @Produce json
// @Param q query string true "Search query (at least 3 characters)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/manga/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < minSearchLength {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid query", []httpx.ErrorDetail{
			{Field: "q", Message: "q must be at least 3 characters"},
		})
		return
	}
	httpx.JSONSuccess(w, r, h.service.Search(r.Context(), q), nil)
}

// Top handles GET /v1/manga/top
// @Summary Top titles
// @Tags manga
// @Produce json
// @Param filter query string false "publishing, upcoming, bypopularity or favorite"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/manga/top [get]
func (h *HTTPHandler) Top(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.service.Top(r.Context(), r.URL.Query().Get("filter")), nil)
}

// ByGenre handles GET /v1/manga/genre/{id}
// @Summary Most popular titles of a genre
// @Tags manga
// @Produce json
// @Param id path int true "Genre id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/manga/genre/{id} [get]
func (h *HTTPHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	httpx.JSONSuccess(w, r, h.service.ByGenre(r.Context(), id), nil)
}

// List handles GET /v1/manga
// @Summary Paginated listing
// @Tags manga
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(25)
// @Param genre query string false "Genre id filter"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/manga [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	var filters map[string]string
	if genre := query.Get("genre"); genre != "" {
		filters = map[string]string{"genres": genre}
	}

	httpx.JSONSuccess(w, r, h.service.List(r.Context(), page, limit, filters), map[string]any{
		"page":  page,
		"limit": limit,
	})
}

// News handles GET /v1/manga/news
// @Summary Combined news of popular titles, newest first
// @Tags manga
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/manga/news [get]
func (h *HTTPHandler) News(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.service.News(r.Context()), nil)
}

// Recommendations handles GET /v1/manga/recommended
// @Summary Recently recommended titles
// @Tags manga
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/manga/recommended [get]
func (h *HTTPHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.service.Recommendations(r.Context()), nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid id", nil)
		return 0, false
	}
	return id, true
}
