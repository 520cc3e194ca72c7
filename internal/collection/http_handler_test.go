package collection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"mangaverse/internal/httpx"
)

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID))
}

func TestHTTPHandler_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo, NewMockDetailsProvider(ctrl), nil))

	t.Run("created", func(t *testing.T) {
		repo.EXPECT().AddLink(gomock.Any(), "u1", 2, StatusPlanned).Return(Link{MalID: 2, Status: StatusPlanned}, nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/v1/collection", strings.NewReader(`{"mal_id":2}`)), "u1")
		handler.Add(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		repo.EXPECT().AddLink(gomock.Any(), "u1", 2, StatusPlanned).Return(Link{}, ErrAlreadyExists)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/v1/collection", strings.NewReader(`{"mal_id":2}`)), "u1")
		handler.Add(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPost, "/v1/collection", strings.NewReader(`{"mal_id":0}`)), "u1")
		handler.Add(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "mal_id")
	})

	t.Run("unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest(http.MethodPost, "/v1/collection", strings.NewReader(`{"mal_id":2}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	details := NewMockDetailsProvider(ctrl)
	handler := NewHTTPHandler(NewService(repo, details, nil))

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().UpdateStatus(gomock.Any(), "u1", 42, StatusCompleted).Return(Link{MalID: 42, Status: StatusCompleted}, nil)
		details.EXPECT().Details(gomock.Any(), 42).Return(record(42, "Vagabond", "Publishing"), nil)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPut, "/v1/collection/42", strings.NewReader(`{"status":"completed"}`)), "u1")
		r.SetPathValue("id", "42")
		handler.UpdateStatus(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"completed"`)
		assert.NotContains(t, w.Body.String(), "Publishing")
	})

	t.Run("bad status", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPut, "/v1/collection/42", strings.NewReader(`{"status":"dropped"}`)), "u1")
		r.SetPathValue("id", "42")
		handler.UpdateStatus(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must be one of")
	})

	t.Run("not found", func(t *testing.T) {
		repo.EXPECT().UpdateStatus(gomock.Any(), "u1", 9, StatusReading).Return(Link{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPut, "/v1/collection/9", strings.NewReader(`{"status":"reading"}`)), "u1")
		r.SetPathValue("id", "9")
		handler.UpdateStatus(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodPut, "/v1/collection/abc", strings.NewReader(`{"status":"reading"}`)), "u1")
		r.SetPathValue("id", "abc")
		handler.UpdateStatus(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_RemoveAndList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo, NewMockDetailsProvider(ctrl), nil))

	repo.EXPECT().RemoveLink(gomock.Any(), "u1", 5).Return(nil)
	w := httptest.NewRecorder()
	r := withUser(httptest.NewRequest(http.MethodDelete, "/v1/collection/5", nil), "u1")
	r.SetPathValue("id", "5")
	handler.Remove(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	repo.EXPECT().RemoveLink(gomock.Any(), "u1", 6).Return(ErrNotFound)
	w = httptest.NewRecorder()
	r = withUser(httptest.NewRequest(http.MethodDelete, "/v1/collection/6", nil), "u1")
	r.SetPathValue("id", "6")
	handler.Remove(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	repo.EXPECT().ListLinks(gomock.Any(), "u1").Return([]Link{}, nil)
	w = httptest.NewRecorder()
	handler.List(w, withUser(httptest.NewRequest(http.MethodGet, "/v1/collection", nil), "u1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"meta":{"total":0}}`, w.Body.String())

	repo.EXPECT().ListLinks(gomock.Any(), "u1").Return(nil, context.DeadlineExceeded)
	w = httptest.NewRecorder()
	handler.List(w, withUser(httptest.NewRequest(http.MethodGet, "/v1/collection", nil), "u1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
