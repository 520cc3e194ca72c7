// Package testutil holds helpers shared by HTTP-level tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mangaverse/internal/auth"
)

// GenerateTestToken signs a one-hour bearer token for userID.
func GenerateTestToken(t testing.TB, secret, userID string) string {
	t.Helper()
	token, _, err := auth.GenerateToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// NewRequest builds a request with body encoded as JSON when non-nil.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse decodes the recorded JSON envelope.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}
	return RecordResponse{Code: result.StatusCode, Header: result.Header, Body: bodyMap}
}

// CatalogServer fakes the upstream catalog API. Routes map a request path
// (without the /v4 prefix) to a raw JSON body; unknown paths get 404.
type CatalogServer struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]string
	fail   map[string]int
	calls  map[string]int
}

func NewCatalogServer(t testing.TB) *CatalogServer {
	t.Helper()
	s := &CatalogServer{
		routes: map[string]string{},
		fail:   map[string]int{},
		calls:  map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value to configure as the client base URL.
func (s *CatalogServer) BaseURL() string {
	return s.URL + "/v4"
}

// Handle serves body for path.
func (s *CatalogServer) Handle(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = body
}

// Fail answers path with status.
func (s *CatalogServer) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[path] = status
}

// Calls reports how many requests path received.
func (s *CatalogServer) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *CatalogServer) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if len(path) >= 3 && path[:3] == "/v4" {
		path = path[3:]
	}

	s.mu.Lock()
	s.calls[path]++
	status, failing := s.fail[path]
	body, ok := s.routes[path]
	s.mu.Unlock()

	switch {
	case failing:
		w.WriteHeader(status)
	case !ok:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}
