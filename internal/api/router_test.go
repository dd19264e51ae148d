package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lostwatch/internal/apperr"
	"lostwatch/internal/auth"
	"lostwatch/internal/handlers"
	"lostwatch/internal/models"
	"lostwatch/internal/registry"
	"lostwatch/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	engine *gin.Engine
	store  *store.Store
}

func newServer(t *testing.T, v auth.TokenVerifier) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	r := gin.New()
	r.Use(RequestLogger())
	RegisterRoutes(r, Deps{Service: registry.New(s, nil), Verifier: v})
	return &server{engine: r, store: s}
}

func (s *server) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *server) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.store.DB.Model(&models.WatchReport{}).Count(&n).Error)
	return n
}

func TestReportMatchFlow(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodPost, "/reports", map[string]any{
		"serial_number": "A1", "status": "lost", "email": "a@x.com", "date_reported": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[handlers.SubmitResponse](t, w)
	assert.False(t, first.Matched)
	assert.Equal(t, "report submitted", first.Message)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodPost, "/reports", map[string]any{
		"serial_number": "A1", "status": "found", "email": "b@x.com", "date_reported": "2024-01-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[handlers.SubmitResponse](t, w)
	assert.True(t, second.Matched)
	assert.Equal(t, "a@x.com notified", second.Message)
	assert.Equal(t, "b@x.com", second.FinderContact)
	assert.Equal(t, "a@x.com", second.LoserContact)

	w = s.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Stats{Reunited: 1}, decode[models.Stats](t, w))

	// the same numbers are served on the old path
	w = s.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, models.Stats{Reunited: 1}, decode[models.Stats](t, w))
}

func TestReportValidation(t *testing.T) {
	s := newServer(t, nil)

	tests := []struct {
		name      string
		body      any
		wantField string
	}{
		{"malformed json", `{"serial_number":`, ""},
		{"missing serial", map[string]any{"status": "lost", "email": "a@x.com", "date_reported": "2024-01-01"}, "serial_number"},
		{"missing status", map[string]any{"serial_number": "A1", "email": "a@x.com", "date_reported": "2024-01-01"}, "status"},
		{"missing email", map[string]any{"serial_number": "A1", "status": "lost", "date_reported": "2024-01-01"}, "email"},
		{"missing date", map[string]any{"serial_number": "A1", "status": "lost", "email": "a@x.com"}, "date_reported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/reports", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[apperr.Wire](t, w)
			assert.Equal(t, apperr.KindValidation, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
			assert.NotEmpty(t, body.Message)
		})
	}
	assert.Zero(t, s.count(t))
}

func TestListReportsPrivacy(t *testing.T) {
	s := newServer(t, nil)
	for _, b := range []map[string]any{
		{"serial_number": "A1", "status": "lost", "email": "a@x.com", "date_reported": "2024-01-01", "latitude": 40.7, "longitude": -74.0, "model": "Series 8"},
		{"serial_number": "B1", "status": "found", "email": "b@x.com", "date_reported": "2024-01-01"},
		{"serial_number": "C1", "status": "lost", "email": "c@x.com", "date_reported": "2024-01-01"},
		{"serial_number": "C1", "status": "found", "email": "d@x.com", "date_reported": "2024-01-02"},
	} {
		w := s.do(t, http.MethodPost, "/reports", b)
		require.Less(t, w.Code, 300, w.Body.String())
	}

	for _, path := range []string{"/reports", "/api/watches"} {
		w := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		points := decode[[]map[string]any](t, w)
		require.Len(t, points, 2)
		for _, p := range points {
			assert.NotContains(t, p, "serial_number")
			assert.NotContains(t, p, "email")
			assert.NotContains(t, p, "reunited_with")
			assert.NotEqual(t, "reunited", p["status"])
		}
		assert.Equal(t, "Series 8", points[0]["model"])
		assert.InDelta(t, 40.7, points[0]["latitude"], 1e-9)
	}

	w := s.do(t, http.MethodGet, "/reports?status=found", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.MapPoint](t, w), 1)

	w = s.do(t, http.MethodGet, "/reports?status=reunited", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReportsEmptyIsArray(t *testing.T) {
	s := newServer(t, nil)
	w := s.do(t, http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

type denyAll struct{}

func (denyAll) Verify(context.Context, string) (*auth.Claims, error) {
	return nil, apperr.Auth("token expired", nil)
}

type allowAll struct{}

func (allowAll) Verify(context.Context, string) (*auth.Claims, error) {
	return &auth.Claims{}, nil
}

func TestAuthGate(t *testing.T) {
	body := map[string]any{"serial_number": "A1", "status": "lost", "email": "a@x.com", "date_reported": "2024-01-01"}

	denied := newServer(t, denyAll{})
	w := denied.do(t, http.MethodPost, "/reports", body, "Authorization", "Bearer x")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperr.KindAuth, decode[apperr.Wire](t, w).Error)
	w = denied.do(t, http.MethodPost, "/api/found", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, denied.count(t))

	// reads stay public
	w = denied.do(t, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	allowed := newServer(t, allowAll{})
	w = allowed.do(t, http.MethodPost, "/reports", body, "Authorization", "Bearer x")
	assert.Equal(t, http.StatusCreated, w.Code)
	w = allowed.do(t, http.MethodPost, "/reports", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStoreFailureHidesDetail(t *testing.T) {
	s := newServer(t, nil)
	require.NoError(t, s.store.Close())

	w := s.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[apperr.Wire](t, w)
	assert.Equal(t, apperr.KindStore, body.Error)
	assert.Equal(t, "internal error", body.Message)

	w = s.do(t, http.MethodPost, "/reports", map[string]any{
		"serial_number": "A1", "status": "lost", "email": "a@x.com", "date_reported": "2024-01-01",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "closed")
}

func TestLookupRoutes(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodGet, "/reports/lookup?serial_number=A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[handlers.LookupResponse](t, w).Match)

	w = s.do(t, http.MethodPost, "/api/found", map[string]any{
		"serial_number": "A1", "email": "f@x.com", "model": "Ultra 2", "date_reported": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/reports/lookup?serial_number=a1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[handlers.LookupResponse](t, w)
	assert.True(t, got.Match)
	require.NotNil(t, got.Report)
	assert.Equal(t, "Ultra 2", got.Report.Model)
	assert.NotContains(t, w.Body.String(), "f@x.com")

	w = s.do(t, http.MethodPost, "/api/lost", map[string]any{"serial_number": "A1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[handlers.LookupResponse](t, w).Match)

	w = s.do(t, http.MethodGet, "/reports/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDAndPing(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(t, http.MethodGet, "/v1/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = s.do(t, http.MethodGet, "/v1/ping", nil, requestIDHeader, "req-123")
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}
