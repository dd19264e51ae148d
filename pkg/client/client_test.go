package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSendsTokenAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reports", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var rep Report
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rep))
		assert.Equal(t, "A1", rep.SerialNumber)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"matched":true,"message":"a@x.com notified","finder_contact":"b@x.com","loser_contact":"a@x.com"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok")
	res, err := c.Submit(context.Background(), Report{SerialNumber: "A1", Status: "found", Email: "b@x.com", DateReported: "2024-01-02"})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "b@x.com", res.FinderContact)
	assert.Equal(t, "a@x.com", res.LoserContact)
}

func TestErrorsDecodeIntoAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"validation_error","message":"email must be a valid email address","field":"email"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Submit(context.Background(), Report{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Kind)
	assert.Equal(t, "email", apiErr.Field)
}

func TestErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Stats(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestReadEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/reports":
			assert.Equal(t, "lost", r.URL.Query().Get("status"))
			w.Write([]byte(`[{"status":"lost","latitude":1.5,"longitude":2.5,"date_reported":"2024-01-01T00:00:00Z","model":"S8"}]`))
		case "/stats":
			w.Write([]byte(`{"lost":1,"found":2,"reunited":3}`))
		case "/reports/lookup":
			assert.Equal(t, "A 1", r.URL.Query().Get("serial_number"))
			w.Write([]byte(`{"match":false}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "")
	ctx := context.Background()

	points, err := c.List(ctx, "lost")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "S8", points[0].Model)
	require.NotNil(t, points[0].Latitude)
	assert.Equal(t, 1.5, *points[0].Latitude)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Lost: 1, Found: 2, Reunited: 3}, *st)

	res, err := c.Lookup(ctx, "A 1")
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Nil(t, res.Report)
}
