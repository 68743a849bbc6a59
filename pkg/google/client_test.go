package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func newTestClient(t *testing.T, srv *httptest.Server) Client {
	t.Helper()
	client, err := NewClient(context.Background(),
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestUpdateValues_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-123/values/"), r.URL.Path)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))

		var body struct {
			Range  string  `json:"range"`
			Values [][]any `json:"values"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Sheet1!A4:C5", body.Range)
		require.Len(t, body.Values, 2)
		assert.Equal(t, "10", body.Values[0][0])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-123",
			"updatedRange":  "Sheet1!A4:C5",
			"updatedRows":   2,
			"updatedCells":  6,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	res, err := client.UpdateValues(context.Background(), "sheet-123", "Sheet1!A4:C5", [][]any{
		{"10", "CCC", 3},
		{"20", "Mitchell", 4},
	})

	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A4:C5", res.UpdatedRange)
	assert.Equal(t, int64(2), res.UpdatedRows)
	assert.Equal(t, int64(6), res.UpdatedCells)
}

func TestUpdateValues_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.UpdateValues(context.Background(), "sheet-123", "Nope!A1", [][]any{{"x"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "google: update values")

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
}

func TestUpdateValues_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.UpdateValues(ctx, "sheet-123", "Sheet1!A1", [][]any{{"x"}})
	assert.Error(t, err)
}
