package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEntryLifecycle(t *testing.T) {
	srv, _ := testServer(t)
	url := srv.URL + "/v1/cache/restaurant-profile"

	resp := do(t, authReq(t, http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	body := map[string]any{"value": map[string]any{"name": "Chez Leca", "tables": 12}, "ttl_hours": 1}
	resp = do(t, authReq(t, http.MethodPut, url, jsonBody(t, body)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	env := decodeResponse(t, do(t, authReq(t, http.MethodGet, url, nil)))
	require.True(t, env.Success)
	var entry struct {
		Key   string         `json:"key"`
		Value map[string]any `json:"value"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &entry))
	assert.Equal(t, "restaurant-profile", entry.Key)
	assert.Equal(t, "Chez Leca", entry.Value["name"])
	assert.Equal(t, float64(12), entry.Value["tables"])

	resp = do(t, authReq(t, http.MethodDelete, url, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, authReq(t, http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCacheEntryZeroTTLIsExpired(t *testing.T) {
	srv, _ := testServer(t)
	url := srv.URL + "/v1/cache/short-lived"

	resp := do(t, authReq(t, http.MethodPut, url, jsonBody(t, map[string]any{"value": "x", "ttl_hours": 0})))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, authReq(t, http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPutCacheEntryValidation(t *testing.T) {
	srv, _ := testServer(t)
	url := srv.URL + "/v1/cache/k"

	for _, tc := range []struct {
		body    map[string]any
		pointer string
	}{
		{map[string]any{"ttl_hours": 1}, "/value"},
		{map[string]any{"value": 1}, "/ttl_hours"},
	} {
		resp := do(t, authReq(t, http.MethodPut, url, jsonBody(t, tc.body)))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.body)
		env := decodeResponse(t, resp)
		require.Len(t, env.Errors, 1)
		require.NotNil(t, env.Errors[0].Source)
		assert.Equal(t, tc.pointer, env.Errors[0].Source.Pointer)
	}
}
