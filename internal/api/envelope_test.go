package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leca/menudesk/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResponse(t *testing.T) {
	result := map[string]string{"id": "abc-123"}
	resp := SuccessResponse(result)

	assert.True(t, resp.Success)
	assert.Equal(t, result, resp.Result)
	assert.Empty(t, resp.Errors)
	assert.Empty(t, resp.Messages)
}

func TestSuccessResponseNilResult(t *testing.T) {
	resp := SuccessResponse(nil)

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Result)
	assert.Empty(t, resp.Errors)
	assert.Empty(t, resp.Messages)
}

func TestErrorResponse(t *testing.T) {
	resp := ErrorResponse(9400, "bad request")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Result)
	assert.Len(t, resp.Errors, 1)
	assert.Equal(t, 9400, resp.Errors[0].Code)
	assert.Equal(t, "bad request", resp.Errors[0].Message)
	assert.Empty(t, resp.Messages)
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	body := SuccessResponse(map[string]string{"hello": "world"})

	WriteJSON(w, http.StatusOK, body)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var decoded Response
	err := json.NewDecoder(res.Body).Decode(&decoded)
	require.NoError(t, err)
	assert.True(t, decoded.Success)
}

func TestWriteJSONCustomStatus(t *testing.T) {
	w := httptest.NewRecorder()
	body := ErrorResponse(9404, "not found")

	WriteJSON(w, http.StatusNotFound, body)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var decoded Response
	err := json.NewDecoder(res.Body).Decode(&decoded)
	require.NoError(t, err)
	assert.False(t, decoded.Success)
	assert.Len(t, decoded.Errors, 1)
	assert.Equal(t, "not found", decoded.Errors[0].Message)
}

func TestErrorResponseJSONStructure(t *testing.T) {
	// Verify the JSON output keeps the envelope shape.
	resp := ErrorResponse(9401, "Authentication required")
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusUnauthorized, resp)

	var raw map[string]interface{}
	err := json.NewDecoder(w.Result().Body).Decode(&raw)
	require.NoError(t, err)

	assert.Nil(t, raw["result"])
	assert.Equal(t, false, raw["success"])

	errors, ok := raw["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errors, 1)

	errObj, ok := errors[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(9401), errObj["code"])
	assert.Equal(t, "Authentication required", errObj["message"])
}

func TestMissingFieldPointsAtField(t *testing.T) {
	w := httptest.NewRecorder()
	MissingField(w, "owner")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var decoded Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, 9400, decoded.Errors[0].Code)
	assert.Equal(t, "missing required field: owner", decoded.Errors[0].Message)
	require.NotNil(t, decoded.Errors[0].Source)
	assert.Equal(t, "/owner", decoded.Errors[0].Source.Pointer)
}

func TestWithNotices(t *testing.T) {
	resp := SuccessResponse("ok").WithNotices([]notify.Notice{
		{Message: "Image could not be optimized; uploading original", Severity: notify.SeverityWarning},
		{Message: "saved", Severity: notify.SeverityInfo},
	})

	require.Len(t, resp.Messages, 2)
	assert.Equal(t, APIMessage{Code: MessageWarning, Message: "Image could not be optimized; uploading original", Severity: "warning"}, resp.Messages[0])
	assert.Equal(t, MessageInfo, resp.Messages[1].Code)
}

func TestRespondAttachesCollectedNotices(t *testing.T) {
	ctx, c := notify.WithCollector(context.Background())
	c.Notify(ctx, "upload failed", notify.SeverityError)
	req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	BadGateway(w, req, "remote write failure")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var decoded Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, 9502, decoded.Errors[0].Code)
	require.Len(t, decoded.Messages, 1)
	assert.Equal(t, MessageError, decoded.Messages[0].Code)
}

func TestRespondWithoutCollector(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Respond(w, req, http.StatusOK, SuccessResponse(nil))

	var decoded Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	assert.True(t, decoded.Success)
	assert.Empty(t, decoded.Messages)
}
