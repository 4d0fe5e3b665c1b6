package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/leca/menudesk/internal/api"
	"github.com/leca/menudesk/internal/app"
	"github.com/leca/menudesk/internal/config"
	"github.com/leca/menudesk/internal/router"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// testServer creates a test HTTP server backed by an in-memory local store,
// in-memory SQLite for sessions and a temporary filesystem object store.
func testServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()

	cfg := config.FromEnv()
	cfg.AuthToken = testToken
	cfg.LocalStore = config.LocalStoreMemory
	cfg.SessionDBDriver = config.SessionDBSQLite
	cfg.SessionDBDSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	cfg.ObjectStore = config.ObjectStoreFileSystem
	cfg.StoragePath = filepath.Join(t.TempDir(), "assets")
	cfg.SessionTTLHours = 2
	require.NoError(t, cfg.Validate())

	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(router.New(a).Router)
	t.Cleanup(srv.Close)
	return srv, a
}

// authReq creates an *http.Request with the test bearer token.
func authReq(t *testing.T, method, url string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// multipartFileBody builds a multipart request body with a file field of
// the given content type.
func multipartFileBody(t *testing.T, fileName, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	fw, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// envelope is the response envelope with a raw result for assertions.
type envelope struct {
	Success  bool             `json:"success"`
	Errors   []api.APIError   `json:"errors"`
	Messages []api.APIMessage `json:"messages"`
	Result   json.RawMessage  `json:"result"`
}

// decodeResponse decodes the JSON envelope and closes the body.
func decodeResponse(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env), string(data))
	return env
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}
