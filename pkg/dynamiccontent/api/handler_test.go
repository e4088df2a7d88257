package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/api"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/memory"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/storage/fs"
)

type testEnv struct {
	remote *memory.Remote
	server *httptest.Server
	token  string
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	remote := memory.New()
	store, err := fs.New(fs.Config{BaseDir: t.TempDir(), URLPrefix: "/media"})
	require.NoError(t, err)

	auth := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, token, err := auth.Encode(map[string]interface{}{"sub": "tester"})
	require.NoError(t, err)

	handler := api.NewHandler(remote, store, auth, nil)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return &testEnv{remote: remote, server: server, token: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, authed bool) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func seedType(t *testing.T, remote dynamiccontent.Remote, name string) *dynamiccontent.ContentType {
	t.Helper()
	created, err := remote.CreateContentType(context.Background(), dynamiccontent.CreateContentTypeRequest{
		Name:   name,
		Fields: []dynamiccontent.FieldSpec{{Name: "name", Kind: dynamiccontent.FieldText}},
	})
	require.NoError(t, err)
	return created
}

func TestHealthEndpoint(t *testing.T) {
	env := setupServer(t)
	resp, body := env.request(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	env := setupServer(t)
	created := seedType(t, env.remote, "articles")

	resp, body := env.request(t, http.MethodGet, "/content-type/list", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = env.request(t, http.MethodGet, "/content-type/read/"+created.ID.String(), nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ct, ok := body["contentType"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "articles", ct["name"])

	resp, _ = env.request(t, http.MethodPost, "/content/list", map[string]any{}, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMutationsRequireToken(t *testing.T) {
	env := setupServer(t)

	resp, _ := env.request(t, http.MethodPost, "/content-type/create",
		map[string]any{"name": "articles"}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.request(t, http.MethodPost, "/content-type/create",
		map[string]any{
			"name":   "articles",
			"fields": []map[string]any{{"name": "title", "type": "text"}},
		}, true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	// The authenticated subject is recorded as the creator.
	ct := body["contentType"].(map[string]any)
	assert.Equal(t, "tester", ct["created_by"])
}

func TestContentLifecycleOverHTTP(t *testing.T) {
	env := setupServer(t)
	articles := seedType(t, env.remote, "articles")

	resp, body := env.request(t, http.MethodPost, "/content/create", map[string]any{
		"content_type_id": articles.ID,
		"data":            map[string]any{"name": "first"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content := body["content"].(map[string]any)
	itemID := content["id"].(string)

	resp, body = env.request(t, http.MethodPost, "/content/read",
		map[string]any{"id": itemID}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content = body["content"].(map[string]any)
	assert.Equal(t, "first", content["data"].(map[string]any)["name"])

	resp, body = env.request(t, http.MethodPost, "/content/update", map[string]any{
		"id":   itemID,
		"data": map[string]any{"name": "second"},
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content = body["content"].(map[string]any)
	assert.Equal(t, "second", content["data"].(map[string]any)["name"])

	resp, _ = env.request(t, http.MethodPost, "/content/delete",
		map[string]any{"id": itemID}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.request(t, http.MethodPost, "/content/read",
		map[string]any{"id": itemID}, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestValidationErrorsAreBadRequests(t *testing.T) {
	env := setupServer(t)

	resp, body := env.request(t, http.MethodPost, "/content-type/create",
		map[string]any{
			"name":   "articles",
			"fields": []map[string]any{{"name": "status", "type": "enum"}},
		}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "option")
}

func TestUploadProcessesImage(t *testing.T) {
	env := setupServer(t)

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 10, B: 200, A: 255})
		}
	}
	var imgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&imgBuf, img, nil))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("photo", "Products_widget.jpg")
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/upload?content_type_id="+uuid.New().String(), &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	urls := body["urls"].([]any)
	require.Len(t, urls, 1)
	entry := urls[0].(map[string]any)
	assert.Equal(t, "photo", entry["field"])
	assert.Equal(t, "/media/Products_widget.jpg", entry["url"])
}

func TestUploadKeysFromTypeAndItemName(t *testing.T) {
	env := setupServer(t)

	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	var imgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&imgBuf, img, nil))

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	require.NoError(t, writer.WriteField("type_name", "Products"))
	require.NoError(t, writer.WriteField("item_name", "My Widget!"))
	part, err := writer.CreateFormFile("photo", "whatever.jpg")
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/upload", &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	urls := body["urls"].([]any)
	require.Len(t, urls, 1)
	entry := urls[0].(map[string]any)
	assert.Equal(t, "/media/Products_MyWidget.jpg", entry["url"],
		"key comes from the sanitized type and item names, not the file name")
}

func TestUploadRejectsGarbage(t *testing.T) {
	env := setupServer(t)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("photo", "junk.jpg")
	require.NoError(t, err)
	fmt.Fprint(part, "not an image")
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/upload", &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
