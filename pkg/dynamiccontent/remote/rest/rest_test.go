package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/rest"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

// newTestServer records every request and answers from the canned responses
// keyed by path.
func newTestServer(t *testing.T, responses map[string]any) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		recorded = append(recorded, rec)

		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "no such route"})
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &recorded
}

func newRemote(t *testing.T, baseURL string) *rest.Remote {
	t.Helper()
	r, err := rest.New(rest.Config{BaseURL: baseURL, Token: "secret"})
	require.NoError(t, err)
	return r
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := rest.New(rest.Config{})
	assert.Error(t, err)
}

func TestPublicEndpointsOmitCredential(t *testing.T) {
	ctx := context.Background()
	typeID := uuid.New()
	itemID := uuid.New()
	srv, recorded := newTestServer(t, map[string]any{
		"/content-type/list":                  map[string]any{"success": true, "contentTypes": []any{}},
		"/content-type/read/" + typeID.String(): map[string]any{"success": true, "contentType": map[string]any{"id": typeID}},
		"/content/list":                       map[string]any{"success": true, "contents": []any{}},
		"/content/read":                       map[string]any{"success": true, "content": map[string]any{"id": itemID}},
		"/health":                             map[string]any{"status": "ok"},
	})
	remote := newRemote(t, srv.URL)

	_, err := remote.ListContentTypes(ctx)
	require.NoError(t, err)
	_, err = remote.GetContentType(ctx, typeID)
	require.NoError(t, err)
	_, err = remote.ListContent(ctx, typeID)
	require.NoError(t, err)
	_, err = remote.ReadContent(ctx, itemID)
	require.NoError(t, err)
	require.NoError(t, remote.Health(ctx))

	for _, rec := range *recorded {
		assert.Empty(t, rec.auth, "public endpoint %s must not carry a credential", rec.path)
	}
}

func TestMutatingEndpointsCarryBearer(t *testing.T) {
	ctx := context.Background()
	typeID := uuid.New()
	itemID := uuid.New()
	srv, recorded := newTestServer(t, map[string]any{
		"/content-type/create":                    map[string]any{"success": true, "contentType": map[string]any{"id": typeID}},
		"/content-type/update":                    map[string]any{"success": true, "contentType": map[string]any{"id": typeID}},
		"/content-type/delete/" + typeID.String(): map[string]any{"success": true},
		"/content/create":                         map[string]any{"success": true, "content": map[string]any{"id": itemID}},
		"/content/update":                         map[string]any{"success": true, "content": map[string]any{"id": itemID}},
		"/content/delete":                         map[string]any{"success": true},
	})
	remote := newRemote(t, srv.URL)

	_, err := remote.CreateContentType(ctx, dynamiccontent.CreateContentTypeRequest{Name: "articles"})
	require.NoError(t, err)
	_, err = remote.UpdateContentType(ctx, dynamiccontent.UpdateContentTypeRequest{ID: typeID, Name: "posts"})
	require.NoError(t, err)
	require.NoError(t, remote.DeleteContentType(ctx, typeID))
	_, err = remote.CreateContent(ctx, dynamiccontent.CreateContentRequest{ContentTypeID: typeID})
	require.NoError(t, err)
	_, err = remote.UpdateContent(ctx, dynamiccontent.UpdateContentRequest{ID: itemID})
	require.NoError(t, err)
	require.NoError(t, remote.DeleteContent(ctx, itemID))

	require.Len(t, *recorded, 6)
	for _, rec := range *recorded {
		assert.Equal(t, "Bearer secret", rec.auth, "mutating endpoint %s must carry the credential", rec.path)
	}
}

func TestListContentSendsTypeFilter(t *testing.T) {
	ctx := context.Background()
	typeID := uuid.New()
	srv, recorded := newTestServer(t, map[string]any{
		"/content/list": map[string]any{"success": true, "contents": []any{}},
	})
	remote := newRemote(t, srv.URL)

	_, err := remote.ListContent(ctx, typeID)
	require.NoError(t, err)
	_, err = remote.ListContent(ctx, uuid.Nil)
	require.NoError(t, err)

	require.Len(t, *recorded, 2)
	assert.Equal(t, typeID.String(), (*recorded)[0].body["content_type_id"])
	assert.NotContains(t, (*recorded)[1].body, "content_type_id", "nil filter lists every type")
}

func TestServiceErrorSurfacesVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "token expired at 10:31",
		})
	}))
	t.Cleanup(srv.Close)
	remote := newRemote(t, srv.URL)

	_, err := remote.CreateContent(context.Background(), dynamiccontent.CreateContentRequest{ContentTypeID: uuid.New()})
	require.Error(t, err)
	var transportErr *dynamiccontent.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusUnauthorized, transportErr.Status)
	assert.Equal(t, "token expired at 10:31", transportErr.Message)
	assert.Contains(t, err.Error(), "token expired at 10:31")
}

func TestEnvelopeFailureWithOKStatus(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{
		"/content/delete": map[string]any{"success": false, "error": "item is referenced"},
	})
	remote := newRemote(t, srv.URL)

	err := remote.DeleteContent(context.Background(), uuid.New())
	var transportErr *dynamiccontent.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "item is referenced", transportErr.Message)
}

func TestHealthRejectsUnexpectedStatus(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{
		"/health": map[string]any{"status": "degraded"},
	})
	remote := newRemote(t, srv.URL)
	assert.Error(t, remote.Health(context.Background()))
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	remote := newRemote(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := remote.ListContentTypes(ctx)
	assert.Error(t, err)
}
