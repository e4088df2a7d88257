// Package rest provides a Remote implementation speaking the content
// service's HTTP envelope protocol.
//
// Read-style endpoints (type list/read, content list/read, health) are
// public: no credential is attached even when one is configured. Mutating
// endpoints carry the bearer token. Failure responses surface the service's
// error string verbatim inside a TransportError.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

// Config configures the REST remote.
type Config struct {
	// BaseURL is the content service root, e.g. "http://localhost:3000".
	BaseURL string

	// Token is the bearer credential attached to mutating requests. Empty
	// means unauthenticated: mutating calls are still sent and the service
	// decides whether to reject them.
	Token string

	// HTTPClient overrides the underlying client. Optional.
	HTTPClient *http.Client
}

// Remote implements dynamiccontent.Remote over HTTP.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a REST remote from the given configuration.
func New(cfg Config) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  client,
	}, nil
}

// envelope is the service's uniform response shape. Exactly one of the
// payload fields is set depending on the endpoint.
type envelope struct {
	Success      bool                         `json:"success"`
	ContentType  *dynamiccontent.ContentType  `json:"contentType,omitempty"`
	ContentTypes []dynamiccontent.ContentType `json:"contentTypes,omitempty"`
	Content      *dynamiccontent.ContentItem  `json:"content,omitempty"`
	Contents     []dynamiccontent.ContentItem `json:"contents,omitempty"`
	Error        string                       `json:"error,omitempty"`
	Status       string                       `json:"status,omitempty"`
}

// public endpoints never carry the credential.
var publicPaths = map[string]struct{}{
	"/content/list":      {},
	"/content/read":      {},
	"/content-type/list": {},
	"/content-type/read": {},
	"/health":            {},
}

func isPublic(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	// Read-by-id paths carry the id as a suffix.
	return strings.HasPrefix(path, "/content-type/read/")
}

// Content type operations

func (r *Remote) ListContentTypes(ctx context.Context) ([]dynamiccontent.ContentType, error) {
	env, err := r.do(ctx, http.MethodGet, "/content-type/list", nil)
	if err != nil {
		return nil, err
	}
	return env.ContentTypes, nil
}

func (r *Remote) GetContentType(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentType, error) {
	env, err := r.do(ctx, http.MethodGet, "/content-type/read/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	if env.ContentType == nil {
		return nil, dynamiccontent.ErrTypeNotFound
	}
	return env.ContentType, nil
}

func (r *Remote) CreateContentType(ctx context.Context, req dynamiccontent.CreateContentTypeRequest) (*dynamiccontent.ContentType, error) {
	env, err := r.do(ctx, http.MethodPost, "/content-type/create", map[string]any{
		"name":   req.Name,
		"fields": req.Fields,
	})
	if err != nil {
		return nil, err
	}
	if env.ContentType == nil {
		return nil, &dynamiccontent.TransportError{Op: "content-type/create", Message: "response carried no content type"}
	}
	return env.ContentType, nil
}

func (r *Remote) UpdateContentType(ctx context.Context, req dynamiccontent.UpdateContentTypeRequest) (*dynamiccontent.ContentType, error) {
	body := map[string]any{"id": req.ID}
	if req.Name != "" {
		body["name"] = req.Name
	}
	if req.Fields != nil {
		body["fields"] = req.Fields
	}
	env, err := r.do(ctx, http.MethodPost, "/content-type/update", body)
	if err != nil {
		return nil, err
	}
	if env.ContentType == nil {
		return nil, &dynamiccontent.TransportError{Op: "content-type/update", Message: "response carried no content type"}
	}
	return env.ContentType, nil
}

func (r *Remote) DeleteContentType(ctx context.Context, id uuid.UUID) error {
	_, err := r.do(ctx, http.MethodDelete, "/content-type/delete/"+id.String(), nil)
	return err
}

// Content operations

func (r *Remote) ListContent(ctx context.Context, contentTypeID uuid.UUID) ([]dynamiccontent.ContentItem, error) {
	body := map[string]any{}
	if contentTypeID != uuid.Nil {
		body["content_type_id"] = contentTypeID
	}
	env, err := r.do(ctx, http.MethodPost, "/content/list", body)
	if err != nil {
		return nil, err
	}
	return env.Contents, nil
}

func (r *Remote) CreateContent(ctx context.Context, req dynamiccontent.CreateContentRequest) (*dynamiccontent.ContentItem, error) {
	env, err := r.do(ctx, http.MethodPost, "/content/create", map[string]any{
		"content_type_id": req.ContentTypeID,
		"data":            req.Data,
	})
	if err != nil {
		return nil, err
	}
	if env.Content == nil {
		return nil, &dynamiccontent.TransportError{Op: "content/create", Message: "response carried no content"}
	}
	return env.Content, nil
}

func (r *Remote) ReadContent(ctx context.Context, id uuid.UUID) (*dynamiccontent.ContentItem, error) {
	env, err := r.do(ctx, http.MethodPost, "/content/read", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if env.Content == nil {
		return nil, dynamiccontent.ErrItemNotFound
	}
	return env.Content, nil
}

func (r *Remote) UpdateContent(ctx context.Context, req dynamiccontent.UpdateContentRequest) (*dynamiccontent.ContentItem, error) {
	env, err := r.do(ctx, http.MethodPost, "/content/update", map[string]any{
		"id":   req.ID,
		"data": req.Data,
	})
	if err != nil {
		return nil, err
	}
	if env.Content == nil {
		return nil, &dynamiccontent.TransportError{Op: "content/update", Message: "response carried no content"}
	}
	return env.Content, nil
}

func (r *Remote) DeleteContent(ctx context.Context, id uuid.UUID) error {
	_, err := r.do(ctx, http.MethodPost, "/content/delete", map[string]any{"id": id})
	return err
}

func (r *Remote) Health(ctx context.Context) error {
	env, err := r.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if env.Status != "ok" {
		return &dynamiccontent.TransportError{Op: "health", Message: fmt.Sprintf("unexpected status %q", env.Status)}
	}
	return nil
}

// do performs one request and decodes the envelope. Non-2xx responses and
// envelopes with success=false both become TransportErrors carrying the
// service's error string.
func (r *Remote) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	op := strings.TrimPrefix(path, "/")

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &dynamiccontent.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, &dynamiccontent.TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" && !isPublic(path) {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &dynamiccontent.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
		if resp.StatusCode >= 400 {
			return nil, &dynamiccontent.TransportError{Op: op, Status: resp.StatusCode}
		}
		return nil, &dynamiccontent.TransportError{Op: op, Status: resp.StatusCode, Err: decodeErr}
	}

	// Health responds {"status":"ok"} with no success flag.
	if path == "/health" {
		if resp.StatusCode >= 400 {
			return nil, &dynamiccontent.TransportError{Op: op, Status: resp.StatusCode, Message: env.Error}
		}
		return &env, nil
	}

	if resp.StatusCode >= 400 || !env.Success {
		return nil, &dynamiccontent.TransportError{Op: op, Status: resp.StatusCode, Message: env.Error}
	}
	return &env, nil
}
