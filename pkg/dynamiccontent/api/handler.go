// Package api exposes a Remote over HTTP using the envelope protocol the
// engine's REST client speaks.
//
// Read endpoints are public. Mutating endpoints and uploads require a bearer
// token when the handler is built with a JWT authority; without one the
// server runs open, which is intended for local development only.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/media"
)

// Handler serves the content service HTTP API.
type Handler struct {
	remote dynamiccontent.Remote
	media  dynamiccontent.MediaStore
	auth   *jwtauth.JWTAuth
	logger *slog.Logger
}

// NewHandler creates an API handler. media may be nil (uploads disabled) and
// auth may be nil (no authentication).
func NewHandler(remote dynamiccontent.Remote, mediaStore dynamiccontent.MediaStore, auth *jwtauth.JWTAuth, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{remote: remote, media: mediaStore, auth: auth, logger: logger}
}

// Routes returns the full route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Public read surface.
	r.Get("/health", h.Health)
	r.Get("/content-type/list", h.ListContentTypes)
	r.Get("/content-type/read/{id}", h.ReadContentType)
	r.Post("/content/list", h.ListContent)
	r.Post("/content/read", h.ReadContent)

	// Mutating surface.
	r.Group(func(r chi.Router) {
		if h.auth != nil {
			r.Use(jwtauth.Verifier(h.auth))
			r.Use(jwtauth.Authenticator)
		}
		r.Post("/content-type/create", h.CreateContentType)
		r.Post("/content-type/update", h.UpdateContentType)
		r.Delete("/content-type/delete/{id}", h.DeleteContentType)
		r.Post("/content/create", h.CreateContent)
		r.Post("/content/update", h.UpdateContent)
		r.Post("/content/delete", h.DeleteContent)
		r.Post("/upload", h.Upload)
	})

	return r
}

// envelope is the uniform response shape.
type envelope struct {
	Success      bool                         `json:"success"`
	ContentType  *dynamiccontent.ContentType  `json:"contentType,omitempty"`
	ContentTypes []dynamiccontent.ContentType `json:"contentTypes,omitempty"`
	Content      *dynamiccontent.ContentItem  `json:"content,omitempty"`
	Contents     []dynamiccontent.ContentItem `json:"contents,omitempty"`
	URLs         []UploadedURL                `json:"urls,omitempty"`
	Error        string                       `json:"error,omitempty"`
}

// UploadedURL reports where one uploaded file landed.
type UploadedURL struct {
	Field string `json:"field"`
	URL   string `json:"url"`
}

func (h *Handler) ok(w http.ResponseWriter, r *http.Request, env envelope) {
	env.Success = true
	render.Status(r, http.StatusOK)
	render.JSON(w, r, env)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case isNotFound(err):
		status = http.StatusNotFound
	case isValidation(err):
		status = http.StatusBadRequest
	}
	h.logger.Debug("request failed", "path", r.URL.Path, "status", status, "err", err)
	render.Status(r, status)
	render.JSON(w, r, envelope{Error: err.Error()})
}

func isNotFound(err error) bool {
	return errorIsAny(err,
		dynamiccontent.ErrTypeNotFound,
		dynamiccontent.ErrItemNotFound)
}

func isValidation(err error) bool {
	if errorIsAny(err,
		dynamiccontent.ErrTypeNameRequired,
		dynamiccontent.ErrFieldNameRequired,
		dynamiccontent.ErrDuplicateFieldName,
		dynamiccontent.ErrUnknownFieldKind,
		dynamiccontent.ErrEnumOptionsRequired,
		dynamiccontent.ErrRelationTargetRequired) {
		return true
	}
	var fieldErr *dynamiccontent.FieldError
	return errors.As(err, &fieldErr)
}

func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Health responds {"status":"ok"}.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.remote.Health(r.Context()); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "unavailable"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// Content type handlers

func (h *Handler) ListContentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.remote.ListContentTypes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if types == nil {
		types = []dynamiccontent.ContentType{}
	}
	h.ok(w, r, envelope{ContentTypes: types})
}

func (h *Handler) ReadContentType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, dynamiccontent.ErrTypeNotFound)
		return
	}
	t, err := h.remote.GetContentType(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{ContentType: t})
}

func (h *Handler) CreateContentType(w http.ResponseWriter, r *http.Request) {
	var req dynamiccontent.CreateContentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.CreatedBy = subjectFromContext(r)
	created, err := h.remote.CreateContentType(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{ContentType: created})
}

func (h *Handler) UpdateContentType(w http.ResponseWriter, r *http.Request) {
	var req dynamiccontent.UpdateContentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.UpdatedBy = subjectFromContext(r)
	updated, err := h.remote.UpdateContentType(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{ContentType: updated})
}

func (h *Handler) DeleteContentType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, dynamiccontent.ErrTypeNotFound)
		return
	}
	if err := h.remote.DeleteContentType(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{})
}

// Content handlers

type listContentRequest struct {
	ContentTypeID uuid.UUID `json:"content_type_id"`
}

func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	var req listContentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	items, err := h.remote.ListContent(r.Context(), req.ContentTypeID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []dynamiccontent.ContentItem{}
	}
	h.ok(w, r, envelope{Contents: items})
}

type itemIDRequest struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) ReadContent(w http.ResponseWriter, r *http.Request) {
	var req itemIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.remote.ReadContent(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{Content: item})
}

func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req dynamiccontent.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.CreatedBy = subjectFromContext(r)
	created, err := h.remote.CreateContent(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{Content: created})
}

func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req dynamiccontent.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.UpdatedBy = subjectFromContext(r)
	updated, err := h.remote.UpdateContent(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{Content: updated})
}

func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	var req itemIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.remote.DeleteContent(r.Context(), req.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, envelope{})
}

// Upload accepts a multipart form, normalizes each file part into a square
// thumbnail and stores it. The part's field name identifies the media field
// it belongs to. When the form carries type_name and item_name values the
// stored key is <TypeName>_<ItemName>.<ext>; otherwise it derives from the
// uploaded file name.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		render.Status(r, http.StatusNotImplemented)
		render.JSON(w, r, envelope{Error: "uploads are not configured"})
		return
	}

	if err := r.ParseMultipartForm(media.MaxBytes * 2); err != nil {
		h.fail(w, r, err)
		return
	}
	typeName := r.FormValue("type_name")
	itemName := r.FormValue("item_name")

	var urls []UploadedURL
	for field, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				h.fail(w, r, err)
				return
			}
			processed, err := media.Process(f)
			f.Close()
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, envelope{Error: err.Error()})
				return
			}

			var key string
			if typeName != "" && itemName != "" {
				key = media.Key(typeName, itemName, processed.Ext)
			} else {
				base := strings.TrimSuffix(header.Filename, "."+media.ExtFromFilename(header.Filename))
				key = media.SafeName(base) + "." + processed.Ext
			}
			url, err := h.media.Save(r.Context(), key, bytes.NewReader(processed.Data), processed.ContentType)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			urls = append(urls, UploadedURL{Field: field, URL: url})
		}
	}
	h.ok(w, r, envelope{URLs: urls})
}

// subjectFromContext extracts the authenticated subject claim, if any.
func subjectFromContext(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}
