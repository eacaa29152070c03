package file

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropshare/service/internal/middleware"
	"github.com/dropshare/service/internal/response"
)

// multipartMemory is how much of a multipart body is held in memory before spilling to disk.
const multipartMemory = 8 << 20

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	registry *Registry
	resolver *Resolver
	maxBytes int64
	log      *slog.Logger
}

// NewHandler creates a new file Handler.
func NewHandler(registry *Registry, resolver *Resolver, maxBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: registry, resolver: resolver, maxBytes: maxBytes, log: logger}
}

type fileItem struct {
	PublicID      string    `json:"public_id"      example:"5f0c1d2e-8a4b-4c3d-9e8f-0a1b2c3d4e5f"`
	DisplayName   string    `json:"display_name"   example:"report.pdf"`
	SizeBytes     int64     `json:"size_bytes"     example:"2500000"`
	ContentType   string    `json:"content_type"   example:"application/pdf"`
	CreatedAt     time.Time `json:"created_at"     example:"2026-02-27T14:48:34Z"`
	DownloadCount int64     `json:"download_count" example:"3"`
	Link          string    `json:"link"           example:"http://localhost:8080/d/5f0c1d2e-8a4b-4c3d-9e8f-0a1b2c3d4e5f"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the file and returns its public download link.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File to share"
//	@Success		201		{object}	response.Envelope{data=UploadResult}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/files [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserID(r.Context())
	if ownerID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if h.maxBytes > 0 {
		// Leave headroom for multipart framing; the registry enforces the file limit.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(w, "file too large")
			return
		}
		response.BadRequest(w, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, hdr, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "form field \"file\" is required")
		return
	}
	defer f.Close()

	res, err := h.registry.Upload(r.Context(), UploadInput{
		OwnerID:     ownerID,
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Created(w, res)
}

// List godoc
//
//	@Summary		List my files
//	@Description	Returns the caller's files, newest first.
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]fileItem}
//	@Failure		401	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.registry.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]fileItem, 0, len(records))
	for _, rec := range records {
		items = append(items, fileItem{
			PublicID:      rec.PublicID,
			DisplayName:   rec.DisplayName,
			SizeBytes:     rec.SizeBytes,
			ContentType:   rec.ContentType,
			CreatedAt:     rec.CreatedAt,
			DownloadCount: rec.DownloadCount,
			Link:          h.registry.Link(rec.PublicID),
		})
	}
	response.OK(w, items)
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Removes the file's content and record. Files owned by someone else are reported as not found.
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			publicID	path		string	true	"Public file id"
//	@Success		200			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		502			{object}	response.Envelope
//	@Router			/files/{publicID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.registry.DeleteByPublicID(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "publicID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, map[string]bool{"success": true})
}

// Describe godoc
//
//	@Summary		Shared file info
//	@Description	Name, size and type of a shared file. Does not count as a download.
//	@Tags			links
//	@Produce		json
//	@Param			publicID	path		string	true	"Public file id"
//	@Success		200			{object}	response.Envelope{data=Info}
//	@Failure		404			{object}	response.Envelope
//	@Router			/links/{publicID} [get]
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	info, err := h.resolver.Describe(r.Context(), chi.URLParam(r, "publicID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, info)
}

// Download streams the shared file. Mounted outside /api/v1 as the public link itself.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.resolver.Fetch(r.Context(), chi.URLParam(r, "publicID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(dl.SizeBytes, 10))
	if cd := mime.FormatMediaType("attachment", map[string]string{"filename": dl.DisplayName}); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		h.log.Warn("download interrupted", "error", err)
	}
}

// writeError maps file errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		response.Unauthorized(w, "unauthorized")
	case IsHidden(err):
		response.NotFound(w, "file not found")
	case errors.Is(err, ErrTooLarge):
		response.PayloadTooLarge(w, err.Error())
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrStorageWriteFailed),
		errors.Is(err, ErrStorageReadFailed),
		errors.Is(err, ErrStorageDeleteFailed),
		errors.Is(err, ErrMetadataWriteFailed),
		errors.Is(err, ErrMetadataReadFailed),
		errors.Is(err, ErrMetadataDeleteFailed):
		h.log.Error("file operation failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.BadGateway(w, failedStep(err))
	default:
		h.log.Error("unexpected file error", "method", r.Method, "path", r.URL.Path, "error", err)
		response.InternalError(w)
	}
}

// failedStep names the collaborator and step that failed, without internal detail.
func failedStep(err error) string {
	for _, kind := range []error{
		ErrStorageWriteFailed, ErrStorageReadFailed, ErrStorageDeleteFailed,
		ErrMetadataWriteFailed, ErrMetadataReadFailed, ErrMetadataDeleteFailed,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}
