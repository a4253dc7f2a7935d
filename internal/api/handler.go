package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful/v3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/kal997/file-interest-server/internal/interest"
	"github.com/kal997/file-interest-server/internal/models"
	"github.com/kal997/file-interest-server/internal/storage"
)

// Room for the JSON envelope around the base64 payload
const envelopeSlack = 4 << 10

// FileService is the set of operations exposed over HTTP
type FileService interface {
	Upload(ctx context.Context, name string, content []byte) ([]models.NotificationEvent, error)
	ListFiles(ctx context.Context) ([]string, error)
	Download(ctx context.Context, name string) (*models.File, error)
	RegisterInterest(ctx context.Context, name string, durationSeconds int64) (models.Subscription, error)
	CancelInterest(ctx context.Context, name string) (int, error)
	PendingInterests(ctx context.Context, name string) (int, error)
	HealthCheck(ctx context.Context) error
}

// Handler handles HTTP requests for file and interest operations
type Handler struct {
	service        FileService
	maxUploadBytes int64
	log            logrus.FieldLogger
}

// NewHandler creates a new Handler accepting uploads of at most maxUploadBytes
func NewHandler(service FileService, maxUploadBytes int64, log logrus.FieldLogger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Upload handles POST /files
func (h *Handler) Upload(req *restful.Request, resp *restful.Response) {
	// base64 grows the payload by 4/3
	limit := base64Len(h.maxUploadBytes) + envelopeSlack
	req.Request.Body = http.MaxBytesReader(resp.ResponseWriter, req.Request.Body, limit)

	var body UploadRequest
	if err := req.ReadEntity(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(resp, http.StatusRequestEntityTooLarge, CodeTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		writeError(resp, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("Error reading request body: %v", err))
		return
	}
	if int64(len(body.Data)) > h.maxUploadBytes {
		writeError(resp, http.StatusRequestEntityTooLarge, CodeTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
		return
	}

	events, err := h.service.Upload(req.Request.Context(), body.Filename, body.Data)
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndJson(http.StatusCreated, UploadResponse{
		Filename: body.Filename,
		Notified: len(events),
	}, restful.MIME_JSON)
}

// ListFiles handles GET /files
func (h *Handler) ListFiles(req *restful.Request, resp *restful.Response) {
	names, err := h.service.ListFiles(req.Request.Context())
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	_ = resp.WriteAsJson(ListResponse{Files: names})
}

// Download handles GET /files/{name}
func (h *Handler) Download(req *restful.Request, resp *restful.Response) {
	file, err := h.service.Download(req.Request.Context(), req.PathParameter("name"))
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}

	_ = resp.WriteAsJson(DownloadResponse{
		FileInfo: Describe(file),
		Data:     file.Content,
	})
}

// DownloadRaw handles GET /files/{name}/raw, answering with the bytes themselves
func (h *Handler) DownloadRaw(req *restful.Request, resp *restful.Response) {
	file, err := h.service.Download(req.Request.Context(), req.PathParameter("name"))
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}

	info := Describe(file)
	etag := strconv.Quote(info.Digest)
	if match := req.HeaderParameter("If-None-Match"); match == etag {
		resp.WriteHeader(http.StatusNotModified)
		return
	}

	resp.Header().Set("Content-Type", info.ContentType)
	resp.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	resp.Header().Set("ETag", etag)
	resp.WriteHeader(http.StatusOK)
	if _, err := resp.Write(file.Content); err != nil {
		h.log.WithError(err).WithField("filename", file.Name).Warn("failed to write file content")
	}
}

// RegisterInterest handles POST /interests
func (h *Handler) RegisterInterest(req *restful.Request, resp *restful.Response) {
	var body InterestRequest
	if err := req.ReadEntity(&body); err != nil {
		writeError(resp, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("Error reading request body: %v", err))
		return
	}

	sub, err := h.service.RegisterInterest(req.Request.Context(), body.Filename, body.Duration)
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}
	_ = resp.WriteHeaderAndJson(http.StatusCreated, sub, restful.MIME_JSON)
}

// PendingInterests handles GET /interests/{name}
func (h *Handler) PendingInterests(req *restful.Request, resp *restful.Response) {
	name := req.PathParameter("name")
	n, err := h.service.PendingInterests(req.Request.Context(), name)
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}
	_ = resp.WriteAsJson(PendingResponse{Filename: name, Pending: n})
}

// CancelInterest handles DELETE /interests/{name}
func (h *Handler) CancelInterest(req *restful.Request, resp *restful.Response) {
	name := req.PathParameter("name")
	n, err := h.service.CancelInterest(req.Request.Context(), name)
	if err != nil {
		h.writeServiceError(resp, err)
		return
	}
	_ = resp.WriteAsJson(CancelResponse{Filename: name, Cancelled: n})
}

// Health handles GET /health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	if err := h.service.HealthCheck(req.Request.Context()); err != nil {
		h.log.WithError(err).Warn("health check failed")
		writeError(resp, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
		return
	}
	_ = resp.WriteAsJson(HealthResponse{Status: "ok"})
}

// Describe computes the size, digest and content type of a file
func Describe(file *models.File) models.FileInfo {
	return models.FileInfo{
		Name:        file.Name,
		Size:        int64(len(file.Content)),
		Digest:      digest.FromBytes(file.Content).String(),
		ContentType: mimetype.Detect(file.Content).String(),
	}
}

// writeServiceError maps service errors onto HTTP statuses
func (h *Handler) writeServiceError(resp *restful.Response, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(resp, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidFilename):
		writeError(resp, http.StatusBadRequest, CodeInvalidFilename, err.Error())
	case errors.Is(err, interest.ErrInvalidDuration):
		writeError(resp, http.StatusBadRequest, CodeInvalidDuration, err.Error())
	case errors.Is(err, storage.ErrStorageFault):
		h.log.WithError(err).Error("storage fault")
		writeError(resp, http.StatusInternalServerError, CodeStorageFault, err.Error())
	default:
		h.log.WithError(err).Error("request failed")
		writeError(resp, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

// writeError writes a structured error response
func writeError(resp *restful.Response, statusCode int, code, message string) {
	_ = resp.WriteHeaderAndJson(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
	}, restful.MIME_JSON)
}

func base64Len(n int64) int64 {
	return (n + 2) / 3 * 4
}
