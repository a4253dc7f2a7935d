package api

import "github.com/kal997/file-interest-server/internal/models"

// Error codes carried in ErrorResponse
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidFilename = "INVALID_FILENAME"
	CodeInvalidDuration = "INVALID_DURATION"
	CodeNotFound        = "NOT_FOUND"
	CodeTooLarge        = "TOO_LARGE"
	CodeStorageFault    = "STORAGE_FAULT"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UploadRequest carries a whole file. Data is base64 on the wire.
type UploadRequest struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// UploadResponse reports how many subscribers were notified
type UploadResponse struct {
	Filename string `json:"filename"`
	Notified int    `json:"notified"`
}

// ListResponse lists stored file names in lexical order
type ListResponse struct {
	Files []string `json:"files"`
}

// DownloadResponse carries a whole file and its description
type DownloadResponse struct {
	models.FileInfo
	Data []byte `json:"data"`
}

// InterestRequest registers interest in filename for Duration seconds
type InterestRequest struct {
	Filename string `json:"filename"`
	Duration int64  `json:"duration"`
}

// PendingResponse reports the active subscriptions of a filename
type PendingResponse struct {
	Filename string `json:"filename"`
	Pending  int    `json:"pending"`
}

// CancelResponse reports how many subscriptions were removed
type CancelResponse struct {
	Filename  string `json:"filename"`
	Cancelled int    `json:"cancelled"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
