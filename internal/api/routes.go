package api

import (
	"github.com/emicklei/go-restful/v3"

	"github.com/kal997/file-interest-server/internal/models"
)

// RegisterRoutes registers the file and interest routes
func RegisterRoutes(ws *restful.WebService, handler *Handler) {
	// File routes
	ws.Route(ws.POST("/files").To(handler.Upload).
		Doc("upload a whole file, notifying every subscriber waiting for it").
		Reads(UploadRequest{}).
		Returns(201, "Created", UploadResponse{}).
		Returns(400, "Bad Request", ErrorResponse{}).
		Returns(413, "Request Entity Too Large", ErrorResponse{}).
		Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.Route(ws.GET("/files").To(handler.ListFiles).
		Doc("list stored file names").
		Returns(200, "OK", ListResponse{}).
		Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.Route(ws.GET("/files/{name}").To(handler.Download).
		Doc("download a file as JSON").
		Param(ws.PathParameter("name", "file name").DataType("string")).
		Returns(200, "OK", DownloadResponse{}).
		Returns(400, "Bad Request", ErrorResponse{}).
		Returns(404, "Not Found", ErrorResponse{}).
		Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.Route(ws.GET("/files/{name}/raw").To(handler.DownloadRaw).
		Doc("download the file content").
		Notes("The response Content-Type is detected from the content and the ETag is its sha256 digest.").
		Param(ws.PathParameter("name", "file name").DataType("string")).
		Produces(restful.MIME_OCTET, "*/*").
		Returns(200, "OK", nil).
		Returns(304, "Not Modified", nil).
		Returns(404, "Not Found", ErrorResponse{}))

	// Interest routes
	ws.Route(ws.POST("/interests").To(handler.RegisterInterest).
		Doc("register interest in a file for a number of seconds").
		Reads(InterestRequest{}).
		Returns(201, "Created", models.Subscription{}).
		Returns(400, "Bad Request", ErrorResponse{}))

	ws.Route(ws.GET("/interests/{name}").To(handler.PendingInterests).
		Doc("count active subscriptions for a file").
		Param(ws.PathParameter("name", "file name").DataType("string")).
		Returns(200, "OK", PendingResponse{}).
		Returns(400, "Bad Request", ErrorResponse{}))

	ws.Route(ws.DELETE("/interests/{name}").To(handler.CancelInterest).
		Doc("cancel every subscription for a file").
		Param(ws.PathParameter("name", "file name").DataType("string")).
		Returns(200, "OK", CancelResponse{}).
		Returns(400, "Bad Request", ErrorResponse{}))

	ws.Route(ws.GET("/health").To(handler.Health).
		Doc("check the file store").
		Returns(200, "OK", HealthResponse{}).
		Returns(503, "Service Unavailable", ErrorResponse{}))
}
