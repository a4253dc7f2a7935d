package api

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/sirupsen/logrus"
)

const (
	// APIPath is the root of the REST web service
	APIPath = "/api/v1"

	// NotificationsPath serves the WebSocket notification stream
	NotificationsPath = "/ws/notifications"
)

// NewContainer assembles the REST web service and, when notifications is not
// nil, mounts it at NotificationsPath
func NewContainer(handler *Handler, notifications http.Handler, log logrus.FieldLogger) *restful.Container {
	container := restful.NewContainer()

	ws := new(restful.WebService)
	ws.Path(APIPath).
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	RegisterRoutes(ws, handler)
	container.Add(ws)

	if notifications != nil {
		container.Handle(NotificationsPath, notifications)
	}

	container.Filter(requestLogger(log))

	for _, route := range ws.Routes() {
		log.WithFields(logrus.Fields{
			"method": route.Method,
			"path":   route.Path,
		}).Debug(route.Doc)
	}
	return container
}

// requestLogger logs one line per request with its outcome
func requestLogger(log logrus.FieldLogger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		url := req.Request.URL.Path
		if req.Request.URL.RawQuery != "" {
			url += "?" + req.Request.URL.RawQuery
		}

		chain.ProcessFilter(req, resp)

		entry := log.WithFields(logrus.Fields{
			"method": req.Request.Method,
			"url":    url,
			"status": resp.StatusCode(),
			"bytes":  resp.ContentLength(),
			"remote": req.Request.RemoteAddr,
		})
		if resp.StatusCode() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	}
}
