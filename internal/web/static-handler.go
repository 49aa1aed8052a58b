package web

import (
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const (
	kStaticResource = "/static/"
)

type StaticHandler struct {
	files fs.FS
}

// AddStaticHandler serves the embedded static resources, and robots.txt.
func AddStaticHandler(mux *http.ServeMux) *StaticHandler {
	handler := &StaticHandler{files: staticFiles()}
	mux.Handle(kStaticResource, handler)
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		handler.sendResource("robots.txt", w)
	})
	return handler
}

func (h *StaticHandler) ServeHTTP(out http.ResponseWriter, req *http.Request) {
	resource := strings.TrimPrefix(req.URL.Path, kStaticResource)
	h.sendResource(resource, out)
}

func (h *StaticHandler) sendResource(resource string, out http.ResponseWriter) {
	resource = path.Clean("/" + resource)[1:]
	content, err := fs.ReadFile(h.files, resource)
	if err != nil || resource == "" {
		out.Header().Set("Cache-Control", "max-age=10,must-revalidate")
		http.Error(out, "not found", http.StatusNotFound)
		return
	}
	out.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", 900))
	switch {
	case strings.HasSuffix(resource, ".png"):
		out.Header().Set("Content-Type", "image/png")
	case strings.HasSuffix(resource, ".css"):
		out.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(resource, ".svg"):
		out.Header().Set("Content-Type", "image/svg+xml;charset=utf-8")
	case strings.HasSuffix(resource, ".txt"):
		out.Header().Set("Content-Type", "text/plain")
	case strings.HasSuffix(resource, ".json"):
		out.Header().Set("Content-Type", "application/json")
	default:
		out.Header().Set("Content-Type", "application/octet-stream")
	}
	out.Write(content)
}
