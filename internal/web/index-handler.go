package web

import (
	"net/http"
	"time"

	"github.com/hzeller/se2calc/internal/store"
)

type IndexPage struct {
	pageHeader
	Ores       int
	Components int
	Blocks     int
}

type IndexHandler struct {
	handlerBase
}

// AddIndexHandler serves the start page. It also catches every path no
// other handler claims, answering those with 404.
func AddIndexHandler(mux *http.ServeMux, s store.Store, template *TemplateRenderer, access EditAccess) {
	mux.Handle("/", &IndexHandler{handlerBase{store: s, template: template, access: access}})
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	defer ElapsedPrint("Index", time.Now())
	page := &IndexPage{
		pageHeader: h.header(r, "Space Engineers Calculator"),
		Ores:       h.store.Count(store.Ores, ""),
		Components: h.store.Count(store.Components, ""),
		Blocks:     h.store.Count(store.Blocks, ""),
	}
	h.render(w, r, http.StatusOK, "index.html", page)
}
