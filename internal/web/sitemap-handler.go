package web

import (
	"fmt"
	"net/http"

	"github.com/hzeller/se2calc/internal/store"
)

const (
	kSitemap = "/sitemap.txt"
)

type SitemapHandler struct {
	store      store.Store
	siteprefix string
}

func AddSitemapHandler(mux *http.ServeMux, s store.Store, siteprefix string) {
	handler := &SitemapHandler{
		store:      s,
		siteprefix: siteprefix,
	}
	mux.Handle(kSitemap, handler)
}

func (h *SitemapHandler) ServeHTTP(out http.ResponseWriter, req *http.Request) {
	out.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, page := range []string{"/", kOreList, kComponentList, kBlockList} {
		fmt.Fprintf(out, "%s%s\n", h.siteprefix, page)
	}
	// Detail pages are left out when the store cannot list them.
	components, _ := h.store.ListComponents(store.ListQuery{})
	for _, c := range components {
		fmt.Fprintf(out, "%s%s?id=%s\n", h.siteprefix, kComponentDetail, c.ID)
	}
	blocks, _ := h.store.ListBlocks(store.ListQuery{})
	for _, b := range blocks {
		fmt.Fprintf(out, "%s%s?id=%s\n", h.siteprefix, kBlockDetail, b.ID)
	}
}
