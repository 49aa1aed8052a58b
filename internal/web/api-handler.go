package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hzeller/se2calc/internal/store"
)

const (
	kApiOres              = "/api/ores"
	kApiComponents        = "/api/components"
	kApiBlocks            = "/api/blocks"
	kApiListDefaultOffset = 0
	kApiListDefaultLimit  = 100
	kApiListMaxLimit      = 1000
)

type ApiHandler struct {
	store store.Store
}

func AddApiHandler(mux *http.ServeMux, s store.Store) {
	handler := &ApiHandler{store: s}
	mux.Handle(kApiOres, handler)
	mux.Handle(kApiComponents, handler)
	mux.Handle(kApiBlocks, handler)
}

type JsonApiListResult struct {
	Directlink string      `json:"link"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
	Total      int         `json:"total"`
	Items      interface{} `json:"items"`
}

func encodeUriComponent(str string) string {
	u, err := url.Parse(str)
	if err != nil {
		return ""
	}
	return u.String()
}

// Invalid or negative values fall back to the default.
func formInt(r *http.Request, name string, fallback int) int {
	raw := r.FormValue(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func (h *ApiHandler) ServeHTTP(out http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Api list", time.Now())
	var kind store.Kind
	var page string
	switch r.URL.Path {
	case kApiOres:
		kind, page = store.Ores, kOreList
	case kApiComponents:
		kind, page = store.Components, kComponentList
	case kApiBlocks:
		kind, page = store.Blocks, kBlockList
	default:
		http.NotFound(out, r)
		return
	}

	q := listQuery(r, kind)
	q.Offset = formInt(r, "offset", kApiListDefaultOffset)
	q.Limit = formInt(r, "limit", kApiListDefaultLimit)
	if q.Limit == 0 || q.Limit > kApiListMaxLimit {
		q.Limit = kApiListMaxLimit
	}

	result := &JsonApiListResult{
		Directlink: encodeUriComponent(fmt.Sprintf("%s?q=%s", page, url.QueryEscape(q.Term))),
		Offset:     q.Offset,
		Limit:      q.Limit,
		Total:      h.store.Count(kind, q.Term),
	}
	var err error
	switch kind {
	case store.Ores:
		result.Items, err = nonNil(h.store.ListOres(q))
	case store.Components:
		result.Items, err = nonNil(h.store.ListComponents(q))
	case store.Blocks:
		result.Items, err = nonNil(h.store.ListBlocks(q))
	}
	if err != nil {
		listUnavailable(out, err)
		return
	}

	out.Header().Set("Cache-Control", "max-age=10")
	out.Header().Set("Content-Type", "application/json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.PrintErr("json", "err", err)
		http.Error(out, err.Error(), http.StatusInternalServerError)
		return
	}
	out.Write(data)
}

// Empty lists are [] in JSON, not null.
func nonNil[T any](items []T, err error) ([]T, error) {
	if items == nil {
		return []T{}, err
	}
	return items, err
}
