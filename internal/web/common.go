package web

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ansel1/merry"
	"github.com/hashicorp/go-multierror"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/store"
)

type handlerBase struct {
	store    store.Store
	template *TemplateRenderer
	access   EditAccess
}

// pageHeader is shown on every page.
type pageHeader struct {
	PageTitle   string
	Msg         string // Feedback for user
	Alert       string // Blocking message, e.g. a refused submission
	EditAllowed bool
}

// render writes the page gzipped if the client accepts it.
func (h *handlerBase) render(w http.ResponseWriter, r *http.Request, code int, templateName string, page interface{}) {
	var zipped io.WriteCloser
	for _, val := range r.Header["Accept-Encoding"] {
		if strings.Contains(strings.ToLower(val), "gzip") {
			w.Header().Set("Content-Encoding", "gzip")
			zipped = gzip.NewWriter(w)
			break
		}
	}
	if zipped != nil {
		h.template.RenderWithHttpCode(w, zipped, code, templateName, page)
		zipped.Close()
	} else {
		h.template.RenderWithHttpCode(w, nil, code, templateName, page)
	}
}

func (h *handlerBase) header(r *http.Request, title string) pageHeader {
	return pageHeader{
		PageTitle:   title,
		Msg:         r.FormValue("msg"),
		EditAllowed: h.access.EditAllowed(r),
	}
}

// redirect after a successful POST, so reloading does not post again.
func redirect(w http.ResponseWriter, r *http.Request, path string, msg string) {
	target := path
	if msg != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + "msg=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// numberField parses a posted number. Empty optional fields are 0.
func numberField(errs *multierror.Error, value string, field string, label string, required bool) (float64, *multierror.Error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return 0, multierror.Append(errs, catalog.FieldError(field, "%s is required.", label))
		}
		return 0, errs
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, multierror.Append(errs, catalog.FieldError(field, "%s must be a number.", label))
	}
	return f, errs
}

func intField(errs *multierror.Error, value string, field string, label string) (int, *multierror.Error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, multierror.Append(errs, catalog.FieldError(field, "%s is required.", label))
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, multierror.Append(errs, catalog.FieldError(field, "%s must be a whole number.", label))
	}
	return i, errs
}

// optionalIntField is nil for an empty value.
func optionalIntField(errs *multierror.Error, value string, field string, label string) (*int, *multierror.Error) {
	if strings.TrimSpace(value) == "" {
		return nil, errs
	}
	i, errs := intField(errs, value, field, label)
	return &i, errs
}

// appendErr merges the field errors of err into errs.
func appendErr(errs *multierror.Error, err error) *multierror.Error {
	if err == nil {
		return errs
	}
	return multierror.Append(errs, err)
}

// appendValidation adds the record validation errors for fields that did
// not already fail to parse.
func appendValidation(errs *multierror.Error, err error) *multierror.Error {
	if err == nil {
		return errs
	}
	failed := catalog.FieldErrors(errs.ErrorOrNil())
	all := []error{err}
	if m, ok := err.(*multierror.Error); ok {
		all = m.Errors
	}
	for _, e := range all {
		if _, seen := failed[catalog.Field(e)]; !seen {
			errs = multierror.Append(errs, e)
		}
	}
	return errs
}

// deleteRecord serves the POST of a delete button.
func (h *handlerBase) deleteRecord(w http.ResponseWriter, r *http.Request, kind store.Kind, listPath string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.access.EditAllowed(r) {
		http.Error(w, "editing not allowed", http.StatusForbidden)
		return
	}
	id := r.PostFormValue("id")
	name := h.recordName(kind, id)
	if err := h.store.Delete(kind, id); err != nil {
		code := merry.HTTPCode(err)
		log.Warn("delete failed", "kind", kind, "id", id, "err", err)
		http.Error(w, err.Error(), code)
		return
	}
	log.Info("deleted", "kind", kind, "id", id)
	redirect(w, r, listPath, fmt.Sprintf("%s \"%s\" has been deleted successfully.",
		strings.ToUpper(string(kind)[:1])+string(kind)[1:], name))
}

func (h *handlerBase) recordName(kind store.Kind, id string) string {
	switch kind {
	case store.Ores:
		if o := h.store.FindOre(id); o != nil {
			return o.Name
		}
	case store.Components:
		if c := h.store.FindComponent(id); c != nil {
			return c.Name
		}
	case store.Blocks:
		if b := h.store.FindBlock(id); b != nil {
			return b.Name
		}
	}
	return id
}

func listUnavailable(w http.ResponseWriter, err error) {
	log.PrintErr("list unavailable", "err", err)
	http.Error(w, "listing unavailable", http.StatusServiceUnavailable)
}

func notFound(w http.ResponseWriter, what string) {
	http.Error(w, what+" not found", http.StatusNotFound)
}
