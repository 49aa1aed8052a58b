package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/ansel1/merry"
)

//go:embed template static
var content embed.FS

// Templates returns the template files: from dir if given, the embedded
// ones otherwise.
func Templates(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(content, "template")
	if err != nil {
		panic(err)
	}
	return sub
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var templateFuncs = template.FuncMap{
	"qty": fmtQuantity,
	"kg":  fmtMass,
}

// Quantities without unneeded trailing zeros.
func fmtQuantity(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func fmtMass(f float64) string {
	return fmtQuantity(f) + " kg"
}

type TemplateRenderer struct {
	files           fs.FS
	cachedTemplates *template.Template
	doCache         bool
}

// NewTemplateRenderer serves pages from files. Every page can use the
// partial-*.html templates. Without caching, templates are parsed on each
// request to easier edit them.
func NewTemplateRenderer(files fs.FS, doCache bool) (*TemplateRenderer, error) {
	result := &TemplateRenderer{
		files:   files,
		doCache: doCache,
	}
	if doCache {
		t, err := template.New("").Funcs(templateFuncs).ParseFS(files, "*.html")
		if err != nil {
			return nil, merry.Prepend(err, "templates")
		}
		result.cachedTemplates = t
	}
	return result, nil
}

func (h *TemplateRenderer) lookup(templateName string) (*template.Template, error) {
	if h.doCache {
		t := h.cachedTemplates.Lookup(templateName)
		if t == nil {
			return nil, merry.Errorf("no template %s", templateName)
		}
		return t, nil
	}
	t, err := template.New(templateName).Funcs(templateFuncs).ParseFS(h.files, templateName, "partial-*.html")
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return t, nil
}

func setContentTypeFromTemplateName(templateName string, header http.Header) {
	switch {
	case strings.HasSuffix(templateName, ".svg"):
		header.Set("Content-Type", "image/svg+xml")
	case strings.HasSuffix(templateName, ".txt"):
		header.Set("Content-Type", "text/plain; charset=utf-8")
	default:
		header.Set("Content-Type", "text/html; charset=utf-8")
	}
}

func (h *TemplateRenderer) Render(w http.ResponseWriter, templateName string, p interface{}) bool {
	return h.RenderWithHttpCode(w, nil, http.StatusOK, templateName, p)
}

// RenderWithHttpCode renders into a buffer first, so a broken template
// still results in a clean 500. If outWriter is given (e.g. a gzip writer
// wrapping w), the page is written there.
func (h *TemplateRenderer) RenderWithHttpCode(w http.ResponseWriter, outWriter io.Writer, code int, templateName string, p interface{}) bool {
	t, err := h.lookup(templateName)
	if err == nil {
		var buf bytes.Buffer
		if err = t.Execute(&buf, p); err == nil {
			setContentTypeFromTemplateName(templateName, w.Header())
			w.WriteHeader(code)
			if outWriter == nil {
				outWriter = w
			}
			outWriter.Write(buf.Bytes())
			return true
		}
	}
	log.PrintErr("template broken", "template", templateName, "err", err)
	w.Header().Del("Content-Encoding")
	http.Error(w, "template error", http.StatusInternalServerError)
	return false
}
