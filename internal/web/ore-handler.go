package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/store"
)

const (
	kOreList   = "/ores"
	kOreForm   = "/ores/form"
	kOreDelete = "/ores/delete"
)

type OreHandler struct {
	handlerBase
}

func AddOreHandler(mux *http.ServeMux, s store.Store, template *TemplateRenderer, access EditAccess) {
	handler := &OreHandler{handlerBase{store: s, template: template, access: access}}
	mux.Handle(kOreList, handler)
	mux.Handle(kOreForm, handler)
	mux.Handle(kOreDelete, handler)
}

func (h *OreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case kOreForm:
		h.form(w, r)
	case kOreDelete:
		h.deleteRecord(w, r, store.Ores, kOreList)
	default:
		h.list(w, r)
	}
}

func (h *OreHandler) list(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Ore list", time.Now())
	q := listQuery(r, store.Ores)
	page := newListPage(h.header(r, "Ores"), kOreList, store.Ores, q, h.store.Count(store.Ores, q.Term))
	ores, err := h.store.ListOres(q)
	if err != nil {
		listUnavailable(w, err)
		return
	}
	page.Items = ores
	h.render(w, r, http.StatusOK, "ore-list.html", page)
}

type OreFormPage struct {
	pageHeader
	ID          string
	New         bool
	Name        string
	Description string
	Mass        string
	Errors      map[string][]string
}

func (h *OreHandler) form(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Ore form", time.Now())
	id := r.FormValue("id")
	page := &OreFormPage{ID: id, New: id == ""}
	if page.New {
		page.pageHeader = h.header(r, "New Ore")
	} else {
		existing := h.store.FindOre(id)
		if existing == nil {
			notFound(w, "ore")
			return
		}
		page.pageHeader = h.header(r, "Edit "+existing.Name)
		page.Name = existing.Name
		page.Description = existing.Description
		page.Mass = fmtQuantity(existing.Mass)
	}
	if !page.EditAllowed {
		http.Error(w, "editing not allowed", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "ore-form.html", page)
		return
	}

	page.Name = r.PostFormValue("name")
	page.Description = r.PostFormValue("description")
	page.Mass = r.PostFormValue("mass")

	var errs *multierror.Error
	fromForm := catalog.Ore{Name: page.Name, Description: page.Description}
	fromForm.Mass, errs = numberField(errs, page.Mass, "mass", "Mass", true)
	fromForm.Clean()
	errs = appendValidation(errs, fromForm.Validate())
	if fromForm.Name != "" && h.store.NameTaken(store.Ores, fromForm.Name, id) {
		errs = appendErr(errs, catalog.NameTakenError("ore", fromForm.Name))
	}
	if err := errs.ErrorOrNil(); err != nil {
		submissions.WithLabelValues("ore", "invalid").Inc()
		page.Errors = catalog.FieldErrors(err)
		page.Alert = "Please correct the errors below."
		h.render(w, r, http.StatusUnprocessableEntity, "ore-form.html", page)
		return
	}

	if page.New {
		id = catalog.NewID()
	}
	wasStored, storeMsg := h.store.EditOre(id, func(o *catalog.Ore) bool {
		o.Name = fromForm.Name
		o.Description = fromForm.Description
		o.Mass = fromForm.Mass
		return true
	})
	if !wasStored {
		submissions.WithLabelValues("ore", "failed").Inc()
		page.Alert = fmt.Sprintf("Could not store ore (%s)", storeMsg)
		h.render(w, r, http.StatusInternalServerError, "ore-form.html", page)
		return
	}
	submissions.WithLabelValues("ore", "stored").Inc()
	log.Info("stored ore", "id", id, "name", fromForm.Name)
	redirect(w, r, kOreList, fmt.Sprintf("Stored ore '%s'.", fromForm.Name))
}
