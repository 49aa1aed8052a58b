package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/rowmap"
	"github.com/hzeller/se2calc/internal/store"
)

const (
	kComponentList   = "/components"
	kComponentDetail = "/components/detail"
	kComponentForm   = "/components/form"
	kComponentDelete = "/components/delete"
)

type ComponentHandler struct {
	handlerBase
}

func AddComponentHandler(mux *http.ServeMux, s store.Store, template *TemplateRenderer, access EditAccess) {
	handler := &ComponentHandler{handlerBase{store: s, template: template, access: access}}
	mux.Handle(kComponentList, handler)
	mux.Handle(kComponentDetail, handler)
	mux.Handle(kComponentForm, handler)
	mux.Handle(kComponentDelete, handler)
}

func (h *ComponentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case kComponentDetail:
		h.detail(w, r)
	case kComponentForm:
		h.form(w, r)
	case kComponentDelete:
		h.deleteRecord(w, r, store.Components, kComponentList)
	default:
		h.list(w, r)
	}
}

type ComponentListItem struct {
	*catalog.Component
	MaterialCount int
}

func (h *ComponentHandler) list(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Component list", time.Now())
	q := listQuery(r, store.Components)
	page := newListPage(h.header(r, "Components"), kComponentList, store.Components, q,
		h.store.Count(store.Components, q.Term))
	components, err := h.store.ListComponents(q)
	if err != nil {
		listUnavailable(w, err)
		return
	}
	var items []ComponentListItem
	for _, c := range components {
		items = append(items, ComponentListItem{Component: c, MaterialCount: len(c.Materials)})
	}
	page.Items = items
	h.render(w, r, http.StatusOK, "component-list.html", page)
}

type ComponentDetailPage struct {
	pageHeader
	Component         *catalog.Component
	Materials         []catalog.MaterialLine
	TotalMaterialMass float64
}

func (h *ComponentHandler) detail(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Component detail", time.Now())
	c := h.store.FindComponent(r.FormValue("id"))
	if c == nil {
		notFound(w, "component")
		return
	}
	page := &ComponentDetailPage{
		pageHeader:        h.header(r, c.Name),
		Component:         c,
		Materials:         catalog.MaterialList(c, store.LookupFor(h.store)),
		TotalMaterialMass: c.Materials.Total(),
	}
	h.render(w, r, http.StatusOK, "component-detail.html", page)
}

type ComponentFormPage struct {
	pageHeader
	ID             string
	New            bool
	Name           string
	Description    string
	Mass           string
	FabricatorType string
	CraftingTime   string
	Editor         rowmap.View
	Errors         map[string][]string
}

func (h *ComponentHandler) form(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Component form", time.Now())
	id := r.FormValue("id")
	page := &ComponentFormPage{ID: id, New: id == "", CraftingTime: "0"}
	var existing []rowmap.Entry
	if page.New {
		page.pageHeader = h.header(r, "Create New Component")
	} else {
		c := h.store.FindComponent(id)
		if c == nil {
			notFound(w, "component")
			return
		}
		page.pageHeader = h.header(r, "Edit Component: "+c.Name)
		page.Name = c.Name
		page.Description = c.Description
		page.Mass = fmtQuantity(c.Mass)
		page.FabricatorType = c.FabricatorType
		page.CraftingTime = fmtQuantity(c.CraftingTime)
		existing = rowmap.Entries(c.Materials)
	}
	if !page.EditAllowed {
		http.Error(w, "editing not allowed", http.StatusForbidden)
		return
	}

	ores, err := oreCatalog(h.store)
	ef := runEditor(r, rowmap.MaterialPolicy, ores, err, existing)
	if r.Method == http.MethodPost {
		page.Name = r.PostFormValue("name")
		page.Description = r.PostFormValue("description")
		page.Mass = r.PostFormValue("mass")
		page.FabricatorType = r.PostFormValue("fabricator_type")
		page.CraftingTime = r.PostFormValue("crafting_time")
	}
	page.Alert = ef.alert

	switch {
	case ef.action == kSend && !ef.Submitted():
		submissions.WithLabelValues("component", "blocked").Inc()
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusUnprocessableEntity, "component-form.html", page)
		return
	case !ef.Submitted():
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusOK, "component-form.html", page)
		return
	}

	var errs *multierror.Error
	fromForm := catalog.Component{
		Name:           page.Name,
		Description:    page.Description,
		FabricatorType: page.FabricatorType,
	}
	fromForm.Mass, errs = numberField(errs, page.Mass, "mass", "Mass", true)
	fromForm.CraftingTime, errs = numberField(errs, page.CraftingTime, "crafting_time", "Crafting time", false)
	materials, err := catalog.ParseQuantities(ef.MappingText(r), "material", false,
		func(oreID string) bool { return h.store.FindOre(oreID) != nil })
	errs = appendErr(errs, err)
	fromForm.Materials = materials
	fromForm.Clean()
	errs = appendValidation(errs, fromForm.Validate())
	if fromForm.Name != "" && h.store.NameTaken(store.Components, fromForm.Name, id) {
		errs = appendErr(errs, catalog.NameTakenError("component", fromForm.Name))
	}
	if err := errs.ErrorOrNil(); err != nil {
		submissions.WithLabelValues("component", "invalid").Inc()
		log.Warn("component form invalid", "err", err)
		page.Errors = catalog.FieldErrors(err)
		page.Alert = "Please correct the errors below."
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusUnprocessableEntity, "component-form.html", page)
		return
	}

	if page.New {
		id = catalog.NewID()
	}
	wasStored, storeMsg := h.store.EditComponent(id, func(c *catalog.Component) bool {
		c.Name = fromForm.Name
		c.Description = fromForm.Description
		c.Mass = fromForm.Mass
		c.FabricatorType = fromForm.FabricatorType
		c.CraftingTime = fromForm.CraftingTime
		c.Materials = fromForm.Materials
		return true
	})
	if !wasStored {
		submissions.WithLabelValues("component", "failed").Inc()
		page.Alert = fmt.Sprintf("Could not store component (%s)", storeMsg)
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusInternalServerError, "component-form.html", page)
		return
	}
	submissions.WithLabelValues("component", "stored").Inc()
	log.Info("stored component", "id", id, "name", fromForm.Name, "materials", len(fromForm.Materials))
	verb := "updated"
	if page.New {
		verb = "created"
	}
	redirect(w, r, kComponentDetail+"?id="+id,
		fmt.Sprintf("Component \"%s\" %s successfully with %d material(s).", fromForm.Name, verb, len(fromForm.Materials)))
}
