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
	kBlockList   = "/blocks"
	kBlockDetail = "/blocks/detail"
	kBlockForm   = "/blocks/form"
	kBlockDelete = "/blocks/delete"
	kBlockExport = "/blocks/export"
)

type BlockHandler struct {
	handlerBase
}

func AddBlockHandler(mux *http.ServeMux, s store.Store, template *TemplateRenderer, access EditAccess) {
	handler := &BlockHandler{handlerBase{store: s, template: template, access: access}}
	mux.Handle(kBlockList, handler)
	mux.Handle(kBlockDetail, handler)
	mux.Handle(kBlockForm, handler)
	mux.Handle(kBlockDelete, handler)
	mux.Handle(kBlockExport, handler)
}

func (h *BlockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case kBlockDetail:
		h.detail(w, r)
	case kBlockForm:
		h.form(w, r)
	case kBlockDelete:
		h.deleteRecord(w, r, store.Blocks, kBlockList)
	case kBlockExport:
		h.export(w, r)
	default:
		h.list(w, r)
	}
}

type BlockListItem struct {
	*catalog.Block
	ComponentCount int
}

func (h *BlockHandler) list(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Block list", time.Now())
	q := listQuery(r, store.Blocks)
	page := newListPage(h.header(r, "Blocks"), kBlockList, store.Blocks, q,
		h.store.Count(store.Blocks, q.Term))
	blocks, err := h.store.ListBlocks(q)
	if err != nil {
		listUnavailable(w, err)
		return
	}
	var items []BlockListItem
	for _, b := range blocks {
		items = append(items, BlockListItem{Block: b, ComponentCount: len(b.Components)})
	}
	page.Items = items
	h.render(w, r, http.StatusOK, "block-list.html", page)
}

type BlockDetailPage struct {
	pageHeader
	Block *catalog.Block
	Chain catalog.ResourceChain
	Stats catalog.BlockStats
}

func (h *BlockHandler) detail(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Block detail", time.Now())
	b := h.store.FindBlock(r.FormValue("id"))
	if b == nil {
		notFound(w, "block")
		return
	}
	chain := catalog.BuildResourceChain(b, store.LookupFor(h.store))
	page := &BlockDetailPage{
		pageHeader: h.header(r, b.Name),
		Block:      b,
		Chain:      chain,
		Stats:      b.Stats(chain),
	}
	h.render(w, r, http.StatusOK, "block-detail.html", page)
}

type BlockFormPage struct {
	pageHeader
	ID              string
	New             bool
	Name            string
	Description     string
	Mass            string
	Health          string
	PCU             string
	SnapSize        string
	InputMass       string
	OutputMass      string
	ConsumerType    string
	ConsumerRate    string
	ProducerType    string
	ProducerRate    string
	StorageCapacity string
	Editor          rowmap.View
	Errors          map[string][]string
}

func fmtOptionalInt(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func (p *BlockFormPage) fill(b *catalog.Block) {
	p.Name = b.Name
	p.Description = b.Description
	p.Mass = fmtQuantity(b.Mass)
	p.Health = fmtQuantity(b.Health)
	p.PCU = fmt.Sprintf("%d", b.PCU)
	p.SnapSize = fmtQuantity(b.SnapSize)
	p.InputMass = fmtOptionalInt(b.InputMass)
	p.OutputMass = fmtOptionalInt(b.OutputMass)
	p.ConsumerType = b.ConsumerType
	p.ConsumerRate = fmtQuantity(b.ConsumerRate)
	p.ProducerType = b.ProducerType
	p.ProducerRate = fmtQuantity(b.ProducerRate)
	p.StorageCapacity = fmtQuantity(b.StorageCapacity)
}

func (p *BlockFormPage) readPosted(r *http.Request) {
	p.Name = r.PostFormValue("name")
	p.Description = r.PostFormValue("description")
	p.Mass = r.PostFormValue("mass")
	p.Health = r.PostFormValue("health")
	p.PCU = r.PostFormValue("pcu")
	p.SnapSize = r.PostFormValue("snap_size")
	p.InputMass = r.PostFormValue("input_mass")
	p.OutputMass = r.PostFormValue("output_mass")
	p.ConsumerType = r.PostFormValue("consumer_type")
	p.ConsumerRate = r.PostFormValue("consumer_rate")
	p.ProducerType = r.PostFormValue("producer_type")
	p.ProducerRate = r.PostFormValue("producer_rate")
	p.StorageCapacity = r.PostFormValue("storage_capacity")
}

// record parses the posted fields; the component map is set by the caller.
func (p *BlockFormPage) record() (catalog.Block, *multierror.Error) {
	var errs *multierror.Error
	b := catalog.Block{
		Name:         p.Name,
		Description:  p.Description,
		ConsumerType: p.ConsumerType,
		ProducerType: p.ProducerType,
	}
	b.Mass, errs = numberField(errs, p.Mass, "mass", "Mass", true)
	b.Health, errs = numberField(errs, p.Health, "health", "Health", true)
	b.PCU, errs = intField(errs, p.PCU, "pcu", "PCU")
	b.SnapSize, errs = numberField(errs, p.SnapSize, "snap_size", "Snap size", true)
	b.InputMass, errs = optionalIntField(errs, p.InputMass, "input_mass", "Input mass")
	b.OutputMass, errs = optionalIntField(errs, p.OutputMass, "output_mass", "Output mass")
	b.ConsumerRate, errs = numberField(errs, p.ConsumerRate, "consumer_rate", "Consumer rate", false)
	b.ProducerRate, errs = numberField(errs, p.ProducerRate, "producer_rate", "Producer rate", false)
	b.StorageCapacity, errs = numberField(errs, p.StorageCapacity, "storage_capacity", "Storage capacity", false)
	return b, errs
}

func (h *BlockHandler) form(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Block form", time.Now())
	id := r.FormValue("id")
	page := &BlockFormPage{ID: id, New: id == "", PCU: "1"}
	var existing []rowmap.Entry
	if page.New {
		page.pageHeader = h.header(r, "Create New Block")
	} else {
		b := h.store.FindBlock(id)
		if b == nil {
			notFound(w, "block")
			return
		}
		page.pageHeader = h.header(r, "Edit Block: "+b.Name)
		page.fill(b)
		existing = rowmap.Entries(b.Components)
	}
	if !page.EditAllowed {
		http.Error(w, "editing not allowed", http.StatusForbidden)
		return
	}

	choices, err := componentCatalog(h.store)
	ef := runEditor(r, rowmap.ComponentPolicy, choices, err, existing)
	if r.Method == http.MethodPost {
		page.readPosted(r)
	}
	page.Alert = ef.alert

	switch {
	case ef.action == kSend && !ef.Submitted():
		submissions.WithLabelValues("block", "blocked").Inc()
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusUnprocessableEntity, "block-form.html", page)
		return
	case !ef.Submitted():
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusOK, "block-form.html", page)
		return
	}

	fromForm, errs := page.record()
	components, err := catalog.ParseQuantities(ef.MappingText(r), "component", true,
		func(componentID string) bool { return h.store.FindComponent(componentID) != nil })
	errs = appendErr(errs, err)
	fromForm.Components = components
	fromForm.Clean()
	errs = appendValidation(errs, fromForm.Validate())
	if fromForm.Name != "" && h.store.NameTaken(store.Blocks, fromForm.Name, id) {
		errs = appendErr(errs, catalog.NameTakenError("block", fromForm.Name))
	}
	if err := errs.ErrorOrNil(); err != nil {
		submissions.WithLabelValues("block", "invalid").Inc()
		log.Warn("block form invalid", "err", err)
		page.Errors = catalog.FieldErrors(err)
		page.Alert = "Please correct the errors below."
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusUnprocessableEntity, "block-form.html", page)
		return
	}

	if page.New {
		id = catalog.NewID()
	}
	wasStored, storeMsg := h.store.EditBlock(id, func(b *catalog.Block) bool {
		fromForm.ID, fromForm.Created, fromForm.Updated = b.ID, b.Created, b.Updated
		*b = fromForm
		return true
	})
	if !wasStored {
		submissions.WithLabelValues("block", "failed").Inc()
		page.Alert = fmt.Sprintf("Could not store block (%s)", storeMsg)
		page.Editor = ef.editor.View()
		h.render(w, r, http.StatusInternalServerError, "block-form.html", page)
		return
	}
	submissions.WithLabelValues("block", "stored").Inc()
	log.Info("stored block", "id", id, "name", fromForm.Name, "components", len(fromForm.Components))
	verb := "updated"
	if page.New {
		verb = "created"
	}
	redirect(w, r, kBlockDetail+"?id="+id,
		fmt.Sprintf("Block \"%s\" %s successfully with %d component(s).", fromForm.Name, verb, len(fromForm.Components)))
}
