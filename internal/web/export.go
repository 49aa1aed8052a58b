package web

import (
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/ansel1/merry"
	"github.com/xuri/excelize/v2"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/store"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func setRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// WriteBillOfMaterials writes the resource chain of a block as a workbook
// with a summary, a component and an ore sheet.
func WriteBillOfMaterials(out io.Writer, b *catalog.Block, chain catalog.ResourceChain) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return merry.Wrap(err)
	}
	if _, err := f.NewSheet("Components"); err != nil {
		return merry.Wrap(err)
	}
	if _, err := f.NewSheet("Ores"); err != nil {
		return merry.Wrap(err)
	}

	stats := b.Stats(chain)
	err := setRows(f, summary, []interface{}{"Block", b.Name}, [][]interface{}{
		{"Mass (kg)", b.Mass},
		{"Health", b.Health},
		{"PCU", b.PCU},
		{"Component types", stats.ComponentCount},
		{"Components", stats.TotalComponentQuantity},
		{"Ore types", stats.OreTypeCount},
		{"Total ore mass (kg)", stats.TotalOreMass},
	})
	if err != nil {
		return merry.Prepend(err, "summary sheet")
	}

	var components [][]interface{}
	for _, c := range chain.Components {
		components = append(components, []interface{}{c.Name, c.Quantity, c.MassPerUnit, c.TotalMass})
	}
	err = setRows(f, "Components",
		[]interface{}{"Component", "Quantity", "Mass per unit (kg)", "Total mass (kg)"}, components)
	if err != nil {
		return merry.Prepend(err, "component sheet")
	}

	var ores [][]interface{}
	for _, o := range chain.Ores {
		ores = append(ores, []interface{}{o.Name, o.Quantity, o.MassPerUnit, o.Quantity * o.MassPerUnit})
	}
	err = setRows(f, "Ores",
		[]interface{}{"Ore", "Quantity", "Mass per unit (kg)", "Total mass (kg)"}, ores)
	if err != nil {
		return merry.Prepend(err, "ore sheet")
	}

	if err := f.Write(out); err != nil {
		return merry.Wrap(err)
	}
	return nil
}

func (h *BlockHandler) export(w http.ResponseWriter, r *http.Request) {
	defer ElapsedPrint("Block export", time.Now())
	b := h.store.FindBlock(r.FormValue("id"))
	if b == nil {
		notFound(w, "block")
		return
	}
	chain := catalog.BuildResourceChain(b, store.LookupFor(h.store))
	fileName := unsafeFileChars.ReplaceAllString(b.Name, "_") + "-bom.xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	if err := WriteBillOfMaterials(w, b, chain); err != nil {
		log.PrintErr("export failed", "id", b.ID, "err", err)
	}
}
