package catalog

import (
	"sort"

	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "catalog")

// MaterialLine is one ore requirement, either of a single component or
// scaled to a number of components.
type MaterialLine struct {
	OreID        string
	OreName      string
	Known        bool
	PerComponent float64 // kg of ore per component
	Total        float64 // kg of ore for the component quantity
	MassPerUnit  float64
}

type ComponentLine struct {
	ID          string
	Name        string
	Quantity    float64
	MassPerUnit float64
	TotalMass   float64
	Materials   []MaterialLine
}

type OreTotal struct {
	ID          string
	Name        string
	Quantity    float64
	MassPerUnit float64
}

// ResourceChain expands a block into its components and the ores they
// are made of.
type ResourceChain struct {
	Components   []ComponentLine
	Ores         []OreTotal
	TotalOreMass float64
}

type BlockStats struct {
	ComponentCount         int
	TotalComponentQuantity float64
	OreTypeCount           int
	TotalOreMass           float64
}

// Lookup resolves ids to records; nil means the record does not exist.
type Lookup struct {
	Ore       func(id string) *Ore
	Component func(id string) *Component
}

// MaterialList lists the materials of a component with ore names resolved.
// Unknown ores are kept with a placeholder name.
func MaterialList(c *Component, lookup Lookup) []MaterialLine {
	result := make([]MaterialLine, 0, len(c.Materials))
	for _, oreID := range c.Materials.Keys() {
		q := c.Materials[oreID]
		line := MaterialLine{
			OreID:        oreID,
			OreName:      "Unknown Ore (" + oreID + ")",
			PerComponent: q,
			Total:        q,
		}
		if ore := lookup.Ore(oreID); ore != nil {
			line.OreName = ore.Name
			line.MassPerUnit = ore.Mass
			line.Known = true
		}
		result = append(result, line)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OreName < result[j].OreName
	})
	return result
}

// BuildResourceChain follows block -> components -> ores. Components or
// ores that no longer exist are skipped with a warning.
func BuildResourceChain(b *Block, lookup Lookup) ResourceChain {
	var chain ResourceChain
	totals := make(map[string]*OreTotal)
	for _, compID := range b.Components.Keys() {
		quantity := b.Components[compID]
		comp := lookup.Component(compID)
		if comp == nil {
			log.Warn("component not found", "block", b.Name, "component", compID)
			continue
		}
		line := ComponentLine{
			ID:          comp.ID,
			Name:        comp.Name,
			Quantity:    quantity,
			MassPerUnit: comp.Mass,
			TotalMass:   comp.Mass * quantity,
		}
		for _, oreID := range comp.Materials.Keys() {
			ore := lookup.Ore(oreID)
			if ore == nil {
				log.Warn("ore not found", "component", comp.Name, "ore", oreID)
				continue
			}
			perComponent := comp.Materials[oreID]
			total := perComponent * quantity
			line.Materials = append(line.Materials, MaterialLine{
				OreID:        ore.ID,
				OreName:      ore.Name,
				Known:        true,
				PerComponent: perComponent,
				Total:        total,
				MassPerUnit:  ore.Mass,
			})
			t := totals[ore.ID]
			if t == nil {
				t = &OreTotal{ID: ore.ID, Name: ore.Name, MassPerUnit: ore.Mass}
				totals[ore.ID] = t
			}
			t.Quantity += total
		}
		chain.Components = append(chain.Components, line)
	}
	sort.SliceStable(chain.Components, func(i, j int) bool {
		return chain.Components[i].Name < chain.Components[j].Name
	})
	for _, t := range totals {
		chain.Ores = append(chain.Ores, *t)
	}
	sort.Slice(chain.Ores, func(i, j int) bool {
		return chain.Ores[i].Name < chain.Ores[j].Name
	})
	for _, t := range chain.Ores {
		chain.TotalOreMass += t.Quantity * t.MassPerUnit
	}
	return chain
}

func (b *Block) Stats(chain ResourceChain) BlockStats {
	return BlockStats{
		ComponentCount:         len(b.Components),
		TotalComponentQuantity: b.Components.Total(),
		OreTypeCount:           len(chain.Ores),
		TotalOreMass:           chain.TotalOreMass,
	}
}
