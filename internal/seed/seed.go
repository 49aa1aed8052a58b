// Package seed loads ores, components and blocks from a YAML fixture into
// the store. References between records are by name.
package seed

import (
	"os"

	"github.com/ansel1/merry"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/powerman/structlog"
	"gopkg.in/yaml.v3"

	"github.com/hzeller/se2calc/internal/catalog"
	"github.com/hzeller/se2calc/internal/store"
)

var log = structlog.New(structlog.KeyUnit, "seed")

// Seeded records get name based ids, so loading the same file twice
// updates instead of duplicating.
var namespace = uuid.MustParse("5f0d6f0e-3c2b-4e59-9a53-2e7f3f6c8d10")

type Ore struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Mass        float64 `yaml:"mass"`
}

type Component struct {
	Name           string             `yaml:"name"`
	Description    string             `yaml:"description"`
	Mass           float64            `yaml:"mass"`
	FabricatorType string             `yaml:"fabricator_type"`
	CraftingTime   float64            `yaml:"crafting_time"`
	Materials      map[string]float64 `yaml:"materials"` // ore name -> kg
}

type Block struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Mass            float64        `yaml:"mass"`
	Health          float64        `yaml:"health"`
	PCU             int            `yaml:"pcu"`
	SnapSize        float64        `yaml:"snap_size"`
	InputMass       *int           `yaml:"input_mass"`
	OutputMass      *int           `yaml:"output_mass"`
	ConsumerType    string         `yaml:"consumer_type"`
	ConsumerRate    float64        `yaml:"consumer_rate"`
	ProducerType    string         `yaml:"producer_type"`
	ProducerRate    float64        `yaml:"producer_rate"`
	StorageCapacity float64        `yaml:"storage_capacity"`
	Components      map[string]int `yaml:"components"` // component name -> count
}

type Fixture struct {
	Ores       []Ore       `yaml:"ores"`
	Components []Component `yaml:"components"`
	Blocks     []Block     `yaml:"blocks"`
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, merry.Prepend(err, "seed")
	}
	return &f, nil
}

func LoadFile(fileName string) (*Fixture, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, merry.Prepend(err, "seed")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, merry.Appendf(err, "file %s", fileName)
	}
	return f, nil
}

// ID is the id a seeded record of this kind and name gets.
func ID(kind store.Kind, name string) string {
	return uuid.NewSHA1(namespace, []byte(string(kind)+"/"+name)).String()
}

func edited(ok bool, msg string) error {
	if !ok {
		return merry.New(msg)
	}
	return nil
}

// Apply writes the fixture into s. Records failing validation or referring
// to unknown names are skipped; all problems are returned together.
func Apply(s store.Store, f *Fixture) error {
	var errs *multierror.Error
	failed := 0
	fail := func(kind store.Kind, name string, err error) {
		failed++
		errs = multierror.Append(errs, merry.Prependf(err, "%s '%s'", kind, name))
	}

	for _, o := range f.Ores {
		rec := catalog.Ore{Name: o.Name, Description: o.Description, Mass: o.Mass}
		rec.Clean()
		if err := rec.Validate(); err != nil {
			fail(store.Ores, o.Name, err)
			continue
		}
		err := edited(s.EditOre(ID(store.Ores, rec.Name), func(ore *catalog.Ore) bool {
			ore.Name, ore.Description, ore.Mass = rec.Name, rec.Description, rec.Mass
			return true
		}))
		if err != nil {
			fail(store.Ores, o.Name, err)
		}
	}

	for _, c := range f.Components {
		rec := catalog.Component{
			Name:           c.Name,
			Description:    c.Description,
			Mass:           c.Mass,
			FabricatorType: c.FabricatorType,
			CraftingTime:   c.CraftingTime,
			Materials:      make(catalog.Quantities),
		}
		rec.Clean()
		var missing *multierror.Error
		for oreName, kg := range c.Materials {
			id := ID(store.Ores, oreName)
			if s.FindOre(id) == nil {
				missing = multierror.Append(missing, merry.Errorf("unknown ore '%s'", oreName))
				continue
			}
			rec.Materials[id] = kg
		}
		if err := missing.ErrorOrNil(); err != nil {
			fail(store.Components, c.Name, err)
			continue
		}
		if err := rec.Validate(); err != nil {
			fail(store.Components, c.Name, err)
			continue
		}
		err := edited(s.EditComponent(ID(store.Components, rec.Name), func(comp *catalog.Component) bool {
			rec.ID, rec.Created, rec.Updated = comp.ID, comp.Created, comp.Updated
			*comp = rec
			return true
		}))
		if err != nil {
			fail(store.Components, c.Name, err)
		}
	}

	for _, b := range f.Blocks {
		rec := catalog.Block{
			Name:            b.Name,
			Description:     b.Description,
			Mass:            b.Mass,
			Health:          b.Health,
			PCU:             b.PCU,
			SnapSize:        b.SnapSize,
			InputMass:       b.InputMass,
			OutputMass:      b.OutputMass,
			ConsumerType:    b.ConsumerType,
			ConsumerRate:    b.ConsumerRate,
			ProducerType:    b.ProducerType,
			ProducerRate:    b.ProducerRate,
			StorageCapacity: b.StorageCapacity,
			Components:      make(catalog.Quantities),
		}
		rec.Clean()
		var missing *multierror.Error
		for compName, n := range b.Components {
			id := ID(store.Components, compName)
			if s.FindComponent(id) == nil {
				missing = multierror.Append(missing, merry.Errorf("unknown component '%s'", compName))
				continue
			}
			rec.Components[id] = float64(n)
		}
		if err := missing.ErrorOrNil(); err != nil {
			fail(store.Blocks, b.Name, err)
			continue
		}
		if err := rec.Validate(); err != nil {
			fail(store.Blocks, b.Name, err)
			continue
		}
		err := edited(s.EditBlock(ID(store.Blocks, rec.Name), func(block *catalog.Block) bool {
			rec.ID, rec.Created, rec.Updated = block.ID, block.Created, block.Updated
			*block = rec
			return true
		}))
		if err != nil {
			fail(store.Blocks, b.Name, err)
		}
	}

	log.Info("seeded", "ores", len(f.Ores), "components", len(f.Components),
		"blocks", len(f.Blocks), "failed", failed)
	return errs.ErrorOrNil()
}
