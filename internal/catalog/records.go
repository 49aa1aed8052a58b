package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	maxOreMass           = 1000000
)

type Ore struct {
	ID          string    `db:"ore_id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Mass        float64   `db:"mass" json:"mass"` // kg per unit
	Created     time.Time `db:"created_at" json:"created_at"`
	Updated     time.Time `db:"updated_at" json:"updated_at"`
}

type Component struct {
	ID             string     `db:"component_id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description,omitempty"`
	Materials      Quantities `db:"materials" json:"materials"` // ore id -> kg
	FabricatorType string     `db:"fabricator_type" json:"fabricator_type,omitempty"`
	CraftingTime   float64    `db:"crafting_time" json:"crafting_time"` // seconds
	Mass           float64    `db:"mass" json:"mass"`
	Created        time.Time  `db:"created_at" json:"created_at"`
	Updated        time.Time  `db:"updated_at" json:"updated_at"`
}

type Block struct {
	ID              string     `db:"block_id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description,omitempty"`
	Mass            float64    `db:"mass" json:"mass"`
	Components      Quantities `db:"components" json:"components"` // component id -> count
	Health          float64    `db:"health" json:"health"`
	PCU             int        `db:"pcu" json:"pcu"`
	SnapSize        float64    `db:"snap_size" json:"snap_size"`
	InputMass       *int       `db:"input_mass" json:"input_mass,omitempty"`
	OutputMass      *int       `db:"output_mass" json:"output_mass,omitempty"`
	ConsumerType    string     `db:"consumer_type" json:"consumer_type,omitempty"`
	ConsumerRate    float64    `db:"consumer_rate" json:"consumer_rate"`
	ProducerType    string     `db:"producer_type" json:"producer_type,omitempty"`
	ProducerRate    float64    `db:"producer_rate" json:"producer_rate"`
	StorageCapacity float64    `db:"storage_capacity" json:"storage_capacity"`
	Created         time.Time  `db:"created_at" json:"created_at"`
	Updated         time.Time  `db:"updated_at" json:"updated_at"`
}

func cleanString(input string) string {
	result := strings.TrimSpace(input)
	return strings.Replace(result, "\r\n", "\n", -1)
}

func (o *Ore) Clean() {
	o.Name = cleanString(o.Name)
	o.Description = cleanString(o.Description)
}

func (c *Component) Clean() {
	c.Name = cleanString(c.Name)
	c.Description = cleanString(c.Description)
	c.FabricatorType = cleanString(c.FabricatorType)
}

func (b *Block) Clean() {
	b.Name = cleanString(b.Name)
	b.Description = cleanString(b.Description)
	b.ConsumerType = cleanString(b.ConsumerType)
	b.ProducerType = cleanString(b.ProducerType)
}

func validateName(errs *multierror.Error, kind string, name string, minLength int) *multierror.Error {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return multierror.Append(errs, FieldError("name", "%s name is required.", capitalize(kind)))
	case n < minLength:
		return multierror.Append(errs, FieldError("name", "%s name must be at least %d characters long.", capitalize(kind), minLength))
	case n > maxNameLength:
		return multierror.Append(errs, FieldError("name", "%s name must be at most %d characters long.", capitalize(kind), maxNameLength))
	}
	return errs
}

func validateDescription(errs *multierror.Error, description string) *multierror.Error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return multierror.Append(errs, FieldError("description", "Description must be at most %d characters long.", maxDescriptionLength))
	}
	return errs
}

// validateQuantities is the model-level check of a stored quantity map;
// referential checks happen in ParseQuantities.
func validateQuantities(errs *multierror.Error, field string, noun string, q Quantities, whole bool) *multierror.Error {
	if len(q) == 0 {
		return multierror.Append(errs, FieldError(field, "At least one %s is required.", noun))
	}
	for _, id := range q.Keys() {
		v := q[id]
		if v <= 0 || (whole && v != float64(int64(v))) {
			errs = multierror.Append(errs, FieldError(field,
				"Invalid quantity for %s %s: must be positive number, got %v", noun, id, v))
		}
	}
	return errs
}

func (o *Ore) Validate() error {
	var errs *multierror.Error
	errs = validateName(errs, "ore", o.Name, 2)
	errs = validateDescription(errs, o.Description)
	switch {
	case o.Mass <= 0:
		errs = multierror.Append(errs, FieldError("mass", "Mass must be greater than 0."))
	case o.Mass > maxOreMass:
		errs = multierror.Append(errs, FieldError("mass", "Mass seems unreasonably high. Please verify."))
	}
	return errs.ErrorOrNil()
}

func (c *Component) Validate() error {
	var errs *multierror.Error
	errs = validateName(errs, "component", c.Name, 1)
	errs = validateDescription(errs, c.Description)
	if c.Mass <= 0 {
		errs = multierror.Append(errs, FieldError("mass", "Mass must be greater than 0."))
	}
	if c.CraftingTime < 0 {
		errs = multierror.Append(errs, FieldError("crafting_time", "Crafting time cannot be negative."))
	}
	errs = validateQuantities(errs, "materials", "material", c.Materials, false)
	return errs.ErrorOrNil()
}

func (b *Block) Validate() error {
	var errs *multierror.Error
	errs = validateName(errs, "block", b.Name, 1)
	errs = validateDescription(errs, b.Description)
	if b.Mass <= 0 {
		errs = multierror.Append(errs, FieldError("mass", "Mass must be greater than 0."))
	}
	if b.Health <= 0 {
		errs = multierror.Append(errs, FieldError("health", "Health must be greater than 0."))
	}
	if b.PCU < 1 {
		errs = multierror.Append(errs, FieldError("pcu", "PCU must be at least 1."))
	}
	if b.SnapSize <= 0 {
		errs = multierror.Append(errs, FieldError("snap_size", "Snap size must be greater than 0."))
	}
	if b.InputMass != nil && *b.InputMass < 0 {
		errs = multierror.Append(errs, FieldError("input_mass", "Input mass cannot be negative."))
	}
	if b.OutputMass != nil && *b.OutputMass < 0 {
		errs = multierror.Append(errs, FieldError("output_mass", "Output mass cannot be negative."))
	}
	errs = validateRate(errs, "consumer", b.ConsumerType, b.ConsumerRate)
	errs = validateRate(errs, "producer", b.ProducerType, b.ProducerRate)
	if b.StorageCapacity < 0 {
		errs = multierror.Append(errs, FieldError("storage_capacity", "Storage capacity cannot be negative."))
	}
	errs = validateQuantities(errs, "components", "component", b.Components, true)
	return errs.ErrorOrNil()
}

func validateRate(errs *multierror.Error, role string, kind string, rate float64) *multierror.Error {
	field := role + "_rate"
	if rate < 0 {
		return multierror.Append(errs, FieldError(field, "%s rate cannot be negative, got %v", capitalize(role), rate))
	}
	if kind != "" && rate <= 0 {
		return multierror.Append(errs, FieldError(field, "%s type '%s' requires %s_rate > 0, got %v", capitalize(role), kind, role, rate))
	}
	return errs
}

// NewID returns a fresh time-ordered record id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
