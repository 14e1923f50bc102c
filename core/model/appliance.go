package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAppliance reports an appliance record that cannot be scheduled.
var ErrInvalidAppliance = errors.New("invalid appliance")

// MaxDurationHours bounds an appliance run to a single day.
const MaxDurationHours = 24.0

// Appliance is a household load with a fixed power draw and run time.
type Appliance struct {
	ID            int     `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	PowerKW       float64 `json:"power_kw" yaml:"power_kw"`
	DurationHours float64 `json:"duration_hours" yaml:"duration_hours"`
}

// NewAppliance carries the user supplied fields of an appliance; the ID is
// assigned by the catalog.
type NewAppliance struct {
	Name          string  `json:"name"`
	PowerKW       float64 `json:"power_kw"`
	DurationHours float64 `json:"duration_hours"`
}

// Validate checks the fields the evaluator relies on.
func (a NewAppliance) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAppliance)
	}
	if a.PowerKW <= 0 {
		return fmt.Errorf("%w: power_kw must be positive", ErrInvalidAppliance)
	}
	if a.DurationHours <= 0 || a.DurationHours > MaxDurationHours {
		return fmt.Errorf("%w: duration_hours must be in (0, %v]", ErrInvalidAppliance, MaxDurationHours)
	}
	return nil
}

// Validate checks the appliance identity and its load figures.
func (a Appliance) Validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidAppliance)
	}
	return NewAppliance{Name: a.Name, PowerKW: a.PowerKW, DurationHours: a.DurationHours}.Validate()
}

// DefaultAppliances returns the appliance list installed on first use.
func DefaultAppliances() []Appliance {
	return []Appliance{
		{ID: 1, Name: "Washing Machine", PowerKW: 2.0, DurationHours: 1.5},
		{ID: 2, Name: "Dishwasher", PowerKW: 1.8, DurationHours: 2.0},
		{ID: 3, Name: "EV Charger", PowerKW: 7.0, DurationHours: 4.0},
		{ID: 4, Name: "Water Heater", PowerKW: 3.0, DurationHours: 1.0},
		{ID: 5, Name: "Air Conditioner", PowerKW: 1.5, DurationHours: 8.0},
	}
}
