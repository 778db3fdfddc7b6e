package model

import (
	"fmt"
	"strings"
)

// ServiceCategory is the family a service (and its equipment) belongs to.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type ServiceCategory string

const (
	// CategoryADAS covers advanced driver-assistance calibrations.
	CategoryADAS ServiceCategory = "adas"
	// CategoryAirbag covers airbag module work.
	CategoryAirbag ServiceCategory = "airbag"
	// CategoryImmo covers immobilizer and key work.
	CategoryImmo ServiceCategory = "immo"
	// CategoryProg covers module programming.
	CategoryProg ServiceCategory = "prog"
	// CategoryDiag covers diagnostic work.
	CategoryDiag ServiceCategory = "diag"
)

// Valid returns true if the category is a known value.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryADAS, CategoryAirbag, CategoryImmo, CategoryProg, CategoryDiag:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ServiceCategory) UnmarshalText(text []byte) error {
	v := ServiceCategory(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid ServiceCategory: %q", string(text))
	}
	*c = v
	return nil
}

// Service is a billable kind of work.
type Service struct {
	ID       int64           `json:"id"       db:"id"`
	Name     string          `json:"name"     db:"service_name"`
	Category ServiceCategory `json:"category" db:"service_category"`
}

// Equipment is a tool model a van can carry. Model strings are the unit of
// matching between requirements and van inventories.
type Equipment struct {
	ID       int64           `json:"id"       db:"id"`
	Model    string          `json:"model"    db:"model"`
	Category ServiceCategory `json:"category" db:"equipment_type"`
}

// VanEquipment is one inventory row: a piece of equipment on a van.
type VanEquipment struct {
	VanID       int64  `json:"van_id"       db:"van_id"`
	EquipmentID int64  `json:"equipment_id" db:"equipment_id"`
	Model       string `json:"model"        db:"model"`
}
