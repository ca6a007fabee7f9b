package models

import (
	"github.com/shopspring/decimal"
)

// Lookup tables owned by the fleet registry. Rows are reference data seeded
// by cmd/migration and changed only through administrative correction.

type Client struct {
	BaseModel
	Name string `gorm:"size:100;not null" json:"name"`
}

type Location struct {
	BaseModel
	Name     string `gorm:"size:100;not null"          json:"name"`
	ClientID int    `gorm:"not null;index:idx_locations_client" json:"clientId"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

type Department struct {
	BaseModel
	Name string `gorm:"size:50;not null" json:"name"`
}

// PrinterModel is the printer hardware model lookup ("models" table).
type PrinterModel struct {
	BaseModel
	Name string `gorm:"size:20;not null" json:"name"`
}

func (PrinterModel) TableName() string { return "models" }

type Part struct {
	BaseModel
	Name     string           `gorm:"size:50;not null"    json:"name"`
	UnitCost *decimal.Decimal `gorm:"type:decimal(10,2)" json:"unitCost,omitempty"`
}

// Status is the condition assigned to a unit after service, e.g.
// "Good Condition", "Pulled Out", "Replacement (Unit)", "Replacement (Parts)".
type Status struct {
	BaseModel
	Name    string  `gorm:"size:50;not null" json:"name"`
	SubName *string `gorm:"size:100"         json:"subName,omitempty"`
}

func (Status) TableName() string { return "statuses" }

type Priority struct {
	BaseModel
	Name string `gorm:"size:50;not null" json:"name"`
}

// Signatory is a client-side contact authorized to sign off a service visit.
type Signatory struct {
	BaseModel
	FirstName string `gorm:"size:20;not null" json:"firstName"`
	LastName  string `gorm:"size:20;not null" json:"lastName"`
	ClientID  *int   `gorm:"index:idx_signatories_client" json:"clientId,omitempty"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
