package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Printer is a deployed physical unit, identified in the field by the QR
// code carrying its serial number. Immutable once deployed except for
// administrative correction.
type Printer struct {
	BaseModel
	SerialNo         string          `gorm:"size:50;not null;uniqueIndex:idx_printers_serial" json:"serialNo"`
	ModelID          int             `gorm:"not null"                                         json:"modelId"`
	ClientID         int             `gorm:"not null;index:idx_printers_client"               json:"clientId"`
	LocationID       int             `gorm:"not null;index:idx_printers_location"             json:"locationId"`
	DepartmentID     int             `gorm:"not null"                                         json:"departmentId"`
	DeployedClientID *int            `                                                        json:"deployedClientId,omitempty"`
	DeploymentDate   *datatypes.Date `                                                        json:"deploymentDate,omitempty"`

	// Relationships
	Model          *PrinterModel `gorm:"foreignKey:ModelID"          json:"model,omitempty"`
	Client         *Client       `gorm:"foreignKey:ClientID"         json:"client,omitempty"`
	Location       *Location     `gorm:"foreignKey:LocationID"       json:"location,omitempty"`
	Department     *Department   `gorm:"foreignKey:DepartmentID"     json:"department,omitempty"`
	DeployedClient *Client       `gorm:"foreignKey:DeployedClientID" json:"deployedClient,omitempty"`
}

func (p *Printer) BeforeCreate(tx *gorm.DB) (err error) {
	if p.SerialNo == "" {
		return gorm.ErrInvalidValue
	}
	if p.ModelID == 0 || p.ClientID == 0 || p.LocationID == 0 || p.DepartmentID == 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}
