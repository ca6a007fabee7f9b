package models

import (
	"time"

	"gorm.io/gorm"
)

// MaintenanceRecord is one performed service event ("maintain" table). Rows
// are created once per visit and never mutated afterwards, except to patch
// SignPath in after the asynchronous signature upload completes.
//
// OriginMTID is a nullable self-reference to the record this one supersedes:
// a scheduled visit produces a new record linked back to the origin record on
// the schedule-detail row. Only forward references are ever created.
type MaintenanceRecord struct {
	ID              int       `gorm:"type:int;primaryKey;autoIncrement"       json:"id"`
	PrinterID       int       `gorm:"not null;index:idx_maintain_printer"     json:"printerId"`
	ClientID        int       `gorm:"not null"                                json:"clientId"`
	LocationID      *int      `                                               json:"locationId,omitempty"`
	DepartmentID    *int      `                                               json:"departmentId,omitempty"`
	HeadClean       bool      `gorm:"default:false"                           json:"headClean"`
	InkFlush        bool      `gorm:"default:false"                           json:"inkFlush"`
	CleanPrinter    bool      `gorm:"default:false"                           json:"cleanPrinter"`
	CleanWasteTank  bool      `gorm:"default:false"                           json:"cleanWasteTank"`
	ReplaceUnit     bool      `gorm:"default:false"                           json:"replaceUnit"`
	ReplaceSerialNo *string   `gorm:"size:50"                                 json:"replaceSerialNo,omitempty"`
	StatusID        int       `gorm:"not null"                                json:"statusId"`
	Notes           *string   `gorm:"type:text"                               json:"notes,omitempty"`
	UserID          int       `gorm:"not null;index:idx_maintain_user"        json:"userId"`
	SignatoryID     int       `gorm:"not null"                                json:"signatoryId"`
	SignPath        *string   `                                               json:"signPath,omitempty"`
	NozzlePath      *string   `                                               json:"nozzlePath,omitempty"`
	OriginMTID      *int      `                                               json:"originMTId,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index:idx_maintain_created" json:"createdAt"`

	// Relationships
	Printer       *Printer           `gorm:"foreignKey:PrinterID"  json:"printer,omitempty"`
	Status        *Status            `gorm:"foreignKey:StatusID"   json:"status,omitempty"`
	User          *User              `gorm:"foreignKey:UserID"     json:"user,omitempty"`
	Signatory     *Signatory         `gorm:"foreignKey:SignatoryID" json:"signatory,omitempty"`
	OriginRecord  *MaintenanceRecord `gorm:"foreignKey:OriginMTID" json:"originRecord,omitempty"`
	ReplacedParts []ReplacedPart     `gorm:"foreignKey:MTID"       json:"replacedParts,omitempty"`
	RepairedParts []RepairedPart     `gorm:"foreignKey:MTID"       json:"repairedParts,omitempty"`
	ColorRefill   *ColorRefill       `gorm:"foreignKey:MTID"       json:"colorRefill,omitempty"`
	Reset         *Reset             `gorm:"foreignKey:MTID"       json:"reset,omitempty"`
}

func (MaintenanceRecord) TableName() string { return "maintain" }

func (mr *MaintenanceRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if mr.PrinterID == 0 {
		return gorm.ErrInvalidValue
	}
	if mr.ClientID == 0 {
		return gorm.ErrInvalidValue
	}
	if mr.StatusID == 0 {
		return gorm.ErrInvalidValue
	}
	if mr.UserID == 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}

// ReplacedPart is one part swapped out during a visit ("replace" table).
type ReplacedPart struct {
	ID     int `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	MTID   int `gorm:"column:mt_id;not null;index:idx_replace_mt" json:"mtId"`
	PartID int `gorm:"not null"                          json:"partId"`

	Part *Part `gorm:"foreignKey:PartID" json:"part,omitempty"`
}

func (ReplacedPart) TableName() string { return "replace" }

// RepairedPart is one part repaired in place during a visit ("repair" table).
type RepairedPart struct {
	ID     int `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	MTID   int `gorm:"column:mt_id;not null;index:idx_repair_mt" json:"mtId"`
	PartID int `gorm:"not null"                          json:"partId"`

	Part *Part `gorm:"foreignKey:PartID" json:"part,omitempty"`
}

func (RepairedPart) TableName() string { return "repair" }

// ColorRefill records which ink tanks were refilled ("colors" table).
// At most one row per maintenance record.
type ColorRefill struct {
	ID      int  `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	MTID    int  `gorm:"column:mt_id;not null;index:idx_colors_mt" json:"mtId"`
	Cyan    bool `gorm:"default:false" json:"cyan"`
	Magenta bool `gorm:"default:false" json:"magenta"`
	Yellow  bool `gorm:"default:false" json:"yellow"`
	Black   bool `gorm:"default:false" json:"black"`
}

func (ColorRefill) TableName() string { return "colors" }

// Reset records waste-box or program resets performed ("resets" table).
// At most one row per maintenance record.
type Reset struct {
	ID      int  `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	MTID    int  `gorm:"column:mt_id;not null;index:idx_resets_mt" json:"mtId"`
	Box     bool `gorm:"default:false" json:"box"`
	Program bool `gorm:"default:false" json:"program"`
}

func (Reset) TableName() string { return "resets" }
