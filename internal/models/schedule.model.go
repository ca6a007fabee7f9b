package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Schedule is a planned maintenance round for one technician at one
// client/location on one date. The four-column unique index backs the
// conflict-ignored insert on the create path: a second insert for the same
// tuple affects zero rows and the caller is handed the existing schedule.
type Schedule struct {
	BaseModel
	TechnicianID int            `gorm:"not null;uniqueIndex:idx_schedules_tuple" json:"technicianId"`
	ClientID     int            `gorm:"not null;uniqueIndex:idx_schedules_tuple" json:"clientId"`
	LocationID   int            `gorm:"not null;uniqueIndex:idx_schedules_tuple" json:"locationId"`
	PriorityID   int            `gorm:"not null"                                 json:"priorityId"`
	Notes        *string        `gorm:"type:text"                                json:"notes,omitempty"`
	MaintainAll  bool           `gorm:"default:false"                            json:"maintainAll"`
	ScheduledAt  datatypes.Date `gorm:"not null;uniqueIndex:idx_schedules_tuple" json:"scheduledAt"`

	// Relationships
	Technician *User            `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Client     *Client          `gorm:"foreignKey:ClientID"     json:"client,omitempty"`
	Location   *Location        `gorm:"foreignKey:LocationID"   json:"location,omitempty"`
	Priority   *Priority        `gorm:"foreignKey:PriorityID"   json:"priority,omitempty"`
	Details    []ScheduleDetail `gorm:"foreignKey:ScheduleID" json:"details,omitempty"`
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) (err error) {
	if s.TechnicianID == 0 || s.ClientID == 0 || s.LocationID == 0 {
		return gorm.ErrInvalidValue
	}
	if s.PriorityID == 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}

// ScheduleDetail is the junction row assigning one printer to a schedule.
// Rows are inserted for the diff engine's added list and deleted for the
// removed list; a row flips to maintained exactly once, when the technician
// completes the visit for that printer.
type ScheduleDetail struct {
	BaseModel
	ScheduleID     int        `gorm:"not null;index:idx_schedule_details_schedule" json:"scheduleId"`
	PrinterID      int        `gorm:"not null;index:idx_schedule_details_printer"  json:"printerId"`
	OriginMTID     *int       `gorm:"column:origin_mt_id"                          json:"originMTId,omitempty"`
	IsMaintained   bool       `gorm:"default:false"                                json:"isMaintained"`
	MaintainedDate *time.Time `                                                    json:"maintainedDate,omitempty"`

	// Relationships
	Schedule     *Schedule          `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	Printer      *Printer           `gorm:"foreignKey:PrinterID"  json:"printer,omitempty"`
	OriginRecord *MaintenanceRecord `gorm:"foreignKey:OriginMTID" json:"originRecord,omitempty"`
}

func (sd *ScheduleDetail) BeforeCreate(tx *gorm.DB) (err error) {
	if sd.ScheduleID == 0 || sd.PrinterID == 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}
