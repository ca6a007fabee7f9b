package models

import (
	"fmt"

	"gorm.io/datatypes"
)

// User is a field technician or administrator. Authentication lives with the
// external identity provider; SubjectID links a row to that provider's
// subject claim.
type User struct {
	BaseModel
	FirstName  string          `gorm:"size:20;not null"                     json:"firstName"`
	LastName   string          `gorm:"size:20;not null"                     json:"lastName"`
	MiddleName *string         `gorm:"size:20"                              json:"middleName,omitempty"`
	ContactNo  string          `gorm:"size:11;not null"                     json:"contactNo"`
	Birthday   *datatypes.Date `                                            json:"birthday,omitempty"`
	Email      string          `gorm:"size:50;not null"                     json:"email"`
	Role       *string         `gorm:"size:15"                              json:"role,omitempty"`
	IsActive   bool            `gorm:"default:false"                        json:"isActive"`
	SubjectID  string          `gorm:"not null;uniqueIndex:idx_users_subject" json:"subjectId"`
}

func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role != nil && *u.Role == "admin"
}
