package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant is a course attendee. Identity is the CPF, stored digits-only;
// the latest submitted contact details always win for the same CPF.
type Participant struct {
	gorm.Model
	CPF       string    `json:"-" gorm:"size:14;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Email     string    `json:"email" gorm:"size:254;not null"`
	BirthDate time.Time `json:"birth_date"`
	Phone     string    `json:"phone" gorm:"size:20"`
	Address   string    `json:"address" gorm:"size:255"`
}
