package models

import (
	"gorm.io/gorm"
)

// Enrollment records that a participant registered for a session. The
// composite unique index is the arbiter under concurrent duplicate
// submissions: the losing insert re-reads the surviving row.
type Enrollment struct {
	gorm.Model
	SessionID     string        `json:"session_id" gorm:"size:36;not null;uniqueIndex:uniq_enrollment_session_participant"`
	ParticipantID uint          `json:"participant_id" gorm:"not null;uniqueIndex:uniq_enrollment_session_participant"`
	Session       CourseSession `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	Participant   Participant   `json:"-" gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
}
