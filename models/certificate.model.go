package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is the durable proof that a participant completed a course.
// Code and IssuedAt are set on first creation and never change. SessionID is
// nullable: deleting a session clears the reference but keeps the record.
type Certificate struct {
	gorm.Model
	ParticipantID uint           `json:"participant_id" gorm:"not null;uniqueIndex:uniq_certificate_participant_course_session"`
	CourseID      uint           `json:"course_id" gorm:"not null;uniqueIndex:uniq_certificate_participant_course_session"`
	SessionID     *string        `json:"session_id" gorm:"size:36;uniqueIndex:uniq_certificate_participant_course_session"`
	Participant   Participant    `json:"-" gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
	Course        Course         `json:"-" gorm:"foreignKey:CourseID"`
	Session       *CourseSession `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:SET NULL"`
	IssuedAt      time.Time      `json:"issued_at" gorm:"not null"`
	Code          string         `json:"code" gorm:"size:36;uniqueIndex;not null"`
}
