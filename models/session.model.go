package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseSession is one scheduled occurrence of a course. The random ID is the
// opaque public identifier embedded in enrollment links and QR codes; two
// sessions of the same course may share a date.
type CourseSession struct {
	ID        string    `json:"id" gorm:"size:36;primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	Course    Course    `json:"course" gorm:"foreignKey:CourseID"`
	Date      time.Time `json:"date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *CourseSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
