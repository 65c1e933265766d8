package models

import "gorm.io/gorm"

// Course is managed by the admin side; the issuance pipeline only reads it.
type Course struct {
	gorm.Model
	Name          string `json:"name" gorm:"size:200;not null"`
	Description   string `json:"description" gorm:"type:text"`
	StandardHours *uint  `json:"standard_hours"` // credited hours, nil when not configured
}
