package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeliveryLog records one attempt to email a certificate. Issuance is never
// rolled back on a failed attempt; the log is what the redelivery sweep and
// the admin screens read.
type DeliveryLog struct {
	gorm.Model
	CertificateID    uint           `json:"certificate_id" gorm:"index;not null"`
	Certificate      Certificate    `json:"-" gorm:"foreignKey:CertificateID;constraint:OnDelete:CASCADE"`
	Transport        string         `json:"transport" gorm:"size:20"`
	Recipient        string         `json:"recipient" gorm:"size:254"`
	Succeeded        bool           `json:"succeeded"`
	ErrorMessage     string         `json:"error_message" gorm:"type:text"`
	ProviderResponse datatypes.JSON `json:"provider_response"`
}
