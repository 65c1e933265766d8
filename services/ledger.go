package services

import (
	"errors"
	"fmt"

	"certificados/models"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// IssuanceLedger owns creation of Enrollment and Certificate rows. Both
// operations are written insert-first: the row is created optimistically and
// a unique-constraint rejection means someone else won the race, so the
// surviving row is re-read and returned. Constraint violations are the
// mechanism of idempotency here, never an error the caller sees.
type IssuanceLedger struct {
	db *gorm.DB
}

func NewIssuanceLedger(db *gorm.DB) *IssuanceLedger {
	return &IssuanceLedger{db: db}
}

// EnsureEnrollment returns the single Enrollment for (session, participant),
// creating it on first call.
func (l *IssuanceLedger) EnsureEnrollment(sessionID string, participantID uint) (*models.Enrollment, error) {
	enrollment := models.Enrollment{
		SessionID:     sessionID,
		ParticipantID: participantID,
	}

	err := l.db.Create(&enrollment).Error
	if err == nil {
		return &enrollment, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("record enrollment: %w", err)
	}

	var existing models.Enrollment
	if err := l.db.
		Where("session_id = ? AND participant_id = ?", sessionID, participantID).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("reload enrollment: %w", err)
	}
	return &existing, nil
}

// EnsureCertificate returns the single Certificate for the
// (participant, course, session) triple. The random code and the issuance
// date are generated only when the row is first created; later calls get the
// original values back unchanged.
func (l *IssuanceLedger) EnsureCertificate(participantID, courseID uint, sessionID string) (*models.Certificate, error) {
	sid := sessionID
	certificate := models.Certificate{
		ParticipantID: participantID,
		CourseID:      courseID,
		SessionID:     &sid,
		IssuedAt:      now.BeginningOfDay(),
		Code:          uuid.NewString(),
	}

	err := l.db.Create(&certificate).Error
	if err == nil {
		return &certificate, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("issue certificate: %w", err)
	}

	var existing models.Certificate
	if err := l.db.
		Where("participant_id = ? AND course_id = ? AND session_id = ?", participantID, courseID, sessionID).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("reload certificate: %w", err)
	}
	return &existing, nil
}
